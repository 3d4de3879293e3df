package tax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
)

const defaultBackfillBatch = 200

// BackfillReport resumen de una corrida de backfill.
type BackfillReport struct {
	Scanned          int      `json:"scanned"`
	SaleIVA          int      `json:"sale_iva_created"`
	PurchaseIVA      int      `json:"purchase_iva_created"`
	OperatorPayments int      `json:"operator_payments_created"`
	Skipped          int      `json:"skipped"`
	SkippedIDs       []string `json:"skipped_ids,omitempty"`
}

// BackfillUseCase completa IVA y pagos a operadores de operaciones históricas.
type BackfillUseCase struct {
	operations repository.OperationRepository
	deriver    *Deriver
	rates      *ledger.ExchangeRateResolver
	location   *time.Location
	batchSize  int
	log        zerolog.Logger
}

// NewBackfillUseCase construye el caso de uso. loc define el día de referencia del IVA.
func NewBackfillUseCase(
	operations repository.OperationRepository,
	deriver *Deriver,
	rates *ledger.ExchangeRateResolver,
	loc *time.Location,
	batchSize int,
	log zerolog.Logger,
) *BackfillUseCase {
	if batchSize <= 0 {
		batchSize = defaultBackfillBatch
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BackfillUseCase{
		operations: operations,
		deriver:    deriver,
		rates:      rates,
		location:   loc,
		batchSize:  batchSize,
		log:        log.With().Str("component", "tax_backfill").Logger(),
	}
}

// Run recorre las operaciones pendientes por páginas (keyset sobre id). Los errores de
// validación de una operación la omiten; los de infraestructura cortan la corrida.
// limit <= 0 procesa todas.
func (uc *BackfillUseCase) Run(ctx context.Context, limit int) (*BackfillReport, error) {
	report := &BackfillReport{}
	deriver := uc.deriver.WithRates(uc.rates.ForRequest())

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch, err := uc.operations.ListPendingDerivations(ctx, afterID, uc.batchSize)
		if err != nil {
			return report, fmt.Errorf("listar operaciones pendientes: %w", err)
		}
		for _, op := range batch {
			if limit > 0 && report.Scanned >= limit {
				uc.logReport(report)
				return report, nil
			}
			report.Scanned++
			afterID = op.ID
			if err := uc.derive(ctx, deriver, op, report); err != nil {
				if !isSkippable(err) {
					return report, fmt.Errorf("operación %s: %w", op.ID, err)
				}
				report.Skipped++
				report.SkippedIDs = append(report.SkippedIDs, op.ID)
				uc.log.Warn().Err(err).Str("operation_id", op.ID).Msg("operación omitida en backfill")
			}
		}
		if len(batch) < uc.batchSize {
			break
		}
	}
	uc.logReport(report)
	return report, nil
}

// derive intenta cada derivación de la operación por separado: un error de datos en una
// no impide las demás. Los errores omitibles se acumulan; uno de infraestructura corta.
func (uc *BackfillUseCase) derive(ctx context.Context, deriver *Deriver, op *entity.Operation, report *BackfillReport) error {
	refDay := domainledger.DayOf(op.CreatedAt, uc.location)
	var skipped []error
	try := func(name string, fn func() (bool, error), counter *int) error {
		created, err := fn()
		if err != nil {
			if !isSkippable(err) {
				return err
			}
			skipped = append(skipped, fmt.Errorf("%s: %w", name, err))
			return nil
		}
		if created {
			*counter++
		}
		return nil
	}

	if op.SaleAmount.IsPositive() {
		err := try("iva_venta", func() (bool, error) {
			_, created, err := deriver.CreateSaleIVA(ctx, SaleIVAInput{
				OperationID:   op.ID,
				GrossAmount:   op.SaleAmount,
				Currency:      string(op.SaleCurrency),
				ReferenceDate: refDay,
			})
			return created, err
		}, &report.SaleIVA)
		if err != nil {
			return err
		}
	}

	if op.OperatorID != nil && op.OperatorCost.IsPositive() {
		err := try("iva_compra", func() (bool, error) {
			_, created, err := deriver.CreatePurchaseIVA(ctx, PurchaseIVAInput{
				OperationID:   op.ID,
				OperatorID:    *op.OperatorID,
				GrossAmount:   op.OperatorCost,
				Currency:      string(op.OperatorCostCurrency),
				ReferenceDate: refDay,
			})
			return created, err
		}, &report.PurchaseIVA)
		if err != nil {
			return err
		}

		err = try("pago_operador", func() (bool, error) {
			_, created, err := deriver.CreateOperatorPayment(ctx, OperatorPaymentInput{
				OperationID:   op.ID,
				OperatorID:    *op.OperatorID,
				Amount:        op.OperatorCost,
				Currency:      string(op.OperatorCostCurrency),
				ProductType:   string(op.ProductType),
				CreatedAt:     op.CreatedAt,
				CheckinDate:   op.CheckinDate,
				DepartureDate: op.DepartureDate,
			})
			return created, err
		}, &report.OperatorPayments)
		if err != nil {
			return err
		}
	}
	return errors.Join(skipped...)
}

func (uc *BackfillUseCase) logReport(r *BackfillReport) {
	uc.log.Info().
		Int("scanned", r.Scanned).
		Int("sale_iva", r.SaleIVA).
		Int("purchase_iva", r.PurchaseIVA).
		Int("operator_payments", r.OperatorPayments).
		Int("skipped", r.Skipped).
		Msg("backfill finalizado")
}

// isSkippable: errores propios de los datos de la operación, no de la infraestructura.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidProductTypeForDueDate) ||
		errors.Is(err, domain.ErrMissingExchangeRate) ||
		errors.Is(err, domain.ErrCurrencyMismatchWithoutRate)
}
