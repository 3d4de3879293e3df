// Package tax deriva registros de IVA y pagos a operadores a partir de las operaciones.
// Es el único punto de creación: lo usan tanto la API HTTP como el backfill de la CLI.
package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	domaintax "github.com/jhoicas/agencia-ledger/internal/domain/tax"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Options parámetros fiscales. Los valores cero usan los predeterminados.
type Options struct {
	IVARate   decimal.Decimal
	DuePolicy *domaintax.DuePolicy
	Now       func() time.Time
}

// Deriver crea registros de IVA y pagos a operadores de forma idempotente.
type Deriver struct {
	ivaRepo repository.IVARecordRepository
	payRepo repository.OperatorPaymentRepository
	rates   ledger.RateResolver
	ivaRate decimal.Decimal
	policy  domaintax.DuePolicy
	now     func() time.Time
	log     zerolog.Logger
}

// NewDeriver construye el derivador.
func NewDeriver(
	ivaRepo repository.IVARecordRepository,
	payRepo repository.OperatorPaymentRepository,
	rates ledger.RateResolver,
	opts Options,
	log zerolog.Logger,
) *Deriver {
	d := &Deriver{
		ivaRepo: ivaRepo,
		payRepo: payRepo,
		rates:   rates,
		ivaRate: opts.IVARate.Round(domaintax.IVARateScale),
		policy:  domaintax.DefaultDuePolicy(),
		now:     opts.Now,
		log:     log.With().Str("component", "tax_deriver").Logger(),
	}
	if !d.ivaRate.IsPositive() {
		d.ivaRate = domaintax.DefaultIVARate
	}
	if opts.DuePolicy != nil {
		d.policy = *opts.DuePolicy
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// WithRates devuelve una copia que resuelve tipos de cambio con rates (p. ej. la vista
// memoizada de una petición).
func (d *Deriver) WithRates(rates ledger.RateResolver) *Deriver {
	cp := *d
	cp.rates = rates
	return &cp
}

// SaleIVAInput datos para el IVA de venta (débito fiscal).
type SaleIVAInput struct {
	OperationID   string
	GrossAmount   decimal.Decimal
	Currency      string
	ReferenceDate time.Time
}

// PurchaseIVAInput datos para el IVA de compra (crédito fiscal).
type PurchaseIVAInput struct {
	OperationID   string
	OperatorID    string
	GrossAmount   decimal.Decimal
	Currency      string
	ReferenceDate time.Time
}

// CreateSaleIVA crea el IVA de venta de la operación. Si ya existe lo devuelve sin cambios
// y created=false.
func (d *Deriver) CreateSaleIVA(ctx context.Context, in SaleIVAInput) (*entity.IVARecord, bool, error) {
	return d.createIVA(ctx, entity.IVADirectionSale, in.OperationID, nil, in.GrossAmount, in.Currency, in.ReferenceDate)
}

// CreatePurchaseIVA crea el IVA de compra de la operación. Si ya existe lo devuelve sin
// cambios y created=false.
func (d *Deriver) CreatePurchaseIVA(ctx context.Context, in PurchaseIVAInput) (*entity.IVARecord, bool, error) {
	operatorID := strings.TrimSpace(in.OperatorID)
	if operatorID == "" {
		return nil, false, fmt.Errorf("%w: operador obligatorio", domain.ErrInvalidInput)
	}
	return d.createIVA(ctx, entity.IVADirectionPurchase, in.OperationID, &operatorID, in.GrossAmount, in.Currency, in.ReferenceDate)
}

func (d *Deriver) createIVA(
	ctx context.Context,
	direction, operationID string,
	operatorID *string,
	gross decimal.Decimal,
	currency string,
	referenceDate time.Time,
) (*entity.IVARecord, bool, error) {
	operationID = strings.TrimSpace(operationID)
	if operationID == "" || !gross.IsPositive() || referenceDate.IsZero() {
		return nil, false, domain.ErrInvalidInput
	}
	if !domainledger.FitsScale(gross, domaintax.MoneyScale) {
		return nil, false, fmt.Errorf("%w: el monto bruto admite %d decimales", domain.ErrInvalidInput, domaintax.MoneyScale)
	}
	cur, err := entity.ParseCurrency(currency)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	existing, err := d.ivaRepo.GetByOperation(ctx, operationID, direction)
	if err != nil {
		return nil, false, fmt.Errorf("buscar IVA existente: %w", err)
	}
	if existing != nil {
		d.log.Debug().Str("operation_id", operationID).Str("direction", direction).Msg("IVA ya registrado")
		return existing, false, nil
	}

	day := domainledger.NormalizeDay(referenceDate)
	resolved, err := d.rates.ResolveWithFallback(ctx, day)
	if err != nil {
		return nil, false, err
	}
	// el respaldo configurado puede traer más decimales que la columna
	rate, err := domainledger.NormalizeRate(resolved.Rate)
	if err != nil {
		return nil, false, err
	}
	net, iva := domaintax.SplitIVA(gross, d.ivaRate)
	ivaUSD, _, err := domainledger.ToUSD(iva, cur, &rate)
	if err != nil {
		return nil, false, err
	}

	record := &entity.IVARecord{
		ID:            uuid.New().String(),
		Direction:     direction,
		OperationID:   operationID,
		OperatorID:    operatorID,
		Currency:      cur,
		GrossAmount:   gross,
		NetAmount:     net,
		IVARate:       d.ivaRate,
		IVAAmount:     iva,
		ExchangeRate:  rate,
		IVAAmountUSD:  ivaUSD,
		ReferenceDate: day,
		CreatedAt:     d.now(),
	}
	created, err := d.ivaRepo.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// otra petición ganó la carrera: se devuelve su registro
		winner, err := d.ivaRepo.GetByOperation(ctx, operationID, direction)
		if err != nil {
			return nil, false, err
		}
		if winner == nil {
			return nil, false, fmt.Errorf("IVA %s de %s: %w", direction, operationID, domain.ErrNotFound)
		}
		return winner, false, nil
	}

	d.log.Info().
		Str("operation_id", operationID).
		Str("direction", direction).
		Str("iva_amount", iva.String()).
		Str("rate_source", resolved.Source).
		Msg("IVA registrado")
	return record, true, nil
}

// OperatorPaymentInput datos del pago a operador.
type OperatorPaymentInput struct {
	OperationID   string
	OperatorID    string
	Amount        decimal.Decimal
	Currency      string
	ProductType   string
	CreatedAt     time.Time
	CheckinDate   *time.Time
	DepartureDate *time.Time
}

// CalculateDueDate calcula el vencimiento según la política configurada.
func (d *Deriver) CalculateDueDate(productType string, created time.Time, checkin, departure *time.Time) (time.Time, error) {
	pt, err := entity.ParseProductType(productType)
	if err != nil {
		return time.Time{}, domain.ErrInvalidProductTypeForDueDate
	}
	return d.policy.Calculate(pt, created, checkin, departure)
}

// CreateOperatorPayment programa el pago al operador con su vencimiento. Idempotente por
// operación: si ya existe se devuelve sin cambios y created=false.
func (d *Deriver) CreateOperatorPayment(ctx context.Context, in OperatorPaymentInput) (*entity.OperatorPayment, bool, error) {
	operationID := strings.TrimSpace(in.OperationID)
	operatorID := strings.TrimSpace(in.OperatorID)
	if operationID == "" || operatorID == "" || !in.Amount.IsPositive() || in.CreatedAt.IsZero() {
		return nil, false, domain.ErrInvalidInput
	}
	if !domainledger.FitsScale(in.Amount, domaintax.MoneyScale) {
		return nil, false, fmt.Errorf("%w: el monto admite %d decimales", domain.ErrInvalidInput, domaintax.MoneyScale)
	}
	cur, err := entity.ParseCurrency(in.Currency)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	existing, err := d.payRepo.GetByOperation(ctx, operationID)
	if err != nil {
		return nil, false, fmt.Errorf("buscar pago existente: %w", err)
	}
	if existing != nil {
		d.log.Debug().Str("operation_id", operationID).Msg("pago a operador ya registrado")
		return existing, false, nil
	}

	due, err := d.CalculateDueDate(in.ProductType, in.CreatedAt, in.CheckinDate, in.DepartureDate)
	if err != nil {
		return nil, false, err
	}
	pt, _ := entity.ParseProductType(in.ProductType)

	payment := &entity.OperatorPayment{
		ID:          uuid.New().String(),
		OperationID: operationID,
		OperatorID:  operatorID,
		Amount:      in.Amount,
		Currency:    cur,
		ProductType: pt,
		DueDate:     due,
		Status:      entity.OperatorPaymentPending,
		CreatedAt:   d.now(),
	}
	created, err := d.payRepo.CreateIfAbsent(ctx, payment)
	if err != nil {
		return nil, false, err
	}
	if !created {
		winner, err := d.payRepo.GetByOperation(ctx, operationID)
		if err != nil {
			return nil, false, err
		}
		if winner == nil {
			return nil, false, fmt.Errorf("pago de %s: %w", operationID, domain.ErrNotFound)
		}
		return winner, false, nil
	}

	d.log.Info().
		Str("operation_id", operationID).
		Str("operator_id", operatorID).
		Str("due_date", due.Format(time.DateOnly)).
		Msg("pago a operador programado")
	return payment, true, nil
}
