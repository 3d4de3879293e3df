package scheduler

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	"github.com/rs/zerolog"
)

// CheckpointCreator guarda los saldos de cierre del día anterior.
type CheckpointCreator interface {
	CreateForYesterday(ctx context.Context) (int, error)
}

// CheckpointJob trabajo nocturno de checkpoints de saldo.
type CheckpointJob struct {
	uc      CheckpointCreator
	timeout time.Duration
	log     zerolog.Logger
}

// NewCheckpointJob timeout <= 0 usa 10 minutos.
func NewCheckpointJob(uc CheckpointCreator, timeout time.Duration, log zerolog.Logger) *CheckpointJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &CheckpointJob{uc: uc, timeout: timeout, log: log.With().Str("job", "balance_checkpoint").Logger()}
}

func (j *CheckpointJob) Name() string { return "balance_checkpoint" }

func (j *CheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.uc.CreateForYesterday(ctx)
	if err != nil {
		return err
	}
	j.log.Info().Int("accounts", n).Dur("duration", time.Since(start)).Msg("checkpoints nocturnos completados")
	return nil
}

// Backfiller deriva IVA y pagos a operadores pendientes.
type Backfiller interface {
	Run(ctx context.Context, limit int) (*tax.BackfillReport, error)
}

// BackfillJob ejecuta el backfill de impuestos y pagos sin límite de operaciones.
type BackfillJob struct {
	uc      Backfiller
	timeout time.Duration
	log     zerolog.Logger
}

func NewBackfillJob(uc Backfiller, timeout time.Duration, log zerolog.Logger) *BackfillJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &BackfillJob{uc: uc, timeout: timeout, log: log.With().Str("job", "tax_backfill").Logger()}
}

func (j *BackfillJob) Name() string { return "tax_backfill" }

func (j *BackfillJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.uc.Run(ctx, 0)
	if err != nil {
		return err
	}
	j.log.Info().
		Int("scanned", report.Scanned).
		Int("sale_iva", report.SaleIVA).
		Int("purchase_iva", report.PurchaseIVA).
		Int("operator_payments", report.OperatorPayments).
		Int("skipped", report.Skipped).
		Msg("backfill completado")
	return nil
}
