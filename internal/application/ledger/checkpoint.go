package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
)

// CheckpointUseCase guarda el saldo de cierre diario de cada cuenta activa para que la
// reconstrucción de series no tenga que recorrer todo el historial.
type CheckpointUseCase struct {
	accountRepo    repository.FinancialAccountRepository
	movementRepo   repository.LedgerMovementRepository
	checkpointRepo repository.BalanceCheckpointRepository
	settings       Settings
	log            zerolog.Logger
}

// NewCheckpointUseCase construye el caso de uso.
func NewCheckpointUseCase(
	accountRepo repository.FinancialAccountRepository,
	movementRepo repository.LedgerMovementRepository,
	checkpointRepo repository.BalanceCheckpointRepository,
	settings Settings,
	log zerolog.Logger,
) *CheckpointUseCase {
	return &CheckpointUseCase{
		accountRepo:    accountRepo,
		movementRepo:   movementRepo,
		checkpointRepo: checkpointRepo,
		settings:       settings,
		log:            log.With().Str("component", "balance_checkpoint").Logger(),
	}
}

// CreateForDay guarda el checkpoint de day para todas las cuentas activas. Solo se admiten
// días ya cerrados (anteriores a hoy). Es idempotente: recalcular un día produce el mismo
// saldo. Devuelve la cantidad de checkpoints escritos.
func (uc *CheckpointUseCase) CreateForDay(ctx context.Context, day time.Time) (int, error) {
	loc := uc.settings.location()
	day = domainledger.NormalizeDay(day)
	today := domainledger.DayOf(uc.settings.now(), loc)
	if !day.Before(today) {
		return 0, fmt.Errorf("%w: el día %s todavía no cerró", domain.ErrInvalidInput, day.Format(time.DateOnly))
	}

	accounts, err := uc.accountRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar cuentas activas: %w", err)
	}
	if len(accounts) == 0 {
		return 0, nil
	}
	previous, err := uc.checkpointRepo.LatestBefore(ctx, accountIDs(accounts), day)
	if err != nil {
		return 0, fmt.Errorf("leer checkpoints previos: %w", err)
	}

	end := domainledger.DayEnd(day, loc)
	written := 0
	for _, a := range accounts {
		cp := &entity.BalanceCheckpoint{
			AccountID:      a.ID,
			CheckpointDate: day,
			BalanceUSD:     a.InitialBalanceUSD,
			CreatedAt:      uc.settings.now(),
		}
		var from *time.Time
		if prev, ok := previous[a.ID]; ok {
			start := domainledger.DayEnd(prev.CheckpointDate, loc)
			from = &start
			cp.BalanceUSD = prev.BalanceUSD
			cp.MovementCount = prev.MovementCount
		}
		sum, count, err := uc.movementRepo.SumSignedUSD(ctx, a.ID, from, &end)
		if err != nil {
			return written, fmt.Errorf("sumar movimientos de %s: %w", a.ID, err)
		}
		cp.BalanceUSD = cp.BalanceUSD.Add(sum)
		cp.MovementCount += count
		if err := uc.checkpointRepo.Upsert(ctx, cp); err != nil {
			return written, err
		}
		written++
	}

	uc.log.Info().Str("day", day.Format(time.DateOnly)).Int("accounts", written).Msg("checkpoints de saldo guardados")
	return written, nil
}

// CreateForYesterday es el punto de entrada del job nocturno.
func (uc *CheckpointUseCase) CreateForYesterday(ctx context.Context) (int, error) {
	today := domainledger.DayOf(uc.settings.now(), uc.settings.location())
	return uc.CreateForDay(ctx, today.AddDate(0, 0, -1))
}
