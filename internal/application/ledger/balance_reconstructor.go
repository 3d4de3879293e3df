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
	"github.com/shopspring/decimal"
)

// DailyBalance saldo combinado (USD) al cierre de Date, con el desglose por cuenta.
type DailyBalance struct {
	Date      time.Time
	Balance   decimal.Decimal
	ByAccount map[string]decimal.Decimal
}

// BalanceReconstructor reconstruye series de saldos diarios a partir del registro de
// movimientos, partiendo del último checkpoint anterior al rango.
type BalanceReconstructor struct {
	accountRepo    repository.FinancialAccountRepository
	movementRepo   repository.LedgerMovementRepository
	checkpointRepo repository.BalanceCheckpointRepository
	settings       Settings
	log            zerolog.Logger
}

// NewBalanceReconstructor construye el caso de uso (solo lectura).
func NewBalanceReconstructor(
	accountRepo repository.FinancialAccountRepository,
	movementRepo repository.LedgerMovementRepository,
	checkpointRepo repository.BalanceCheckpointRepository,
	settings Settings,
	log zerolog.Logger,
) *BalanceReconstructor {
	return &BalanceReconstructor{
		accountRepo:    accountRepo,
		movementRepo:   movementRepo,
		checkpointRepo: checkpointRepo,
		settings:       settings,
		log:            log.With().Str("component", "balance_reconstructor").Logger(),
	}
}

// DailySeries devuelve exactamente una entrada por día calendario en [from, to].
// Los días sin movimientos repiten el saldo del día anterior.
func (r *BalanceReconstructor) DailySeries(ctx context.Context, accountIDs []string, from, to time.Time) ([]DailyBalance, error) {
	ids := uniqueIDs(accountIDs)
	from, to = domainledger.NormalizeDay(from), domainledger.NormalizeDay(to)
	days := domainledger.DaysBetween(from, to)
	if len(ids) == 0 || days == 0 || days > r.settings.maxRangeDays() {
		return nil, domain.ErrInvalidInput
	}
	loc := r.settings.location()

	// 1. Cuentas y saldos de partida (una consulta cada uno)
	accounts, err := r.accountRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listar cuentas: %w", err)
	}
	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}
	checkpoints, err := r.checkpointRepo.LatestBefore(ctx, ids, from)
	if err != nil {
		return nil, fmt.Errorf("leer checkpoints: %w", err)
	}

	running := make(map[string]decimal.Decimal, len(accounts))
	replayFrom := make(map[string]time.Time, len(accounts)) // sin entrada = desde el inicio
	var lower *time.Time
	unbounded := false
	for _, a := range accounts {
		cp, ok := checkpoints[a.ID]
		if !ok {
			running[a.ID] = a.InitialBalanceUSD
			unbounded = true
			continue
		}
		running[a.ID] = cp.BalanceUSD
		start := domainledger.DayEnd(cp.CheckpointDate, loc)
		replayFrom[a.ID] = start
		if lower == nil || start.Before(*lower) {
			s := start
			lower = &s
		}
	}
	if unbounded {
		lower = nil
	}

	// 2. Movimientos (una consulta) acotados por el checkpoint más antiguo y el fin del rango
	movements, err := r.movementRepo.ListForAccounts(ctx, ids, lower, domainledger.DayEnd(to, loc))
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}

	// 3. Agrupar por (día, cuenta); lo anterior al rango se suma al saldo de apertura
	buckets := make(map[time.Time]map[string]decimal.Decimal)
	for _, m := range movements {
		if m.AccountID == nil {
			continue
		}
		accID := *m.AccountID
		if _, ok := running[accID]; !ok {
			continue
		}
		if start, ok := replayFrom[accID]; ok && m.CreatedAt.Before(start) {
			continue
		}
		day := domainledger.DayOf(m.CreatedAt, loc)
		if day.Before(from) {
			running[accID] = running[accID].Add(m.SignedUSD())
			continue
		}
		if buckets[day] == nil {
			buckets[day] = make(map[string]decimal.Decimal)
		}
		buckets[day][accID] = buckets[day][accID].Add(m.SignedUSD())
	}

	// 4. Recorrer cada día del rango acumulando
	series := make([]DailyBalance, 0, days)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for accID, delta := range buckets[day] {
			running[accID] = running[accID].Add(delta)
		}
		total := decimal.Zero
		byAccount := make(map[string]decimal.Decimal, len(running))
		for _, id := range ids {
			total = total.Add(running[id])
			byAccount[id] = running[id]
		}
		series = append(series, DailyBalance{Date: day, Balance: total, ByAccount: byAccount})
	}

	r.log.Debug().
		Int("accounts", len(ids)).
		Int("days", days).
		Int("movements", len(movements)).
		Int("checkpoints", len(checkpoints)).
		Msg("serie diaria reconstruida")
	return series, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// accountIDs extrae los IDs de una lista de cuentas.
func accountIDs(accounts []*entity.FinancialAccount) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
