package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria que emula las tablas del libro. RunLedger acumula las
// escrituras y solo las publica al confirmar; GetForUpdate toma un mutex por
// cuenta que se libera al terminar la transacción (equivalente a FOR UPDATE).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu          sync.Mutex
	accounts    map[string]*entity.FinancialAccount
	movements   []*entity.LedgerMovement
	rates       []*entity.ExchangeRate
	checkpoints map[string][]*entity.BalanceCheckpoint
	locks       map[string]*sync.Mutex

	rateLookups   int
	latestLookups int
	failCreate    error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[string]*entity.FinancialAccount),
		checkpoints: make(map[string][]*entity.BalanceCheckpoint),
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *memStore) addAccount(id string, cur entity.Currency, initialUSD string) *entity.FinancialAccount {
	a := &entity.FinancialAccount{
		ID:                id,
		Name:              "cuenta " + id,
		Currency:          cur,
		InitialBalance:    decimal.RequireFromString(initialUSD),
		InitialBalanceUSD: decimal.RequireFromString(initialUSD),
		IsActive:          true,
	}
	s.mu.Lock()
	s.accounts[id] = a
	s.mu.Unlock()
	return a
}

func (s *memStore) addMovement(accountID string, t entity.MovementType, usd string, at time.Time) {
	id := accountID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, &entity.LedgerMovement{
		ID:             fmt.Sprintf("m%d", len(s.movements)),
		AccountID:      &id,
		Type:           t,
		Currency:       entity.CurrencyUSD,
		AmountOriginal: decimal.RequireFromString(usd),
		AmountUSD:      decimal.RequireFromString(usd),
		CreatedAt:      at,
	})
}

func (s *memStore) addRate(day time.Time, rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, &entity.ExchangeRate{EffectiveDate: day, Rate: decimal.RequireFromString(rate)})
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

// ── cuentas ──────────────────────────────────────────────────────────────────

type memAccountRepo struct {
	s  *memStore
	tx *memTx
}

var _ repository.FinancialAccountRepository = (*memAccountRepo)(nil)

func (r *memAccountRepo) Create(_ context.Context, a *entity.FinancialAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*entity.FinancialAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.FinancialAccount, error) {
	if r.tx != nil {
		l := r.s.lockFor(id)
		l.Lock()
		r.tx.locked = append(r.tx.locked, l)
	}
	return r.GetByID(ctx, id)
}

func (r *memAccountRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.FinancialAccount, error) {
	var out []*entity.FinancialAccount
	for _, id := range ids {
		a, _ := r.GetByID(ctx, id)
		if a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAccountRepo) ListActive(_ context.Context) ([]*entity.FinancialAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.FinancialAccount
	for _, a := range r.s.accounts {
		if a.IsActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAccountRepo) UpdateMetadata(_ context.Context, id, name string, isActive bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.accounts[id]; ok {
		a.Name = name
		a.IsActive = isActive
	}
	return nil
}

// ── movimientos ──────────────────────────────────────────────────────────────

type memMovementRepo struct {
	s  *memStore
	tx *memTx
}

var _ repository.LedgerMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) all() []*entity.LedgerMovement {
	r.s.mu.Lock()
	out := append([]*entity.LedgerMovement(nil), r.s.movements...)
	r.s.mu.Unlock()
	if r.tx != nil {
		out = append(out, r.tx.pending...)
	}
	return out
}

// asStored devuelve la fila tal como la guardaría NUMERIC(20,6).
func asStored(m *entity.LedgerMovement) *entity.LedgerMovement {
	cp := *m
	cp.AmountOriginal = cp.AmountOriginal.Round(6)
	cp.AmountUSD = cp.AmountUSD.Round(6)
	if cp.ExchangeRate != nil {
		r := cp.ExchangeRate.Round(6)
		cp.ExchangeRate = &r
	}
	return &cp
}

func (r *memMovementRepo) Create(_ context.Context, m *entity.LedgerMovement) error {
	if r.s.failCreate != nil {
		return r.s.failCreate
	}
	m = asStored(m)
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.LedgerMovement, error) {
	for _, m := range r.all() {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) SumSignedUSD(_ context.Context, accountID string, from, to *time.Time) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var n int64
	for _, m := range r.all() {
		if m.AccountID == nil || *m.AccountID != accountID || !inRange(m.CreatedAt, from, to) {
			continue
		}
		sum = sum.Add(m.SignedUSD())
		n++
	}
	return sum, n, nil
}

func (r *memMovementRepo) ListByAccount(_ context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error) {
	var out []*entity.LedgerMovement
	for _, m := range r.all() {
		if m.AccountID != nil && *m.AccountID == accountID && inRange(m.CreatedAt, from, to) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMovementRepo) ListForAccounts(_ context.Context, accountIDs []string, from *time.Time, to time.Time) ([]*entity.LedgerMovement, error) {
	want := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		want[id] = true
	}
	var out []*entity.LedgerMovement
	for _, m := range r.all() {
		if m.AccountID != nil && want[*m.AccountID] && inRange(m.CreatedAt, from, &to) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── tipos de cambio ──────────────────────────────────────────────────────────

type memRateRepo struct{ s *memStore }

var _ repository.ExchangeRateRepository = (*memRateRepo)(nil)

func (r *memRateRepo) GetOnOrBefore(_ context.Context, day time.Time) (*entity.ExchangeRate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rateLookups++
	var best *entity.ExchangeRate
	for _, er := range r.s.rates {
		if er.EffectiveDate.After(day) {
			continue
		}
		if best == nil || er.EffectiveDate.After(best.EffectiveDate) {
			best = er
		}
	}
	return best, nil
}

func (r *memRateRepo) GetLatest(_ context.Context) (*entity.ExchangeRate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.latestLookups++
	var best *entity.ExchangeRate
	for _, er := range r.s.rates {
		if best == nil || er.EffectiveDate.After(best.EffectiveDate) {
			best = er
		}
	}
	return best, nil
}

func (r *memRateRepo) Upsert(_ context.Context, rate *entity.ExchangeRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rate
	cp.Rate = cp.Rate.Round(6)
	rate = &cp
	for i, er := range r.s.rates {
		if er.EffectiveDate.Equal(rate.EffectiveDate) {
			r.s.rates[i] = rate
			return nil
		}
	}
	r.s.rates = append(r.s.rates, rate)
	return nil
}

// ── checkpoints ──────────────────────────────────────────────────────────────

type memCheckpointRepo struct{ s *memStore }

var _ repository.BalanceCheckpointRepository = (*memCheckpointRepo)(nil)

func (r *memCheckpointRepo) LatestBefore(_ context.Context, accountIDs []string, day time.Time) (map[string]*entity.BalanceCheckpoint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.BalanceCheckpoint)
	for _, id := range accountIDs {
		for _, cp := range r.s.checkpoints[id] {
			if !cp.CheckpointDate.Before(day) {
				continue
			}
			if best, ok := out[id]; !ok || cp.CheckpointDate.After(best.CheckpointDate) {
				out[id] = cp
			}
		}
	}
	return out, nil
}

func (r *memCheckpointRepo) Upsert(_ context.Context, cp *entity.BalanceCheckpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.s.checkpoints[cp.AccountID]
	for i, existing := range list {
		if existing.CheckpointDate.Equal(cp.CheckpointDate) {
			list[i] = cp
			return nil
		}
	}
	r.s.checkpoints[cp.AccountID] = append(list, cp)
	return nil
}

// ── transacciones ────────────────────────────────────────────────────────────

type memTx struct {
	pending []*entity.LedgerMovement
	locked  []*sync.Mutex
}

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) RunLedger(_ context.Context, fn func(
	accountRepo repository.FinancialAccountRepository,
	movementRepo repository.LedgerMovementRepository,
) error) error {
	tx := &memTx{}
	defer func() {
		for _, l := range tx.locked {
			l.Unlock()
		}
	}()
	if err := fn(&memAccountRepo{s: r.s, tx: tx}, &memMovementRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	r.s.mu.Lock()
	r.s.movements = append(r.s.movements, tx.pending...)
	r.s.mu.Unlock()
	return nil
}
