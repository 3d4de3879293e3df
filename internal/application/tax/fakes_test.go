package tax_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ── IVA ──────────────────────────────────────────────────────────────────────

type memIVARepo struct {
	mu      sync.Mutex
	records map[string]*entity.IVARecord
	inserts int
	// racer simula otra petición que inserta primero
	racer *entity.IVARecord
}

var _ repository.IVARecordRepository = (*memIVARepo)(nil)

func newMemIVARepo() *memIVARepo {
	return &memIVARepo{records: make(map[string]*entity.IVARecord)}
}

func (r *memIVARepo) GetByOperation(_ context.Context, operationID, direction string) (*entity.IVARecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[operationID+"/"+direction], nil
}

// ivaAsStored devuelve el registro con las escalas de las columnas de iva_records.
func ivaAsStored(rec *entity.IVARecord) *entity.IVARecord {
	cp := *rec
	cp.GrossAmount = cp.GrossAmount.Round(2)
	cp.NetAmount = cp.NetAmount.Round(2)
	cp.IVAAmount = cp.IVAAmount.Round(2)
	cp.IVARate = cp.IVARate.Round(4)
	cp.ExchangeRate = cp.ExchangeRate.Round(6)
	cp.IVAAmountUSD = cp.IVAAmountUSD.Round(6)
	return &cp
}

func (r *memIVARepo) CreateIfAbsent(_ context.Context, rec *entity.IVARecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rec.OperationID + "/" + rec.Direction
	if r.racer != nil {
		r.records[key] = r.racer
		r.racer = nil
	}
	if _, ok := r.records[key]; ok {
		return false, nil
	}
	r.records[key] = ivaAsStored(rec)
	r.inserts++
	return true, nil
}

// ── pagos a operadores ───────────────────────────────────────────────────────

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*entity.OperatorPayment
	failGet  error
}

var _ repository.OperatorPaymentRepository = (*memPaymentRepo)(nil)

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[string]*entity.OperatorPayment)}
}

func (r *memPaymentRepo) GetByOperation(_ context.Context, operationID string) (*entity.OperatorPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	return r.payments[operationID], nil
}

func (r *memPaymentRepo) CreateIfAbsent(_ context.Context, p *entity.OperatorPayment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.OperationID]; ok {
		return false, nil
	}
	cp := *p
	cp.Amount = cp.Amount.Round(2)
	r.payments[p.OperationID] = &cp
	return true, nil
}

// ── tipos de cambio ──────────────────────────────────────────────────────────

type memRateRepo struct {
	mu      sync.Mutex
	rates   []*entity.ExchangeRate
	lookups int
}

var _ repository.ExchangeRateRepository = (*memRateRepo)(nil)

func (r *memRateRepo) GetOnOrBefore(_ context.Context, day time.Time) (*entity.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	var best *entity.ExchangeRate
	for _, er := range r.rates {
		if !er.EffectiveDate.After(day) && (best == nil || er.EffectiveDate.After(best.EffectiveDate)) {
			best = er
		}
	}
	return best, nil
}

func (r *memRateRepo) GetLatest(_ context.Context) (*entity.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.ExchangeRate
	for _, er := range r.rates {
		if best == nil || er.EffectiveDate.After(best.EffectiveDate) {
			best = er
		}
	}
	return best, nil
}

func (r *memRateRepo) Upsert(_ context.Context, rate *entity.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = append(r.rates, rate)
	return nil
}

// ── operaciones ──────────────────────────────────────────────────────────────

type memOperationRepo struct {
	ops   []*entity.Operation
	calls int
	fail  error
}

var _ repository.OperationRepository = (*memOperationRepo)(nil)

func (r *memOperationRepo) ListPendingDerivations(_ context.Context, afterID string, limit int) ([]*entity.Operation, error) {
	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}
	sorted := append([]*entity.Operation(nil), r.ops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	var out []*entity.Operation
	for _, op := range sorted {
		if op.ID > afterID {
			out = append(out, op)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── fixture ──────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	iva      *memIVARepo
	payments *memPaymentRepo
	rates    *memRateRepo
	resolver *ledger.ExchangeRateResolver
	deriver  *tax.Deriver
}

func newFixture(fallback *decimal.Decimal) *fixture {
	f := &fixture{
		iva:      newMemIVARepo(),
		payments: newMemPaymentRepo(),
		rates:    &memRateRepo{},
	}
	f.resolver = ledger.NewExchangeRateResolver(f.rates, nil, fallback, zerolog.Nop())
	f.deriver = tax.NewDeriver(f.iva, f.payments, f.resolver, tax.Options{Now: func() time.Time { return fixedNow }}, zerolog.Nop())
	return f
}

func (f *fixture) addRate(day time.Time, rate string) {
	f.rates.rates = append(f.rates.rates, &entity.ExchangeRate{EffectiveDate: day, Rate: decimal.RequireFromString(rate)})
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal { v := decimal.RequireFromString(s); return &v }

func sp(s string) *string { return &s }

func day(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

func tp(t time.Time) *time.Time { return &t }
