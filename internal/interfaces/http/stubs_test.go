package http_test

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Stubs configurables de los servicios de aplicación. Cada campo nil responde con el
// valor cero.

type stubAccounts struct {
	create func(ledger.CreateAccountInput) (*entity.FinancialAccount, error)
	get    func(string) (*entity.FinancialAccount, error)
}

func (s *stubAccounts) Create(_ context.Context, in ledger.CreateAccountInput) (*entity.FinancialAccount, error) {
	return s.create(in)
}

func (s *stubAccounts) Get(_ context.Context, id string) (*entity.FinancialAccount, error) {
	if s.get == nil {
		return &entity.FinancialAccount{ID: id, Currency: entity.CurrencyUSD, IsActive: true}, nil
	}
	return s.get(id)
}

func (s *stubAccounts) UpdateMetadata(_ context.Context, id, name string, isActive bool) (*entity.FinancialAccount, error) {
	return &entity.FinancialAccount{ID: id, Name: name, Currency: entity.CurrencyUSD, IsActive: isActive}, nil
}

type stubBalances struct {
	balance  decimal.Decimal
	validate func(accountID string, amount decimal.Decimal, currency string, rate *decimal.Decimal) (*ledger.ExpenseCheck, error)
}

func (s *stubBalances) CurrentBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	return s.balance, nil
}

func (s *stubBalances) ValidateExpense(_ context.Context, accountID string, amount decimal.Decimal, currency string, rate *decimal.Decimal) (*ledger.ExpenseCheck, error) {
	return s.validate(accountID, amount, currency, rate)
}

type listCall struct {
	accountID     string
	from, to      *time.Time
	limit, offset int
}

type stubMovements struct {
	record   func(ledger.RecordInput) (string, error)
	get      func(string) (*entity.LedgerMovement, error)
	lastList listCall
	list     []*entity.LedgerMovement
}

func (s *stubMovements) Record(_ context.Context, in ledger.RecordInput) (string, error) {
	return s.record(in)
}

func (s *stubMovements) Get(_ context.Context, id string) (*entity.LedgerMovement, error) {
	return s.get(id)
}

func (s *stubMovements) ListByAccount(_ context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error) {
	s.lastList = listCall{accountID: accountID, from: from, to: to, limit: limit, offset: offset}
	return s.list, nil
}

type stubSeries struct {
	ids      []string
	from, to time.Time
	out      []ledger.DailyBalance
	err      error
}

func (s *stubSeries) DailySeries(_ context.Context, ids []string, from, to time.Time) ([]ledger.DailyBalance, error) {
	s.ids, s.from, s.to = ids, from, to
	return s.out, s.err
}

type stubCheckpoints struct {
	day       time.Time
	yesterday bool
}

func (s *stubCheckpoints) CreateForDay(_ context.Context, day time.Time) (int, error) {
	s.day = day
	return 2, nil
}

func (s *stubCheckpoints) CreateForYesterday(_ context.Context) (int, error) {
	s.yesterday = true
	return 2, nil
}

type stubRates struct {
	rates    map[time.Time]*entity.ExchangeRate
	fallback *decimal.Decimal
	recorded *entity.ExchangeRate
}

func (s *stubRates) Resolve(ctx context.Context, day time.Time) (*entity.ExchangeRate, error) {
	r, ok := s.rates[day]
	if !ok {
		return nil, errNotFoundRate
	}
	return r, nil
}

func (s *stubRates) ResolveBatch(_ context.Context, days []time.Time) (map[time.Time]*entity.ExchangeRate, error) {
	out := make(map[time.Time]*entity.ExchangeRate)
	for _, d := range days {
		if r, ok := s.rates[d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (s *stubRates) Latest(_ context.Context) (*entity.ExchangeRate, error) {
	var best *entity.ExchangeRate
	for _, r := range s.rates {
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
		}
	}
	if best == nil {
		return nil, errNotFoundRate
	}
	return best, nil
}

func (s *stubRates) ResolveWithFallback(ctx context.Context, day time.Time) (ledger.ResolvedRate, error) {
	if r, err := s.Resolve(ctx, day); err == nil {
		return ledger.ResolvedRate{Rate: r.Rate, EffectiveDate: r.EffectiveDate, Source: ledger.RateSourceExact}, nil
	}
	if s.fallback != nil {
		return ledger.ResolvedRate{Rate: *s.fallback, Source: ledger.RateSourceFallback}, nil
	}
	return ledger.ResolvedRate{}, errMissingRate
}

func (s *stubRates) Record(_ context.Context, day time.Time, rate decimal.Decimal, source string) (*entity.ExchangeRate, error) {
	s.recorded = &entity.ExchangeRate{EffectiveDate: day, Rate: rate, Source: source}
	return s.recorded, nil
}

type stubTax struct {
	sale     func(tax.SaleIVAInput) (*entity.IVARecord, bool, error)
	payment  func(tax.OperatorPaymentInput) (*entity.OperatorPayment, bool, error)
	lastDue  []any
	dueDate  time.Time
	dueError error
}

func (s *stubTax) CreateSaleIVA(_ context.Context, in tax.SaleIVAInput) (*entity.IVARecord, bool, error) {
	return s.sale(in)
}

func (s *stubTax) CreatePurchaseIVA(_ context.Context, in tax.PurchaseIVAInput) (*entity.IVARecord, bool, error) {
	op := in.OperatorID
	return &entity.IVARecord{ID: "iva-p", Direction: entity.IVADirectionPurchase, OperationID: in.OperationID, OperatorID: &op, Currency: entity.CurrencyUSD, ReferenceDate: in.ReferenceDate}, true, nil
}

func (s *stubTax) CalculateDueDate(productType string, created time.Time, checkin, departure *time.Time) (time.Time, error) {
	s.lastDue = []any{productType, created, checkin, departure}
	return s.dueDate, s.dueError
}

func (s *stubTax) CreateOperatorPayment(_ context.Context, in tax.OperatorPaymentInput) (*entity.OperatorPayment, bool, error) {
	return s.payment(in)
}

type stubBackfill struct{ limit int }

func (s *stubBackfill) Run(_ context.Context, limit int) (*tax.BackfillReport, error) {
	s.limit = limit
	return &tax.BackfillReport{Scanned: 3, SaleIVA: 2, Skipped: 1, SkippedIDs: []string{"op-9"}}, nil
}
