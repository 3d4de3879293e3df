package http

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Contratos que los handlers necesitan de la capa de aplicación.

type AccountService interface {
	Create(ctx context.Context, in ledger.CreateAccountInput) (*entity.FinancialAccount, error)
	Get(ctx context.Context, id string) (*entity.FinancialAccount, error)
	UpdateMetadata(ctx context.Context, id, name string, isActive bool) (*entity.FinancialAccount, error)
}

type BalanceService interface {
	CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	ValidateExpense(ctx context.Context, accountID string, amount decimal.Decimal, currency string, rate *decimal.Decimal) (*ledger.ExpenseCheck, error)
}

type MovementService interface {
	Record(ctx context.Context, in ledger.RecordInput) (string, error)
	Get(ctx context.Context, id string) (*entity.LedgerMovement, error)
	ListByAccount(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error)
}

type SeriesService interface {
	DailySeries(ctx context.Context, accountIDs []string, from, to time.Time) ([]ledger.DailyBalance, error)
}

type CheckpointService interface {
	CreateForDay(ctx context.Context, day time.Time) (int, error)
	CreateForYesterday(ctx context.Context) (int, error)
}

type RateService interface {
	ledger.RateResolver
	Record(ctx context.Context, day time.Time, rate decimal.Decimal, source string) (*entity.ExchangeRate, error)
}

type TaxService interface {
	CreateSaleIVA(ctx context.Context, in tax.SaleIVAInput) (*entity.IVARecord, bool, error)
	CreatePurchaseIVA(ctx context.Context, in tax.PurchaseIVAInput) (*entity.IVARecord, bool, error)
	CalculateDueDate(productType string, created time.Time, checkin, departure *time.Time) (time.Time, error)
	CreateOperatorPayment(ctx context.Context, in tax.OperatorPaymentInput) (*entity.OperatorPayment, bool, error)
}

type BackfillService interface {
	Run(ctx context.Context, limit int) (*tax.BackfillReport, error)
}

var (
	_ AccountService    = (*ledger.AccountUseCase)(nil)
	_ BalanceService    = (*ledger.BalanceValidator)(nil)
	_ MovementService   = (*ledger.MovementStore)(nil)
	_ SeriesService     = (*ledger.BalanceReconstructor)(nil)
	_ CheckpointService = (*ledger.CheckpointUseCase)(nil)
	_ RateService       = (*ledger.ExchangeRateResolver)(nil)
	_ TaxService        = (*tax.Deriver)(nil)
	_ BackfillService   = (*tax.BackfillUseCase)(nil)
)
