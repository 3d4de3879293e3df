package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BalanceValidator calcula saldos y rechaza egresos que dejarían la cuenta en negativo.
type BalanceValidator struct {
	accountRepo  repository.FinancialAccountRepository
	movementRepo repository.LedgerMovementRepository
	log          zerolog.Logger
}

// NewBalanceValidator construye el validador con repositorios de lectura (pool).
func NewBalanceValidator(
	accountRepo repository.FinancialAccountRepository,
	movementRepo repository.LedgerMovementRepository,
	log zerolog.Logger,
) *BalanceValidator {
	return &BalanceValidator{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		log:          log.With().Str("component", "balance_validator").Logger(),
	}
}

// ExpenseCheck resultado de una validación de egreso aceptada. Montos en USD.
type ExpenseCheck struct {
	AccountID string
	Available decimal.Decimal
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

// CurrentBalance devuelve saldo inicial + Σ movimientos firmados, en USD.
func (v *BalanceValidator) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := v.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("obtener cuenta: %w", err)
	}
	if account == nil {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	return balanceOf(ctx, v.movementRepo, account)
}

// ValidateExpense verifica sin escribir si un egreso sería aceptado. Es una consulta
// consultiva: la garantía real la da la validación dentro de la transacción de Record.
// Devuelve *domain.InsufficientBalanceError si el saldo no alcanza.
func (v *BalanceValidator) ValidateExpense(
	ctx context.Context,
	accountID string,
	amount decimal.Decimal,
	currency string,
	rate *decimal.Decimal,
) (*ExpenseCheck, error) {
	cur, err := entity.ParseCurrency(currency)
	if err != nil || !amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	requested, _, err := domainledger.ToUSD(amount, cur, rate)
	if err != nil {
		return nil, err
	}

	account, err := v.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("obtener cuenta: %w", err)
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}

	available, err := balanceOf(ctx, v.movementRepo, account)
	if err != nil {
		return nil, err
	}
	if err := checkFunds(account.ID, available, requested); err != nil {
		return nil, err
	}
	return &ExpenseCheck{
		AccountID: account.ID,
		Available: available,
		Requested: requested,
		Remaining: available.Sub(requested),
	}, nil
}

// CheckOutflow valida un egreso con el saldo leído por movementRepo. Llamarlo dentro de
// la transacción que tiene la fila de la cuenta bloqueada.
func (v *BalanceValidator) CheckOutflow(
	ctx context.Context,
	movementRepo repository.LedgerMovementRepository,
	account *entity.FinancialAccount,
	requestedUSD decimal.Decimal,
) error {
	available, err := balanceOf(ctx, movementRepo, account)
	if err != nil {
		return err
	}
	if err := checkFunds(account.ID, available, requestedUSD); err != nil {
		v.log.Warn().
			Str("account_id", account.ID).
			Str("available", available.String()).
			Str("requested", requestedUSD.String()).
			Msg("egreso rechazado por saldo insuficiente")
		return err
	}
	return nil
}

func balanceOf(ctx context.Context, movementRepo repository.LedgerMovementRepository, account *entity.FinancialAccount) (decimal.Decimal, error) {
	sum, _, err := movementRepo.SumSignedUSD(ctx, account.ID, nil, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sumar movimientos: %w", err)
	}
	return account.InitialBalanceUSD.Add(sum), nil
}

// checkFunds: no se permite ningún sobregiro.
func checkFunds(accountID string, available, requested decimal.Decimal) error {
	if available.Sub(requested).IsNegative() {
		return &domain.InsufficientBalanceError{
			AccountID: accountID,
			Available: available,
			Requested: requested,
		}
	}
	return nil
}
