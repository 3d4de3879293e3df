package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AccountUseCase alta y consulta de cuentas financieras.
type AccountUseCase struct {
	accountRepo repository.FinancialAccountRepository
	settings    Settings
}

// NewAccountUseCase construye el caso de uso.
func NewAccountUseCase(accountRepo repository.FinancialAccountRepository, settings Settings) *AccountUseCase {
	return &AccountUseCase{accountRepo: accountRepo, settings: settings}
}

// CreateAccountInput datos de alta. InitialRate (ARS por USD) es obligatorio para cuentas
// en ARS con saldo inicial distinto de cero.
type CreateAccountInput struct {
	AgencyID       string
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
	InitialRate    *decimal.Decimal
}

// Create da de alta la cuenta y fija, una única vez, su saldo inicial en USD.
func (uc *AccountUseCase) Create(ctx context.Context, in CreateAccountInput) (*entity.FinancialAccount, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	cur, err := entity.ParseCurrency(in.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	initialUSD := decimal.Zero
	var rate *decimal.Decimal
	if !in.InitialBalance.IsZero() {
		initialUSD, rate, err = domainledger.ToUSD(in.InitialBalance, cur, in.InitialRate)
		if err != nil {
			return nil, err
		}
	}

	now := uc.settings.now()
	account := &entity.FinancialAccount{
		ID:                uuid.New().String(),
		AgencyID:          in.AgencyID,
		Name:              name,
		Currency:          cur,
		InitialBalance:    in.InitialBalance,
		InitialRate:       rate,
		InitialBalanceUSD: initialUSD,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Get devuelve la cuenta o domain.ErrAccountNotFound.
func (uc *AccountUseCase) Get(ctx context.Context, id string) (*entity.FinancialAccount, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// UpdateMetadata cambia nombre y estado. No toca el saldo inicial.
func (uc *AccountUseCase) UpdateMetadata(ctx context.Context, id, name string, isActive bool) (*entity.FinancialAccount, error) {
	account, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		account.Name = strings.TrimSpace(name)
	}
	account.IsActive = isActive
	if err := uc.accountRepo.UpdateMetadata(ctx, id, account.Name, isActive); err != nil {
		return nil, err
	}
	return account, nil
}
