package repository

import (
	"context"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// FinancialAccountRepository puerto de persistencia de cuentas financieras.
// Get* devuelven (nil, nil) si la cuenta no existe.
type FinancialAccountRepository interface {
	Create(ctx context.Context, account *entity.FinancialAccount) error
	GetByID(ctx context.Context, id string) (*entity.FinancialAccount, error)
	// GetForUpdate bloquea la fila de la cuenta (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.FinancialAccount, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.FinancialAccount, error)
	ListActive(ctx context.Context) ([]*entity.FinancialAccount, error)
	// UpdateMetadata modifica solo nombre y estado; el saldo inicial es de una sola escritura.
	UpdateMetadata(ctx context.Context, id, name string, isActive bool) error
}
