package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerMovementRepository puerto del registro de movimientos (solo inserción).
type LedgerMovementRepository interface {
	Create(ctx context.Context, movement *entity.LedgerMovement) error
	GetByID(ctx context.Context, id string) (*entity.LedgerMovement, error)
	// SumSignedUSD suma el efecto firmado en USD de los movimientos de la cuenta con
	// created_at en [from, to). Límites nil = sin cota. Devuelve también la cantidad.
	SumSignedUSD(ctx context.Context, accountID string, from, to *time.Time) (decimal.Decimal, int64, error)
	ListByAccount(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error)
	// ListForAccounts devuelve, en una sola consulta, los movimientos de varias cuentas con
	// created_at en [from, to), ordenados por created_at. from nil = desde el inicio.
	ListForAccounts(ctx context.Context, accountIDs []string, from *time.Time, to time.Time) ([]*entity.LedgerMovement, error)
}
