package repository

import (
	"context"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// OperationRepository lectura de operaciones (tabla gestionada fuera del libro).
type OperationRepository interface {
	// ListPendingDerivations devuelve operaciones con id > afterID a las que les falta
	// IVA de venta, IVA de compra o pago a operador, ordenadas por id.
	ListPendingDerivations(ctx context.Context, afterID string, limit int) ([]*entity.Operation, error)
}
