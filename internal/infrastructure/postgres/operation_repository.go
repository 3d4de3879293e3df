package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

var _ repository.OperationRepository = (*OperationRepo)(nil)

// OperationRepo lectura de la tabla operations del sistema de ventas.
type OperationRepo struct {
	q Querier
}

// NewOperationRepository construye el adaptador.
func NewOperationRepository(q Querier) *OperationRepo {
	return &OperationRepo{q: q}
}

// ListPendingDerivations pagina por id las operaciones a las que les falta IVA de venta,
// IVA de compra o pago a operador.
func (r *OperationRepo) ListPendingDerivations(ctx context.Context, afterID string, limit int) ([]*entity.Operation, error) {
	query := `
		SELECT o.id, o.operator_id, o.product_type, o.sale_amount, o.sale_currency,
		       o.operator_cost, o.operator_cost_currency, o.created_at, o.checkin_date, o.departure_date
		FROM operations o
		WHERE o.id > $1
		  AND (
		        NOT EXISTS (SELECT 1 FROM iva_records i
		                    WHERE i.operation_id = o.id AND i.direction = 'SALE')
		     OR (o.operator_id IS NOT NULL AND NOT EXISTS (
		                    SELECT 1 FROM iva_records i
		                    WHERE i.operation_id = o.id AND i.direction = 'PURCHASE'))
		     OR (o.operator_id IS NOT NULL AND NOT EXISTS (
		                    SELECT 1 FROM operator_payments p WHERE p.operation_id = o.id))
		  )
		ORDER BY o.id
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Operation
	for rows.Next() {
		var (
			op                            entity.Operation
			productType, saleCur, costCur string
		)
		if err := rows.Scan(&op.ID, &op.OperatorID, &productType, &op.SaleAmount, &saleCur,
			&op.OperatorCost, &costCur, &op.CreatedAt, &op.CheckinDate, &op.DepartureDate); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.ProductType = entity.ProductType(productType)
		op.SaleCurrency = entity.Currency(saleCur)
		op.OperatorCostCurrency = entity.Currency(costCur)
		out = append(out, &op)
	}
	return out, rows.Err()
}
