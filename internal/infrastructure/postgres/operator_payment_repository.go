package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

var _ repository.OperatorPaymentRepository = (*OperatorPaymentRepo)(nil)

// OperatorPaymentRepo tabla operator_payments, única por operation_id.
type OperatorPaymentRepo struct {
	q Querier
}

// NewOperatorPaymentRepository construye el adaptador.
func NewOperatorPaymentRepository(q Querier) *OperatorPaymentRepo {
	return &OperatorPaymentRepo{q: q}
}

func (r *OperatorPaymentRepo) GetByOperation(ctx context.Context, operationID string) (*entity.OperatorPayment, error) {
	query := `
		SELECT id::text, operation_id, operator_id, amount, currency, product_type, due_date, status, created_at
		FROM operator_payments
		WHERE operation_id = $1`
	var (
		p                     entity.OperatorPayment
		currency, productType string
	)
	err := r.q.QueryRow(ctx, query, operationID).Scan(
		&p.ID, &p.OperationID, &p.OperatorID, &p.Amount, &currency, &productType,
		&p.DueDate, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operator payment: %w", err)
	}
	p.Currency = entity.Currency(currency)
	p.ProductType = entity.ProductType(productType)
	if _, err := entity.ParseCurrency(currency); err != nil {
		return nil, malformed("operator_payments", p.ID, err)
	}
	return &p, nil
}

func (r *OperatorPaymentRepo) CreateIfAbsent(ctx context.Context, p *entity.OperatorPayment) (bool, error) {
	query := `
		INSERT INTO operator_payments (id, operation_id, operator_id, amount, currency, product_type,
			due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (operation_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.OperationID, p.OperatorID, p.Amount, string(p.Currency), string(p.ProductType),
		p.DueDate, p.Status, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert operator payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
