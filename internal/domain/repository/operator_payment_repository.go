package repository

import (
	"context"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// OperatorPaymentRepository pagos a operadores, únicos por operation_id.
type OperatorPaymentRepository interface {
	GetByOperation(ctx context.Context, operationID string) (*entity.OperatorPayment, error)
	CreateIfAbsent(ctx context.Context, payment *entity.OperatorPayment) (created bool, err error)
}
