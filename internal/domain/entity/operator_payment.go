package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago a operador.
const (
	OperatorPaymentPending = "PENDING"
	OperatorPaymentPaid    = "PAID"
)

// OperatorPayment pago programado a un operador (proveedor). Único por OperationID.
type OperatorPayment struct {
	ID          string
	OperationID string
	OperatorID  string
	Amount      decimal.Decimal
	Currency    Currency
	ProductType ProductType
	DueDate     time.Time
	Status      string
	CreatedAt   time.Time
}
