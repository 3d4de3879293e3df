package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro.
type MovementType string

const (
	MovementIncome          MovementType = "INCOME"
	MovementExpense         MovementType = "EXPENSE"
	MovementFXGain          MovementType = "FX_GAIN"
	MovementFXLoss          MovementType = "FX_LOSS"
	MovementCommission      MovementType = "COMMISSION"
	MovementOperatorPayment MovementType = "OPERATOR_PAYMENT"
)

// AllMovementTypes tipos admitidos por el libro.
var AllMovementTypes = []MovementType{
	MovementIncome, MovementExpense, MovementFXGain, MovementFXLoss,
	MovementCommission, MovementOperatorPayment,
}

// ParseMovementType valida un tipo de movimiento.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementIncome, MovementExpense, MovementFXGain, MovementFXLoss,
		MovementCommission, MovementOperatorPayment:
		return t, nil
	default:
		return "", fmt.Errorf("tipo de movimiento desconocido: %q", s)
	}
}

// Sign devuelve +1 para ingresos y -1 para egresos.
func (t MovementType) Sign() int {
	switch t {
	case MovementIncome, MovementFXGain:
		return 1
	default:
		return -1
	}
}

// RequiresFunds indica si el movimiento es una salida de dinero que no puede dejar la
// cuenta en negativo. FX_LOSS es una revaluación y no se valida contra el saldo.
func (t MovementType) RequiresFunds() bool {
	switch t {
	case MovementExpense, MovementOperatorPayment, MovementCommission:
		return true
	default:
		return false
	}
}

// PaymentMethod medio de pago normalizado.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentTransfer    PaymentMethod = "TRANSFER"
	PaymentCard        PaymentMethod = "CARD"
	PaymentMercadoPago PaymentMethod = "MERCADOPAGO"
	PaymentCheck       PaymentMethod = "CHECK"
	PaymentOther       PaymentMethod = "OTHER"
)

// LedgerMovement es un movimiento inmutable del libro. AmountUSD se calcula una única vez
// al escribir y nunca se recalcula.
type LedgerMovement struct {
	ID             string
	AccountID      *string
	OperationID    *string
	LeadID         *string
	Type           MovementType
	Currency       Currency
	AmountOriginal decimal.Decimal
	ExchangeRate   *decimal.Decimal // ARS por USD; nil si Currency es la moneda base
	AmountUSD      decimal.Decimal
	Method         PaymentMethod
	Reference      string
	CreatedBy      string
	CreatedAt      time.Time
}

// SignedUSD devuelve el efecto del movimiento sobre el saldo, en USD.
func (m *LedgerMovement) SignedUSD() decimal.Decimal {
	if m.Type.Sign() < 0 {
		return m.AmountUSD.Neg()
	}
	return m.AmountUSD
}

// Validate verifica los invariantes del movimiento (tipos, montos y tipo de cambio).
func (m *LedgerMovement) Validate() error {
	if _, err := ParseMovementType(string(m.Type)); err != nil {
		return err
	}
	if _, err := ParseCurrency(string(m.Currency)); err != nil {
		return err
	}
	if !m.AmountOriginal.IsPositive() {
		return fmt.Errorf("monto original no positivo: %s", m.AmountOriginal)
	}
	if m.AmountUSD.IsNegative() {
		return fmt.Errorf("monto USD negativo: %s", m.AmountUSD)
	}
	if m.Currency.IsBase() {
		if m.ExchangeRate != nil {
			return fmt.Errorf("movimiento en %s con tipo de cambio", m.Currency)
		}
		return nil
	}
	if m.ExchangeRate == nil || !m.ExchangeRate.IsPositive() {
		return fmt.Errorf("movimiento en %s sin tipo de cambio positivo", m.Currency)
	}
	return nil
}
