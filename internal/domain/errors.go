package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrMalformedRow = errors.New("fila mal formada en la base de datos")

	ErrAccountNotFound              = errors.New("cuenta financiera no encontrada")
	ErrAccountInactive              = errors.New("cuenta financiera inactiva")
	ErrCurrencyMismatchWithoutRate  = errors.New("la moneda difiere de la moneda base y no se informó tipo de cambio")
	ErrExchangeRateNotFound         = errors.New("tipo de cambio no encontrado")
	ErrMissingExchangeRate          = errors.New("no hay tipo de cambio disponible (ni siquiera de respaldo)")
	ErrInsufficientBalance          = errors.New("saldo insuficiente")
	ErrInvalidProductTypeForDueDate = errors.New("tipo de producto inválido para calcular vencimiento")
)

// InsufficientBalanceError detalla un egreso rechazado. Montos en moneda base (USD).
// errors.Is(err, ErrInsufficientBalance) es verdadero.
type InsufficientBalanceError struct {
	AccountID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("saldo insuficiente en cuenta %s: disponible %s, solicitado %s",
		e.AccountID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }
