// Package ledger contiene la aritmética pura del libro contable: conversión a la moneda
// base, signos de movimientos, saldos y calendario. No accede a la base de datos.
package ledger

import (
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Escalas de las columnas NUMERIC(20,6) del libro.
const (
	// USDScale decimales con los que se persiste el equivalente en USD.
	USDScale int32 = 6
	// AmountScale decimales admitidos para el monto original.
	AmountScale int32 = 6
	// RateScale decimales con los que se persiste el tipo de cambio.
	RateScale int32 = 6
)

// FitsScale indica si d se representa sin pérdida con scale decimales.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Round(scale))
}

// NormalizeRate redondea el tipo de cambio a la escala persistida.
// Un tipo que redondea a cero deja de ser válido.
func NormalizeRate(rate decimal.Decimal) (decimal.Decimal, error) {
	r := rate.Round(RateScale)
	if !r.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return r, nil
}

// ToUSD convierte un monto a la moneda base.
//
//	moneda base:  AmountUSD = amount, sin tipo de cambio (se descarta si vino informado)
//	ARS:          AmountUSD = amount / rate, rate > 0 obligatorio
//
// El monto debe caber en AmountScale; el tipo de cambio se redondea a RateScale antes de
// dividir, así el triple devuelto es exactamente el que se persiste.
// Devuelve el tipo de cambio que debe persistirse junto al movimiento (nil en moneda base).
func ToUSD(amount decimal.Decimal, currency entity.Currency, rate *decimal.Decimal) (decimal.Decimal, *decimal.Decimal, error) {
	if !FitsScale(amount, AmountScale) {
		return decimal.Zero, nil, domain.ErrInvalidInput
	}
	if currency.IsBase() {
		return amount, nil, nil
	}
	if rate == nil {
		return decimal.Zero, nil, domain.ErrCurrencyMismatchWithoutRate
	}
	if !rate.IsPositive() {
		return decimal.Zero, nil, domain.ErrInvalidInput
	}
	r, err := NormalizeRate(*rate)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount.DivRound(r, USDScale), &r, nil
}
