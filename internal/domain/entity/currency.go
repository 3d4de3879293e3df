package entity

import (
	"fmt"
	"strings"
)

// Currency código ISO de moneda soportado por el libro contable.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyARS Currency = "ARS"
)

// BaseCurrency es la unidad normalizada del libro: todos los saldos se expresan en USD.
// Los tipos de cambio se registran como ARS por 1 USD.
const BaseCurrency = CurrencyUSD

// ParseCurrency valida y normaliza un código de moneda.
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case CurrencyUSD, CurrencyARS:
		return c, nil
	default:
		return "", fmt.Errorf("moneda no soportada: %q", s)
	}
}

// IsBase indica si la moneda es la moneda base (conversión identidad).
func (c Currency) IsBase() bool { return c == BaseCurrency }
