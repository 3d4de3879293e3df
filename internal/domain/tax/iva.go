// Package tax contiene los cálculos puros de IVA y de vencimientos de pagos a operadores.
package tax

import "github.com/shopspring/decimal"

// Escalas de las columnas fiscales: importes NUMERIC(20,2), alícuota NUMERIC(6,4).
const (
	MoneyScale   int32 = 2
	IVARateScale int32 = 4
)

// DefaultIVARate alícuota general de IVA.
var DefaultIVARate = decimal.RequireFromString("0.21")

// SplitIVA descompone un monto bruto (IVA incluido) en base imponible e impuesto.
//
//	Neto = Bruto / (1 + alícuota)   (redondeo a MoneyScale decimales)
//	IVA  = Bruto - Neto
//
// El IVA se obtiene por diferencia para que Neto + IVA == Bruto siempre.
func SplitIVA(gross, rate decimal.Decimal) (net, iva decimal.Decimal) {
	net = gross.DivRound(decimal.NewFromInt(1).Add(rate), MoneyScale)
	iva = gross.Sub(net)
	return net, iva
}
