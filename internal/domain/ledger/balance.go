package ledger

import (
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Balance suma el saldo inicial más el efecto firmado de cada movimiento.
// La suma es conmutativa: el orden de los movimientos no altera el resultado.
func Balance(initialUSD decimal.Decimal, movements []*entity.LedgerMovement) decimal.Decimal {
	total := initialUSD
	for _, m := range movements {
		total = total.Add(m.SignedUSD())
	}
	return total
}

// Signed aplica el signo del tipo de movimiento a un monto en USD.
func Signed(t entity.MovementType, amountUSD decimal.Decimal) decimal.Decimal {
	if t.Sign() < 0 {
		return amountUSD.Neg()
	}
	return amountUSD
}
