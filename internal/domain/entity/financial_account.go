package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FinancialAccount representa una caja o cuenta bancaria de la agencia.
// InitialBalance, InitialRate e InitialBalanceUSD se fijan al crear la cuenta y no cambian:
// las correcciones posteriores se registran como movimientos.
type FinancialAccount struct {
	ID                string
	AgencyID          string
	Name              string
	Currency          Currency
	InitialBalance    decimal.Decimal  // en la moneda de la cuenta
	InitialRate       *decimal.Decimal // ARS por USD; solo si la cuenta es ARS y el saldo inicial ≠ 0
	InitialBalanceUSD decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate verifica los invariantes de una cuenta leída o a persistir.
func (a *FinancialAccount) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("cuenta sin id")
	}
	if _, err := ParseCurrency(string(a.Currency)); err != nil {
		return err
	}
	if a.InitialRate != nil && !a.InitialRate.IsPositive() {
		return fmt.Errorf("cuenta %s: tipo de cambio inicial no positivo", a.ID)
	}
	if !a.Currency.IsBase() && !a.InitialBalance.IsZero() && a.InitialRate == nil {
		return fmt.Errorf("cuenta %s: saldo inicial en %s sin tipo de cambio", a.ID, a.Currency)
	}
	return nil
}
