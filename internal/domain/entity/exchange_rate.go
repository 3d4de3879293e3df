package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate cotización vigente desde EffectiveDate: ARS por 1 USD.
// EffectiveDate es un día calendario (medianoche UTC).
type ExchangeRate struct {
	EffectiveDate time.Time
	Rate          decimal.Decimal
	Source        string
	CreatedAt     time.Time
}
