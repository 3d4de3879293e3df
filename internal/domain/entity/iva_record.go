package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del registro de IVA.
const (
	IVADirectionSale     = "SALE"     // débito fiscal
	IVADirectionPurchase = "PURCHASE" // crédito fiscal
)

// IVARecord registro de IVA de una operación. Único por (OperationID, Direction).
type IVARecord struct {
	ID            string
	Direction     string
	OperationID   string
	OperatorID    *string // solo compras
	Currency      Currency
	GrossAmount   decimal.Decimal
	NetAmount     decimal.Decimal // base imponible
	IVARate       decimal.Decimal
	IVAAmount     decimal.Decimal
	ExchangeRate  decimal.Decimal // ARS por USD a la fecha de referencia
	IVAAmountUSD  decimal.Decimal
	ReferenceDate time.Time
	CreatedAt     time.Time
}
