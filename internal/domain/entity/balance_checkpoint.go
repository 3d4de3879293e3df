package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceCheckpoint saldo de una cuenta al cierre de CheckpointDate (día calendario).
// Acota el recorrido de movimientos al reconstruir saldos diarios.
type BalanceCheckpoint struct {
	AccountID      string
	CheckpointDate time.Time
	BalanceUSD     decimal.Decimal
	MovementCount  int64
	CreatedAt      time.Time
}
