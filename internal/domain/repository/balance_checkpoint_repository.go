package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// BalanceCheckpointRepository saldos de cierre diarios por cuenta.
type BalanceCheckpointRepository interface {
	// LatestBefore devuelve, por cuenta, el último checkpoint con checkpoint_date < day.
	// Las cuentas sin checkpoint no aparecen en el mapa.
	LatestBefore(ctx context.Context, accountIDs []string, day time.Time) (map[string]*entity.BalanceCheckpoint, error)
	Upsert(ctx context.Context, checkpoint *entity.BalanceCheckpoint) error
}
