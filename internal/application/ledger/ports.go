// Package ledger implementa los casos de uso del libro contable multimoneda: resolución de
// tipos de cambio, registro de movimientos, validación de saldo, reconstrucción de saldos
// diarios y checkpoints.
package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Si fn devuelve error se hace Rollback y no queda ninguna escritura parcial.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		accountRepo repository.FinancialAccountRepository,
		movementRepo repository.LedgerMovementRepository,
	) error) error
}

// RateCache caché compartida (entre procesos) de búsquedas "vigente al día X".
// Un error de caché nunca impide resolver contra la base.
type RateCache interface {
	GetOnOrBefore(ctx context.Context, day time.Time) (*entity.ExchangeRate, error)
	SetOnOrBefore(ctx context.Context, day time.Time, rate *entity.ExchangeRate) error
}

// Settings parámetros de negocio compartidos por los casos de uso del libro.
type Settings struct {
	Location     *time.Location   // zona horaria que define el día calendario
	MaxRangeDays int              // tope de días para DailySeries
	Now          func() time.Time // reloj; nil = time.Now
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s Settings) maxRangeDays() int {
	if s.MaxRangeDays > 0 {
		return s.MaxRangeDays
	}
	return 731
}
