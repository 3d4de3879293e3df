package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// ExchangeRateRepository serie temporal de tipos de cambio. Devuelve (nil, nil) si no hay dato.
type ExchangeRateRepository interface {
	// GetOnOrBefore devuelve la cotización más reciente con effective_date <= day.
	GetOnOrBefore(ctx context.Context, day time.Time) (*entity.ExchangeRate, error)
	GetLatest(ctx context.Context) (*entity.ExchangeRate, error)
	Upsert(ctx context.Context, rate *entity.ExchangeRate) error
}
