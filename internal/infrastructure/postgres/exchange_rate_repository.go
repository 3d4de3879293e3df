package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo tabla exchange_rates: una cotización (ARS por USD) por día.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador.
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// GetOnOrBefore devuelve la cotización más reciente con effective_date <= day.
func (r *ExchangeRateRepo) GetOnOrBefore(ctx context.Context, day time.Time) (*entity.ExchangeRate, error) {
	query := `
		SELECT effective_date, rate, source, created_at
		FROM exchange_rates
		WHERE effective_date <= $1
		ORDER BY effective_date DESC
		LIMIT 1`
	return r.getOne(ctx, query, day)
}

func (r *ExchangeRateRepo) GetLatest(ctx context.Context) (*entity.ExchangeRate, error) {
	query := `
		SELECT effective_date, rate, source, created_at
		FROM exchange_rates
		ORDER BY effective_date DESC
		LIMIT 1`
	return r.getOne(ctx, query)
}

func (r *ExchangeRateRepo) Upsert(ctx context.Context, rate *entity.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (effective_date, rate, source, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (effective_date)
		DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, created_at = EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query, rate.EffectiveDate, rate.Rate, rate.Source, rate.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert exchange rate: %w", err)
	}
	return nil
}

func (r *ExchangeRateRepo) getOne(ctx context.Context, query string, args ...any) (*entity.ExchangeRate, error) {
	var er entity.ExchangeRate
	err := r.q.QueryRow(ctx, query, args...).Scan(&er.EffectiveDate, &er.Rate, &er.Source, &er.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange rate: %w", err)
	}
	if !er.Rate.IsPositive() {
		return nil, malformed("exchange_rates", er.EffectiveDate.Format(time.DateOnly), fmt.Errorf("cotización no positiva %s", er.Rate))
	}
	return &er, nil
}
