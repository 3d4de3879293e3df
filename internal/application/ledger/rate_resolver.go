package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Origen de un tipo de cambio resuelto con respaldo.
const (
	RateSourceExact    = "EXACT"    // vigente a la fecha pedida
	RateSourceLatest   = "LATEST"   // último registrado (no había dato a esa fecha)
	RateSourceFallback = "FALLBACK" // valor de respaldo configurado
)

// ResolvedRate tipo de cambio (ARS por USD) junto con su procedencia.
type ResolvedRate struct {
	Rate          decimal.Decimal
	EffectiveDate time.Time // cero si Source es FALLBACK
	Source        string
}

// RateResolver vista de lectura del resolvedor de tipos de cambio.
type RateResolver interface {
	Resolve(ctx context.Context, day time.Time) (*entity.ExchangeRate, error)
	ResolveBatch(ctx context.Context, days []time.Time) (map[time.Time]*entity.ExchangeRate, error)
	Latest(ctx context.Context) (*entity.ExchangeRate, error)
	ResolveWithFallback(ctx context.Context, day time.Time) (ResolvedRate, error)
}

var (
	_ RateResolver = (*ExchangeRateResolver)(nil)
	_ RateResolver = (*RequestRates)(nil)
)

// ExchangeRateResolver resuelve tipos de cambio por fecha. Es seguro para uso concurrente:
// no tiene estado mutable propio; la memoización por petición vive en RequestRates.
type ExchangeRateResolver struct {
	repo     repository.ExchangeRateRepository
	cache    RateCache
	fallback *decimal.Decimal
	log      zerolog.Logger
}

// NewExchangeRateResolver construye el resolvedor. cache puede ser nil. fallback es el
// único valor de respaldo del sistema (nil = sin respaldo).
func NewExchangeRateResolver(
	repo repository.ExchangeRateRepository,
	cache RateCache,
	fallback *decimal.Decimal,
	log zerolog.Logger,
) *ExchangeRateResolver {
	return &ExchangeRateResolver{
		repo:     repo,
		cache:    cache,
		fallback: fallback,
		log:      log.With().Str("component", "exchange_rate_resolver").Logger(),
	}
}

// Resolve devuelve la cotización más reciente vigente el día day (o antes).
// domain.ErrExchangeRateNotFound si no hay ninguna.
func (r *ExchangeRateResolver) Resolve(ctx context.Context, day time.Time) (*entity.ExchangeRate, error) {
	day = domainledger.NormalizeDay(day)
	if r.cache != nil {
		cached, err := r.cache.GetOnOrBefore(ctx, day)
		if err != nil {
			r.log.Warn().Err(err).Time("day", day).Msg("caché de tipos de cambio no disponible")
		} else if cached != nil {
			return cached, nil
		}
	}
	rate, err := r.repo.GetOnOrBefore(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("resolver tipo de cambio: %w", err)
	}
	if rate == nil {
		return nil, domain.ErrExchangeRateNotFound
	}
	if r.cache != nil {
		if err := r.cache.SetOnOrBefore(ctx, day, rate); err != nil {
			r.log.Warn().Err(err).Time("day", day).Msg("no se pudo cachear el tipo de cambio")
		}
	}
	return rate, nil
}

// ResolveBatch resuelve varias fechas haciendo una sola búsqueda por día distinto.
// Los días sin cotización no aparecen en el mapa. Las claves son días normalizados.
func (r *ExchangeRateResolver) ResolveBatch(ctx context.Context, days []time.Time) (map[time.Time]*entity.ExchangeRate, error) {
	return resolveBatch(ctx, days, r.Resolve)
}

// Latest devuelve la última cotización registrada.
func (r *ExchangeRateResolver) Latest(ctx context.Context) (*entity.ExchangeRate, error) {
	rate, err := r.repo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("último tipo de cambio: %w", err)
	}
	if rate == nil {
		return nil, domain.ErrExchangeRateNotFound
	}
	return rate, nil
}

// ResolveWithFallback aplica la cadena Resolve → Latest → respaldo configurado.
// domain.ErrMissingExchangeRate si ninguno existe.
func (r *ExchangeRateResolver) ResolveWithFallback(ctx context.Context, day time.Time) (ResolvedRate, error) {
	return resolveWithFallback(ctx, day, r.Resolve, r.Latest, r.fallback, r.log)
}

// Record registra (o reemplaza) la cotización de un día.
func (r *ExchangeRateResolver) Record(ctx context.Context, day time.Time, rate decimal.Decimal, source string) (*entity.ExchangeRate, error) {
	if !rate.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	rate, err := domainledger.NormalizeRate(rate)
	if err != nil {
		return nil, err
	}
	er := &entity.ExchangeRate{
		EffectiveDate: domainledger.NormalizeDay(day),
		Rate:          rate,
		Source:        source,
		CreatedAt:     time.Now(),
	}
	if err := r.repo.Upsert(ctx, er); err != nil {
		return nil, err
	}
	if inv, ok := r.cache.(interface{ Invalidate(context.Context) error }); ok {
		if err := inv.Invalidate(ctx); err != nil {
			r.log.Warn().Err(err).Msg("no se pudo invalidar la caché de tipos de cambio")
		}
	}
	r.log.Info().Time("day", er.EffectiveDate).Str("rate", rate.String()).Str("source", source).Msg("tipo de cambio registrado")
	return er, nil
}

// ForRequest devuelve una vista que memoiza las búsquedas durante una petición lógica.
func (r *ExchangeRateResolver) ForRequest() *RequestRates {
	return &RequestRates{parent: r, byDay: make(map[time.Time]memoRate)}
}

type memoRate struct {
	rate *entity.ExchangeRate
	err  error
}

// RequestRates memoiza resultados (incluidos los "no encontrado") durante una petición.
// Los errores de infraestructura no se memoizan.
type RequestRates struct {
	parent *ExchangeRateResolver

	mu     sync.Mutex
	byDay  map[time.Time]memoRate
	latest *memoRate
}

func (q *RequestRates) Resolve(ctx context.Context, day time.Time) (*entity.ExchangeRate, error) {
	day = domainledger.NormalizeDay(day)
	q.mu.Lock()
	if m, ok := q.byDay[day]; ok {
		q.mu.Unlock()
		return m.rate, m.err
	}
	q.mu.Unlock()

	rate, err := q.parent.Resolve(ctx, day)
	if err == nil || err == domain.ErrExchangeRateNotFound {
		q.mu.Lock()
		q.byDay[day] = memoRate{rate: rate, err: err}
		q.mu.Unlock()
	}
	return rate, err
}

func (q *RequestRates) ResolveBatch(ctx context.Context, days []time.Time) (map[time.Time]*entity.ExchangeRate, error) {
	return resolveBatch(ctx, days, q.Resolve)
}

func (q *RequestRates) Latest(ctx context.Context) (*entity.ExchangeRate, error) {
	q.mu.Lock()
	if q.latest != nil {
		m := *q.latest
		q.mu.Unlock()
		return m.rate, m.err
	}
	q.mu.Unlock()

	rate, err := q.parent.Latest(ctx)
	if err == nil || err == domain.ErrExchangeRateNotFound {
		q.mu.Lock()
		q.latest = &memoRate{rate: rate, err: err}
		q.mu.Unlock()
	}
	return rate, err
}

func (q *RequestRates) ResolveWithFallback(ctx context.Context, day time.Time) (ResolvedRate, error) {
	return resolveWithFallback(ctx, day, q.Resolve, q.Latest, q.parent.fallback, q.parent.log)
}

func resolveBatch(
	ctx context.Context,
	days []time.Time,
	resolve func(context.Context, time.Time) (*entity.ExchangeRate, error),
) (map[time.Time]*entity.ExchangeRate, error) {
	unique := make([]time.Time, 0, len(days))
	seen := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		d = domainledger.NormalizeDay(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	out := make(map[time.Time]*entity.ExchangeRate, len(unique))
	for _, d := range unique {
		rate, err := resolve(ctx, d)
		if err == domain.ErrExchangeRateNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[d] = rate
	}
	return out, nil
}

func resolveWithFallback(
	ctx context.Context,
	day time.Time,
	resolve func(context.Context, time.Time) (*entity.ExchangeRate, error),
	latest func(context.Context) (*entity.ExchangeRate, error),
	fallback *decimal.Decimal,
	log zerolog.Logger,
) (ResolvedRate, error) {
	rate, err := resolve(ctx, day)
	if err == nil {
		return ResolvedRate{Rate: rate.Rate, EffectiveDate: rate.EffectiveDate, Source: RateSourceExact}, nil
	}
	if err != domain.ErrExchangeRateNotFound {
		return ResolvedRate{}, err
	}

	rate, err = latest(ctx)
	if err == nil {
		log.Warn().Time("day", day).Time("effective_date", rate.EffectiveDate).
			Msg("sin tipo de cambio a la fecha; se usa el último registrado")
		return ResolvedRate{Rate: rate.Rate, EffectiveDate: rate.EffectiveDate, Source: RateSourceLatest}, nil
	}
	if err != domain.ErrExchangeRateNotFound {
		return ResolvedRate{}, err
	}

	if fallback == nil {
		return ResolvedRate{}, domain.ErrMissingExchangeRate
	}
	log.Warn().Time("day", day).Str("rate", fallback.String()).Msg("sin tipos de cambio registrados; se usa el valor de respaldo")
	return ResolvedRate{Rate: *fallback, Source: RateSourceFallback}, nil
}
