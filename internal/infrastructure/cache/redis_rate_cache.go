// Package cache implementa la caché compartida de tipos de cambio sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultKeyPrefix = "ledger:fx:on_or_before:"

var _ ledger.RateCache = (*RedisRateCache)(nil)

// RedisRateCache guarda el resultado de "cotización vigente al día X" con TTL corto, para
// que varias instancias compartan las búsquedas. Una cotización nueva se ve al expirar.
type RedisRateCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisRateCache construye la caché sobre un cliente existente (el llamador lo cierra).
func NewRedisRateCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRateCache{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
		log:    log.With().Str("component", "rate_cache").Logger(),
	}
}

// NewClient abre un cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis %s: %w", addr, err)
	}
	return client, nil
}

type cachedRate struct {
	EffectiveDate string          `json:"effective_date"`
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
}

func (c *RedisRateCache) key(day time.Time) string {
	return c.prefix + day.Format(time.DateOnly)
}

// GetOnOrBefore devuelve nil, nil si no hay entrada (redis.Nil).
func (c *RedisRateCache) GetOnOrBefore(ctx context.Context, day time.Time) (*entity.ExchangeRate, error) {
	data, err := c.client.Get(ctx, c.key(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer tipo de cambio de caché: %w", err)
	}
	return decodeRate(data)
}

func (c *RedisRateCache) SetOnOrBefore(ctx context.Context, day time.Time, rate *entity.ExchangeRate) error {
	data, err := encodeRate(rate)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(day), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("guardar tipo de cambio en caché: %w", err)
	}
	return nil
}

// Invalidate borra las entradas cacheadas; se llama al registrar una cotización nueva.
func (c *RedisRateCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("listar claves de caché: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidar caché: %w", err)
	}
	c.log.Debug().Int("keys", len(keys)).Msg("caché de tipos de cambio invalidada")
	return nil
}

func encodeRate(rate *entity.ExchangeRate) ([]byte, error) {
	return json.Marshal(cachedRate{
		EffectiveDate: rate.EffectiveDate.Format(time.DateOnly),
		Rate:          rate.Rate,
		Source:        rate.Source,
	})
}

func decodeRate(data []byte) (*entity.ExchangeRate, error) {
	var cr cachedRate
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("decodificar tipo de cambio cacheado: %w", err)
	}
	day, err := time.Parse(time.DateOnly, cr.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("fecha cacheada inválida: %w", err)
	}
	if !cr.Rate.IsPositive() {
		return nil, fmt.Errorf("tipo de cambio cacheado no positivo: %s", cr.Rate)
	}
	return &entity.ExchangeRate{EffectiveDate: day, Rate: cr.Rate, Source: cr.Source}, nil
}
