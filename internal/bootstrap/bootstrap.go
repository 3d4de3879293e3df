// Package bootstrap arma los casos de uso sobre PostgreSQL (y Redis si está configurado).
// Lo comparten la API y ledgerctl.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	domaintax "github.com/jhoicas/agencia-ledger/internal/domain/tax"
	"github.com/jhoicas/agencia-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/agencia-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/agencia-ledger/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Services casos de uso listos para usar.
type Services struct {
	Pool        *pgxpool.Pool
	Accounts    *ledger.AccountUseCase
	Rates       *ledger.ExchangeRateResolver
	Validator   *ledger.BalanceValidator
	Movements   *ledger.MovementStore
	Series      *ledger.BalanceReconstructor
	Checkpoints *ledger.CheckpointUseCase
	Deriver     *tax.Deriver
	Backfill    *tax.BackfillUseCase

	redis *redis.Client
}

// Close libera Redis y el pool.
func (s *Services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.Pool.Close()
}

// New abre el pool, aplica migraciones si se pidió y construye los casos de uso.
// Si Redis no responde se sigue sin caché compartida.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dsn", postgres.RedactDSN(cfg.DB.ConnectionString())).Msg("conectado a PostgreSQL")

	if cfg.Ledger.MigrationsOnStart {
		if err := migrateUp(pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	s := &Services{Pool: pool}

	var rateCache ledger.RateCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible; se continúa sin caché de tipos de cambio")
		} else {
			s.redis = client
			rateCache = cache.NewRedisRateCache(client, cfg.Redis.RateTTL, log)
		}
	}

	settings := ledger.Settings{
		Location:     cfg.Ledger.Location,
		MaxRangeDays: cfg.Ledger.MaxRangeDays,
	}
	accountRepo := postgres.NewFinancialAccountRepository(pool)
	movementRepo := postgres.NewLedgerMovementRepository(pool)
	checkpointRepo := postgres.NewBalanceCheckpointRepository(pool)

	s.Rates = ledger.NewExchangeRateResolver(postgres.NewExchangeRateRepository(pool), rateCache, cfg.Ledger.FallbackRate, log)
	s.Accounts = ledger.NewAccountUseCase(accountRepo, settings)
	s.Validator = ledger.NewBalanceValidator(accountRepo, movementRepo, log)
	s.Movements = ledger.NewMovementStore(postgres.NewTxRunner(pool), movementRepo, s.Validator, s.Rates, settings, log)
	s.Series = ledger.NewBalanceReconstructor(accountRepo, movementRepo, checkpointRepo, settings, log)
	s.Checkpoints = ledger.NewCheckpointUseCase(accountRepo, movementRepo, checkpointRepo, settings, log)

	policy := domaintax.NewDuePolicy(domaintax.DefaultDueRules, cfg.Ledger.DueDateGraceDays)
	s.Deriver = tax.NewDeriver(
		postgres.NewIVARecordRepository(pool),
		postgres.NewOperatorPaymentRepository(pool),
		s.Rates,
		tax.Options{IVARate: cfg.Ledger.IVARate, DuePolicy: &policy},
		log,
	)
	s.Backfill = tax.NewBackfillUseCase(
		postgres.NewOperationRepository(pool),
		s.Deriver,
		s.Rates,
		cfg.Ledger.Location,
		cfg.Ledger.BackfillBatchSize,
		log,
	)
	return s, nil
}

func migrateUp(pool *pgxpool.Pool, log zerolog.Logger) error {
	m, err := postgres.NewMigrator(pool, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
