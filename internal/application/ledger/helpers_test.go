package ledger_test

import (
	"sync"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var testLoc = time.FixedZone("ART", -3*3600)

type fixture struct {
	s           *memStore
	settings    ledger.Settings
	resolver    *ledger.ExchangeRateResolver
	validator   *ledger.BalanceValidator
	store       *ledger.MovementStore
	recon       *ledger.BalanceReconstructor
	checkpoints *ledger.CheckpointUseCase
	accounts    *ledger.AccountUseCase
}

func newFixture(now time.Time, fallback *decimal.Decimal) *fixture {
	return newFixtureWithClock(func() time.Time { return now }, fallback)
}

func newFixtureWithClock(now func() time.Time, fallback *decimal.Decimal) *fixture {
	s := newMemStore()
	log := zerolog.Nop()
	settings := ledger.Settings{Location: testLoc, MaxRangeDays: 400, Now: now}
	accRepo := &memAccountRepo{s: s}
	movRepo := &memMovementRepo{s: s}
	cpRepo := &memCheckpointRepo{s: s}
	resolver := ledger.NewExchangeRateResolver(&memRateRepo{s: s}, nil, fallback, log)
	validator := ledger.NewBalanceValidator(accRepo, movRepo, log)
	return &fixture{
		s:           s,
		settings:    settings,
		resolver:    resolver,
		validator:   validator,
		store:       ledger.NewMovementStore(&memTxRunner{s: s}, movRepo, validator, resolver, settings, log),
		recon:       ledger.NewBalanceReconstructor(accRepo, movRepo, cpRepo, settings, log),
		checkpoints: ledger.NewCheckpointUseCase(accRepo, movRepo, cpRepo, settings, log),
		accounts:    ledger.NewAccountUseCase(accRepo, settings),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal { v := decimal.RequireFromString(s); return &v }

func sp(s string) *string { return &s }

func day(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

// at devuelve un instante en la zona del negocio.
func at(y int, m time.Month, dd, hh int) time.Time { return time.Date(y, m, dd, hh, 0, 0, 0, testLoc) }

// manualClock reloj que el test avanza a mano; cuenta cuántas veces se consultó.
type manualClock struct {
	mu    sync.Mutex
	now   time.Time
	reads int
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *manualClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
