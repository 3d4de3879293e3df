// Package cli implementa los comandos administrativos de ledgerctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/bootstrap"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/pkg/config"
	"github.com/jhoicas/agencia-ledger/pkg/logger"
	"github.com/rs/zerolog"
)

// Globals flags comunes a todos los comandos.
type Globals struct {
	LogLevel string        `help:"Nivel de log (trace, debug, info, warn, error)." default:"warn" env:"LEDGERCTL_LOG_LEVEL"`
	Timeout  time.Duration `help:"Tiempo máximo de ejecución del comando." default:"30m"`

	out io.Writer      `kong:"-"`
	cfg *config.Config `kong:"-"`
}

// Commands comandos de ledgerctl.
type Commands struct {
	Globals

	Migrate    MigrateCmd    `cmd:"" help:"Aplicar o revertir migraciones del esquema."`
	Backfill   BackfillCmd   `cmd:"" help:"Derivar IVA y pagos a operadores de operaciones históricas."`
	Checkpoint CheckpointCmd `cmd:"" help:"Guardar los saldos de cierre de un día."`
	Rates      RatesCmd      `cmd:"" help:"Administrar tipos de cambio (ARS por USD)."`
	Token      TokenCmd      `cmd:"" help:"Emitir un token JWT para la API."`
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

// SetOutput redirige la salida de los comandos.
func (g *Globals) SetOutput(w io.Writer) { g.out = w }

// today día calendario actual en la zona del negocio.
func (g *Globals) today() time.Time {
	loc := time.UTC
	if g.cfg != nil && g.cfg.Ledger.Location != nil {
		loc = g.cfg.Ledger.Location
	}
	return domainledger.DayOf(time.Now(), loc)
}

func (g *Globals) context() (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), g.Timeout)
}

// setup carga configuración y logger.
func (g *Globals) setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: "development", Level: g.LogLevel, Output: os.Stderr})
	return cfg, log.Zerolog(), nil
}

// services construye los casos de uso. Las migraciones solo corren con `migrate`.
func (g *Globals) services(ctx context.Context) (*bootstrap.Services, error) {
	cfg, log, err := g.setup()
	if err != nil {
		return nil, err
	}
	cfg.Ledger.MigrationsOnStart = false
	g.cfg = cfg
	return bootstrap.New(ctx, cfg, log)
}
