package cli

import (
	"fmt"

	"github.com/jhoicas/agencia-ledger/internal/infrastructure/postgres"
)

// MigrateCmd subcomandos de migración.
type MigrateCmd struct {
	Up      MigrateUpCmd      `cmd:"" help:"Aplicar migraciones pendientes."`
	Down    MigrateDownCmd    `cmd:"" help:"Revertir migraciones."`
	Version MigrateVersionCmd `cmd:"" help:"Mostrar la versión del esquema."`
}

type MigrateUpCmd struct{}

func (cmd *MigrateUpCmd) Run(globals *Globals) error {
	return withMigrator(globals, func(m *postgres.Migrator) error {
		if err := m.Up(); err != nil {
			return err
		}
		printSuccess(globals.stdout(), "esquema actualizado")
		return nil
	})
}

type MigrateDownCmd struct {
	Steps int  `help:"Cantidad de migraciones a revertir (0 = todas)." default:"1"`
	Yes   bool `help:"Confirmar la reversión." short:"y"`
}

func (cmd *MigrateDownCmd) Run(globals *Globals) error {
	if !cmd.Yes {
		printError(globals.stdout(), "revertir migraciones borra datos; repetir con --yes")
		return fmt.Errorf("reversión no confirmada")
	}
	return withMigrator(globals, func(m *postgres.Migrator) error {
		var err error
		if cmd.Steps > 0 {
			err = m.Steps(-cmd.Steps)
		} else {
			err = m.Down()
		}
		if err != nil {
			return err
		}
		printSuccess(globals.stdout(), "migraciones revertidas")
		return nil
	})
}

type MigrateVersionCmd struct{}

func (cmd *MigrateVersionCmd) Run(globals *Globals) error {
	return withMigrator(globals, func(m *postgres.Migrator) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		printField(globals.stdout(), "versión", v)
		printField(globals.stdout(), "dirty", dirty)
		return nil
	})
}

func withMigrator(globals *Globals, fn func(*postgres.Migrator) error) error {
	cfg, log, err := globals.setup()
	if err != nil {
		return err
	}
	ctx, cancel := globals.context()
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
