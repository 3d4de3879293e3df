package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/agencia-ledger/internal/bootstrap"
	"github.com/jhoicas/agencia-ledger/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/agencia-ledger/internal/interfaces/http"
	"github.com/jhoicas/agencia-ledger/pkg/config"
	"github.com/jhoicas/agencia-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("timezone", cfg.Ledger.Location.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	svc, err := bootstrap.New(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	// Jobs nocturnos
	sched := scheduler.New(log.Zerolog(), cfg.Ledger.Location)
	if cfg.Ledger.CheckpointCron != "" {
		job := scheduler.NewCheckpointJob(svc.Checkpoints, 0, log.Zerolog())
		if err := sched.AddJob(cfg.Ledger.CheckpointCron, job); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Ledger.CheckpointCron).Msg("programar checkpoints")
		}
	}
	if cfg.Ledger.BackfillCron != "" {
		job := scheduler.NewBackfillJob(svc.Backfill, 0, log.Zerolog())
		if err := sched.AddJob(cfg.Ledger.BackfillCron, job); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Ledger.BackfillCron).Msg("programar backfill")
		}
	}
	sched.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Agencia Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado; /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := svc.Pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Accounts:    svc.Accounts,
		Balances:    svc.Validator,
		Movements:   svc.Movements,
		Series:      svc.Series,
		Checkpoints: svc.Checkpoints,
		Rates:       svc.Rates,
		Tax:         svc.Deriver,
		Backfill:    svc.Backfill,
		Location:    cfg.Ledger.Location,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	sched.Stop()

	log.Info().Msg("aplicación detenida")
}
