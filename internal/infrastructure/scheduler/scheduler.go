// Package scheduler ejecuta los trabajos periódicos del libro (cron con segundos).
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job trabajo programable.
type Job interface {
	Run() error
	Name() string
}

// Scheduler administra los trabajos en segundo plano.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New crea el scheduler. loc fija la zona horaria en que se interpretan las expresiones;
// nil usa la local del proceso.
func New(log zerolog.Logger, loc *time.Location) *Scheduler {
	opts := []cron.Option{cron.WithSeconds()}
	if loc != nil {
		opts = append(opts, cron.WithLocation(loc))
	}
	return &Scheduler{
		cron: cron.New(opts...),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler iniciado")
}

// Stop detiene el scheduler y espera a que terminen los trabajos en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler detenido")
}

// AddJob registra un trabajo. Ejemplos de expresión:
//   - "0 30 3 * * *" todos los días a las 03:30
//   - "@every 1h"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("ejecutando trabajo")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("trabajo fallido")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("trabajo completado")
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("trabajo registrado")
	return nil
}

// RunNow ejecuta un trabajo fuera de agenda.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("ejecutando trabajo inmediatamente")
	return job.Run()
}

// Entries cantidad de trabajos registrados.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
