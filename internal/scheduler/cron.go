package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/medtrack-api/internal/application/alerts"
	"github.com/jhoicas/medtrack-api/pkg/config"
	"github.com/jhoicas/medtrack-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler dispara el job de alertas una vez al día a la hora configurada.
// No guarda más estado que el próximo disparo (lo administra cron). Si una
// corrida sigue activa cuando llega el siguiente tick, el tick se omite y se
// registra como warning, nunca se encola (cron.SkipIfStillRunning).
type Scheduler struct {
	cron       *cron.Cron
	reconciler *alerts.Reconciler
	log        *logger.Logger
	loc        *time.Location
}

// New construye el scheduler con la expresión cron y zona horaria configuradas.
func New(cfg config.AlertsConfig, reconciler *alerts.Reconciler, log *logger.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("zona horaria %q: %w", cfg.Timezone, err)
	}
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	s := &Scheduler{cron: c, reconciler: reconciler, log: log, loc: loc}
	if _, err := c.AddFunc(cfg.CronSpec, s.runOnce); err != nil {
		return nil, fmt.Errorf("expresión cron %q: %w", cfg.CronSpec, err)
	}
	return s, nil
}

// Start arranca el timer interno. No es un endpoint: el trigger es solo interno.
func (s *Scheduler) Start() {
	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		s.log.Info().
			Time("next_run", entries[0].Next).
			Msg("scheduler de alertas iniciado")
	}
}

// Stop detiene el timer y devuelve un contexto que se cierra cuando la corrida
// en vuelo (si la hay) termina.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// runOnce es el cuerpo de un tick: "hoy" se calcula aquí, en el límite del
// trigger y en la zona configurada, nunca dentro del algoritmo.
func (s *Scheduler) runOnce() {
	asOf := time.Now().In(s.loc)
	report, err := s.reconciler.Run(context.Background(), asOf)
	if err != nil {
		ev := s.log.Error().Err(err)
		if report != nil {
			ev = ev.Int("users_processed", report.UsersProcessed).
				Int("emails_sent", report.EmailsSent)
		}
		ev.Msg("corrida de alertas abortada")
		return
	}
	s.log.Info().
		Time("as_of", report.AsOf).
		Int("users_processed", report.UsersProcessed).
		Int("emails_sent", report.EmailsSent).
		Int("send_failures", report.SendFailures).
		Int("items_marked", report.ItemsMarked).
		Int("mark_failures", report.MarkFailures).
		Msg("corrida de alertas completada")
}

// cronLogger adapta el logger de cron a zerolog. Info se registra como warn:
// el único Info que emite la cadena configurada es el aviso de tick omitido
// por corrida todavía activa.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
