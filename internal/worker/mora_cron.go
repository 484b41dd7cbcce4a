package worker

// mora_cron.go
// Background goroutine that periodically sweeps pendiente → vencida for
// debts past their due date and enqueues a notice email per affected
// customer. The sweep is a single idempotent UPDATE, so overlapping ticks
// or multiple instances never double-flip a debt.

import (
	"context"
	"fmt"
	"time"

	"smartpos/internal/repository"
	"smartpos/internal/service"

	"github.com/rs/zerolog/log"
)

// MoraCronConfig holds all dependencies for the sweep goroutine.
type MoraCronConfig struct {
	Cobros     service.CobroService
	Clientes   repository.ClienteRepository
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// StartMoraCron launches the periodic overdue sweep. It respects the context
// for graceful shutdown and runs one sweep immediately at startup so overdue
// debts are not left unmarked for a full interval after a restart.
func StartMoraCron(ctx context.Context, cfg MoraCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("mora_cron: started")
		sweep(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("mora_cron: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, cfg)
			}
		}
	}()
}

func sweep(ctx context.Context, cfg MoraCronConfig) {
	afectadas, err := cfg.Cobros.MarcarVencidas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("mora_cron: sweep failed")
		return
	}
	if len(afectadas) == 0 {
		return
	}
	log.Info().Int("count", len(afectadas)).Msg("mora_cron: deudas marcadas vencidas")

	if cfg.Dispatcher == nil {
		return
	}
	for i := range afectadas {
		d := &afectadas[i]
		cliente, err := cfg.Clientes.FindByID(ctx, d.ClienteID)
		if err != nil || cliente.Email == nil || *cliente.Email == "" {
			continue
		}
		payload := EmailJobPayload{
			ToEmail: *cliente.Email,
			Subject: "Aviso de deuda vencida",
			Body: fmt.Sprintf(
				"Hola %s,\n\nSu deuda por $%s vencio el %s. Saldo pendiente: $%s.\nPor favor acerquese al local para regularizarla.\n",
				cliente.Nombre,
				d.MontoTotal.StringFixed(2),
				d.FechaVencimiento.Format("02/01/2006"),
				d.SaldoPendiente.StringFixed(2)),
		}
		if err := cfg.Dispatcher.EnqueueEmail(ctx, payload); err != nil {
			log.Error().Err(err).Str("cliente", cliente.Nombre).Msg("mora_cron: enqueue aviso failed")
		}
	}
}
