package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/metrics"
	red "heritage-access-platform/internal/infra/redis"
)

const sweepLockKey = "lock:entitlement_sweep"

// ExpiryWorker periodically marks overdue entitlements expired. Resolution
// never depends on the status column, so the sweep is bookkeeping: it keeps
// audit queries and the active-by-source gauge honest.
type ExpiryWorker struct {
	interval time.Duration
	ents     repository.EntitlementRepository
	locker   red.Locker
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, ents repository.EntitlementRepository, locker red.Locker, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	sweepLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		ents:     ents,
		locker:   locker,
		log:      &sweepLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, sweepLockKey, w.interval)
		if err != nil {
			// Another instance holds the sweep.
			return
		}
		defer w.locker.Unlock(ctx, sweepLockKey, token)
	}

	n, err := w.ents.MarkExpired(ctx, repository.NoTX, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep error")
		return
	}
	if n > 0 {
		metrics.IncEntitlementsExpired(n)
		w.log.Info().Int("count", n).Msg("entitlements marked expired")
	}

	counts, err := w.ents.CountActiveBySource(ctx, repository.NoTX)
	if err != nil {
		w.log.Warn().Err(err).Msg("active entitlement gauge refresh failed")
		return
	}
	metrics.SetEntitlementsActive(counts)
}
