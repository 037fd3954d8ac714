package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"premium-unlock/internal/domain/ports/repository"
	"premium-unlock/internal/infra/metrics"
)

// ExpiryWorker periodically refreshes the expiry gauges. It is strictly
// read-only: codes past their window and tokens past their expiry stay in
// place, expiry is inferred at read time, never written back.
type ExpiryWorker struct {
	every  time.Duration
	codes  repository.UnlockCodeRepository
	tokens repository.PremiumTokenRepository
	log    *zerolog.Logger
	now    func() time.Time
}

func NewExpiryWorker(every time.Duration, codes repository.UnlockCodeRepository, tokens repository.PremiumTokenRepository, logger *zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{every: every, codes: codes, tokens: tokens, log: logger, now: time.Now}
}

// Run blocks until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.every)
	defer t.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	now := w.now().UTC()
	expired, err := w.codes.CountExpiredUnused(ctx, nil, now)
	if err != nil {
		w.log.Warn().Err(err).Msg("expiry worker: count expired codes failed")
		return
	}
	active, err := w.tokens.CountActive(ctx, nil, now)
	if err != nil {
		w.log.Warn().Err(err).Msg("expiry worker: count active tokens failed")
		return
	}
	metrics.SetCodesExpiredUnused(expired)
	metrics.SetTokensActive(active)
	w.log.Debug().Int("codes_expired_unused", expired).Int("tokens_active", active).Msg("expiry gauges refreshed")
}
