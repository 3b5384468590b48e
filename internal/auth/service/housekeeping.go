package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/store"
)

// DefaultHousekeepingInterval is how often expired credentials are swept.
const DefaultHousekeepingInterval = time.Hour

// Housekeeping periodically deletes expired refresh tokens, reset tokens and
// two-factor challenges. Expired rows are already unusable (every read checks
// expires_at); the sweep just keeps the tables from growing without bound.
type Housekeeping struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewHousekeeping(st store.Store, logger *slog.Logger, interval time.Duration) *Housekeeping {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &Housekeeping{
		store:    st,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs immediately.
func (h *Housekeeping) Start() {
	go h.run()
}

// Stop signals the loop and waits for it to exit.
func (h *Housekeeping) Stop() {
	close(h.stopCh)
	<-h.doneCh
}

func (h *Housekeeping) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.sweep()
	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stopCh:
			return
		}
	}
}

func (h *Housekeeping) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := h.store.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
		h.logger.Error("failed to sweep expired refresh tokens", "err", err)
	}
	if err := h.store.PasswordResetTokens().DeleteExpiredPasswordResetTokens(ctx); err != nil {
		h.logger.Error("failed to sweep expired reset tokens", "err", err)
	}
	if err := h.store.TwoFactorChallenges().DeleteExpiredTwoFactorChallenges(ctx); err != nil {
		h.logger.Error("failed to sweep expired two-factor challenges", "err", err)
	}
}
