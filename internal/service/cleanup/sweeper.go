// Package cleanup sweeps expired reset tokens out of the store on a fixed
// interval, the server-side replacement for waiting until a user trips over
// an expired code.
package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type TokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Sweeper struct {
	tokens   TokenStore
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSweeper(tokens TokenStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled. Blocks; call from a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("Expired token sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Expired reset tokens deleted", zap.Int64("count", n))
	}
}
