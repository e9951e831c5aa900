// internal/scheduler/sweeper.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpiredSweeper periodically refunds orders the seller never fulfilled. The
// sweep itself is idempotent (each refund is claimed per-row), so an overlap
// with a manual sweep or another instance is harmless.
type ExpiredSweeper struct {
	sweep    func(context.Context) (int, error)
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExpiredSweeper(sweep func(context.Context) (int, error), interval time.Duration) *ExpiredSweeper {
	return &ExpiredSweeper{
		sweep:    sweep,
		interval: interval,
	}
}

func (s *ExpiredSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	logrus.WithField("interval", s.interval).Info("Expired purchase sweeper started")
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *ExpiredSweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	logrus.Info("Expired purchase sweeper stopped")
}

func (s *ExpiredSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.sweep(ctx); err != nil {
				logrus.WithError(err).Error("Sweep of expired purchases failed")
			}
		}
	}
}
