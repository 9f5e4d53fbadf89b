// Package retention prunes aged comparison records on a fixed interval so
// the comparisons table does not grow without bound.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Forecast/internal/metrics"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type Sweeper struct {
	store    store.Store
	interval time.Duration
	ttl      time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, interval, ttl time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    s,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	pruned, err := s.store.PruneComparisons(ctx, cutoff)
	if err != nil {
		s.logger.Warn("retention sweep failed", "error", err)
		return
	}
	if pruned > 0 {
		metrics.PrunedComparisonsTotal.Add(float64(pruned))
		s.logger.Info("pruned comparisons", "count", pruned, "cutoff", cutoff)
	}
}
