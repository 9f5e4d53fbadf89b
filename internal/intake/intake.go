// Package intake runs comparisons requested over the event bus. Other
// services publish to comparison.requested; the outcome lands in the store
// and comes back out as a scored event, same as the HTTP path.
package intake

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/events"
	"github.com/MikeSquared-Agency/Forecast/internal/metrics"
	"github.com/MikeSquared-Agency/Forecast/internal/scoring"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type Listener struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func New(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *Listener {
	return &Listener{store: s, events: ev, cfg: cfg, logger: logger}
}

// Start subscribes to comparison.requested. Requires an events client.
func (l *Listener) Start(ctx context.Context) error {
	return l.events.Subscribe(events.SubjectComparisonRequested, func(_ string, data []byte) {
		l.handle(ctx, data)
	})
}

func (l *Listener) handle(ctx context.Context, data []byte) {
	var req events.ComparisonRequestedEvent
	if err := json.Unmarshal(data, &req); err != nil {
		l.logger.Warn("bad comparison request payload", "error", err)
		return
	}

	metric := scoring.Metric(req.Metric)
	if req.Metric == "" {
		metric = scoring.Metric(l.cfg.Scoring.DefaultMetric)
	}

	var (
		cmp *scoring.Comparison
		err error
	)
	switch metric {
	case scoring.MetricDivergence:
		cmp, err = scoring.Compare(req.Prediction1, req.Prediction2, req.Truth)
	case scoring.MetricLogScore:
		cmp, err = scoring.CompareLogScores(
			req.Prediction1, massOrFull(req.Mass1),
			req.Prediction2, massOrFull(req.Mass2),
			req.Truth, massOrFull(req.TruthMass),
		)
	default:
		l.logger.Warn("unknown metric in comparison request", "metric", req.Metric)
		return
	}
	if err != nil {
		l.logger.Warn("requested comparison failed", "error", err)
		return
	}

	rec := &store.ComparisonRecord{
		Metric:      string(cmp.Metric),
		Winning:     cmp.Winning,
		Score1:      cmp.Score1,
		Score2:      cmp.Score2,
		Gap:         cmp.Gap,
		Factor:      cmp.Factor,
		RequestedBy: req.RequestedBy,
	}
	if err := l.store.CreateComparison(ctx, rec); err != nil {
		l.logger.Error("failed to store requested comparison", "error", err)
		return
	}

	metrics.ComparisonsTotal.WithLabelValues(rec.Metric, rec.Winning).Inc()
	if math.IsInf(rec.Score1, 1) {
		metrics.InfiniteScoresTotal.Inc()
	}
	if math.IsInf(rec.Score2, 1) {
		metrics.InfiniteScoresTotal.Inc()
	}

	_ = l.events.Publish(events.SubjectComparisonScored(rec.ID.String()), events.ComparisonScoredEvent{
		ComparisonID: rec.ID.String(),
		Metric:       rec.Metric,
		Winning:      rec.Winning,
		Gap:          rec.Gap,
		Factor:       rec.Factor,
		RequestedBy:  rec.RequestedBy,
	})
}

func massOrFull(m *float64) float64 {
	if m == nil {
		return 100
	}
	return *m
}
