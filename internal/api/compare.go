package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/events"
	"github.com/MikeSquared-Agency/Forecast/internal/metrics"
	"github.com/MikeSquared-Agency/Forecast/internal/scoring"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type CompareHandler struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
}

func NewCompareHandler(s store.Store, ev events.Client, cfg *config.Config) *CompareHandler {
	return &CompareHandler{store: s, events: ev, cfg: cfg}
}

type compareRequest struct {
	Metric      string    `json:"metric,omitempty"`
	Prediction1 []float64 `json:"prediction1"`
	Mass1       *float64  `json:"mass1,omitempty"`
	Prediction2 []float64 `json:"prediction2"`
	Mass2       *float64  `json:"mass2,omitempty"`
	Truth       []float64 `json:"truth"`
	TruthMass   *float64  `json:"truth_mass,omitempty"`
}

// Compare handles POST /api/v1/compare: rank two ad-hoc candidates against a
// truth, persist the outcome, and publish it.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !binCountOK(w, h.cfg, len(req.Prediction1), len(req.Prediction2), len(req.Truth)) {
		return
	}

	metric, ok := h.resolveMetric(w, req.Metric)
	if !ok {
		return
	}

	cmp, err := h.runComparison(metric, req)
	if err != nil {
		writeScoringError(w, err)
		return
	}

	rec := recordFromComparison(cmp, nil, nil, nil, r.Header.Get("X-Client-ID"))
	if err := h.store.CreateComparison(r.Context(), rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.publishScored(rec)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     rec.ID,
		"result": cmp,
	})
}

type compareStoredRequest struct {
	Metric      string `json:"metric,omitempty"`
	Forecast1ID string `json:"forecast1_id"`
	Forecast2ID string `json:"forecast2_id"`
	TruthID     string `json:"truth_id"`
}

// CompareStored handles POST /api/v1/forecasts/compare: rank two stored
// forecasts against a stored truth.
func (h *CompareHandler) CompareStored(w http.ResponseWriter, r *http.Request) {
	var req compareStoredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	metric, ok := h.resolveMetric(w, req.Metric)
	if !ok {
		return
	}

	f1, ok := h.loadForecast(w, r, req.Forecast1ID, "forecast1_id")
	if !ok {
		return
	}
	f2, ok := h.loadForecast(w, r, req.Forecast2ID, "forecast2_id")
	if !ok {
		return
	}
	truth, ok := h.loadForecast(w, r, req.TruthID, "truth_id")
	if !ok {
		return
	}

	cmp, err := h.runComparison(metric, compareRequest{
		Prediction1: f1.Bins,
		Mass1:       f1.MassPct,
		Prediction2: f2.Bins,
		Mass2:       f2.MassPct,
		Truth:       truth.Bins,
		TruthMass:   truth.MassPct,
	})
	if err != nil {
		writeScoringError(w, err)
		return
	}

	rec := recordFromComparison(cmp, &f1.ID, &f2.ID, &truth.ID, r.Header.Get("X-Client-ID"))
	if err := h.store.CreateComparison(r.Context(), rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.publishScored(rec)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     rec.ID,
		"result": cmp,
	})
}

// Explain handles GET /api/v1/comparisons/{id}: the stored breakdown of one
// comparison.
func (h *CompareHandler) Explain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid comparison id"})
		return
	}

	rec, err := h.store.GetComparison(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "comparison not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List handles GET /api/v1/comparisons.
func (h *CompareHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ComparisonFilter{
		Metric:      r.URL.Query().Get("metric"),
		Winning:     r.URL.Query().Get("winning"),
		RequestedBy: r.URL.Query().Get("requested_by"),
	}

	comparisons, err := h.store.ListComparisons(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if comparisons == nil {
		comparisons = []*store.ComparisonRecord{}
	}
	writeJSON(w, http.StatusOK, comparisons)
}

func (h *CompareHandler) resolveMetric(w http.ResponseWriter, requested string) (scoring.Metric, bool) {
	if requested == "" {
		requested = h.cfg.Scoring.DefaultMetric
	}
	switch scoring.Metric(requested) {
	case scoring.MetricDivergence, scoring.MetricLogScore:
		return scoring.Metric(requested), true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown metric: " + requested})
		return "", false
	}
}

func (h *CompareHandler) runComparison(metric scoring.Metric, req compareRequest) (*scoring.Comparison, error) {
	start := time.Now()
	defer func() { metrics.ScoringDuration.Observe(time.Since(start).Seconds()) }()

	if metric == scoring.MetricDivergence {
		return scoring.Compare(req.Prediction1, req.Prediction2, req.Truth)
	}
	return scoring.CompareLogScores(
		req.Prediction1, massOrFull(req.Mass1),
		req.Prediction2, massOrFull(req.Mass2),
		req.Truth, massOrFull(req.TruthMass),
	)
}

func (h *CompareHandler) loadForecast(w http.ResponseWriter, r *http.Request, raw, field string) (*store.Forecast, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + field})
		return nil, false
	}
	f, err := h.store.GetForecast(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": field + " not found"})
		return nil, false
	}
	return f, true
}

func (h *CompareHandler) publishScored(rec *store.ComparisonRecord) {
	metrics.ComparisonsTotal.WithLabelValues(rec.Metric, rec.Winning).Inc()
	if math.IsInf(rec.Score1, 1) {
		metrics.InfiniteScoresTotal.Inc()
	}
	if math.IsInf(rec.Score2, 1) {
		metrics.InfiniteScoresTotal.Inc()
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectComparisonScored(rec.ID.String()), events.ComparisonScoredEvent{
			ComparisonID: rec.ID.String(),
			Metric:       rec.Metric,
			Winning:      rec.Winning,
			Gap:          rec.Gap,
			Factor:       rec.Factor,
			RequestedBy:  rec.RequestedBy,
		})
	}
}

// massOrFull defaults a missing explicit mass to 100%: a vector-only forecast
// claims the whole modeled window.
func massOrFull(m *float64) float64 {
	if m == nil {
		return 100
	}
	return *m
}

func recordFromComparison(cmp *scoring.Comparison, f1, f2, truth *uuid.UUID, requestedBy string) *store.ComparisonRecord {
	return &store.ComparisonRecord{
		Metric:      string(cmp.Metric),
		Forecast1ID: f1,
		Forecast2ID: f2,
		TruthID:     truth,
		Winning:     cmp.Winning,
		Score1:      cmp.Score1,
		Score2:      cmp.Score2,
		Gap:         cmp.Gap,
		Factor:      cmp.Factor,
		RequestedBy: requestedBy,
	}
}
