package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/metrics"
	"github.com/MikeSquared-Agency/Forecast/internal/scoring"
)

// ScoreHandler serves the stateless scoring endpoints: nothing is persisted,
// the caller gets the scalar back.
type ScoreHandler struct {
	cfg *config.Config
}

func NewScoreHandler(cfg *config.Config) *ScoreHandler {
	return &ScoreHandler{cfg: cfg}
}

type scoreRequest struct {
	Prediction     []float64 `json:"prediction"`
	PredictionMass *float64  `json:"prediction_mass,omitempty"`
	Truth          []float64 `json:"truth"`
	TruthMass      *float64  `json:"truth_mass,omitempty"`
}

// Divergence handles POST /api/v1/score/divergence.
func (h *ScoreHandler) Divergence(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScoreRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	score, err := scoring.Divergence(req.Prediction, req.Truth)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeScore(w, scoring.MetricDivergence, score)
}

// LogScore handles POST /api/v1/score/logscore. Both masses are required:
// this endpoint exists for sub-probability forecasts.
func (h *ScoreHandler) LogScore(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScoreRequest(w, r)
	if !ok {
		return
	}
	if req.PredictionMass == nil || req.TruthMass == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prediction_mass and truth_mass required"})
		return
	}

	start := time.Now()
	score, err := scoring.LogScore(req.Prediction, *req.PredictionMass, req.Truth, *req.TruthMass)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeScore(w, scoring.MetricLogScore, score)
}

// Relative handles POST /api/v1/score/relative: the log-score variant that
// derives each side's mass from its vector sum.
func (h *ScoreHandler) Relative(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScoreRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	score, err := scoring.RelativeLogScore(req.Prediction, req.Truth)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeScore(w, scoring.MetricLogScore, score)
}

func (h *ScoreHandler) decodeScoreRequest(w http.ResponseWriter, r *http.Request) (*scoreRequest, bool) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	if !binCountOK(w, h.cfg, len(req.Prediction), len(req.Truth)) {
		return nil, false
	}
	return &req, true
}

func writeScore(w http.ResponseWriter, metric scoring.Metric, score float64) {
	if math.IsInf(score, 1) {
		metrics.InfiniteScoresTotal.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metric": metric,
		"score":  scoring.ScoreJSON(score),
	})
}

// writeScoringError maps engine validation failures to 400s and counts them
// by kind.
func writeScoringError(w http.ResponseWriter, err error) {
	metrics.ScoringErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scoring.ErrShapeMismatch):
		return "shape"
	case strings.Contains(err.Error(), "outside [0, 100]"), strings.Contains(err.Error(), "mass:"):
		return "mass"
	default:
		return "values"
	}
}

func formatScore(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func binCountOK(w http.ResponseWriter, cfg *config.Config, lengths ...int) bool {
	for _, n := range lengths {
		if n > cfg.Scoring.MaxBins {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many bins"})
			return false
		}
	}
	return true
}
