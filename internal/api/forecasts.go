package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/events"
	"github.com/MikeSquared-Agency/Forecast/internal/scoring"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type ForecastsHandler struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
}

func NewForecastsHandler(s store.Store, ev events.Client, cfg *config.Config) *ForecastsHandler {
	return &ForecastsHandler{store: s, events: ev, cfg: cfg}
}

type CreateForecastRequest struct {
	Name     string                 `json:"name"`
	Bins     []float64              `json:"bins"`
	MassPct  *float64               `json:"mass_pct,omitempty"`
	IsTruth  bool                   `json:"is_truth,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (h *ForecastsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if !binCountOK(w, h.cfg, len(req.Bins)) {
		return
	}
	if err := scoring.ValidateDistribution(req.Bins); err != nil {
		writeScoringError(w, err)
		return
	}
	if req.MassPct != nil {
		if err := scoring.ValidateMassPercent(*req.MassPct); err != nil {
			writeScoringError(w, err)
			return
		}
	}

	f := &store.Forecast{
		Name:     req.Name,
		Author:   r.Header.Get("X-Client-ID"),
		Bins:     req.Bins,
		MassPct:  req.MassPct,
		IsTruth:  req.IsTruth,
		Metadata: req.Metadata,
	}
	if err := h.store.CreateForecast(r.Context(), f); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectForecastCreated(f.ID.String()), events.ForecastCreatedEvent{
			ForecastID: f.ID.String(),
			Name:       f.Name,
			Author:     f.Author,
			Bins:       len(f.Bins),
			IsTruth:    f.IsTruth,
		})
	}

	writeJSON(w, http.StatusCreated, f)
}

func (h *ForecastsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ForecastFilter{
		Author: r.URL.Query().Get("author"),
	}
	if v := r.URL.Query().Get("is_truth"); v != "" {
		isTruth := v == "true"
		filter.IsTruth = &isTruth
	}

	forecasts, err := h.store.ListForecasts(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if forecasts == nil {
		forecasts = []*store.Forecast{}
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (h *ForecastsHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, ok := h.forecastFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *ForecastsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	f, ok := h.forecastFromPath(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteForecast(r.Context(), f.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = h.events.Publish(events.SubjectForecastDeleted(f.ID.String()), events.ForecastDeletedEvent{
			ForecastID: f.ID.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type ResolveForecastRequest struct {
	TruthID string `json:"truth_id"`
	Metric  string `json:"metric,omitempty"`
}

// Resolve handles POST /api/v1/forecasts/{id}/resolve: score a stored
// forecast against a stored truth and record the result on the forecast.
func (h *ForecastsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	f, ok := h.forecastFromPath(w, r)
	if !ok {
		return
	}

	var req ResolveForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	metric := req.Metric
	if metric == "" {
		metric = h.cfg.Scoring.DefaultMetric
	}

	truthID, err := uuid.Parse(req.TruthID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid truth_id"})
		return
	}
	truth, err := h.store.GetForecast(r.Context(), truthID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if truth == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "truth forecast not found"})
		return
	}

	var score float64
	switch scoring.Metric(metric) {
	case scoring.MetricDivergence:
		score, err = scoring.Divergence(f.Bins, truth.Bins)
	case scoring.MetricLogScore:
		score, err = scoring.LogScore(f.Bins, massOrFull(f.MassPct), truth.Bins, massOrFull(truth.MassPct))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown metric: " + metric})
		return
	}
	if err != nil {
		writeScoringError(w, err)
		return
	}

	now := time.Now()
	f.TruthID = &truth.ID
	f.Score = &score
	f.ScoredAt = &now
	if err := h.store.UpdateForecast(r.Context(), f); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectForecastResolved(f.ID.String()), events.ForecastResolvedEvent{
			ForecastID: f.ID.String(),
			TruthID:    truth.ID.String(),
			Metric:     metric,
			Score:      formatScore(score),
		})
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *ForecastsHandler) forecastFromPath(w http.ResponseWriter, r *http.Request) (*store.Forecast, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid forecast id"})
		return nil, false
	}

	f, err := h.store.GetForecast(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "forecast not found"})
		return nil, false
	}
	return f, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
