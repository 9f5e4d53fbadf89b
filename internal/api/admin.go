package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/metrics"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

type AdminHandler struct {
	store store.Store
	cfg   *config.Config
}

func NewAdminHandler(s store.Store, cfg *config.Config) *AdminHandler {
	return &AdminHandler{store: s, cfg: cfg}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type PruneRequest struct {
	OlderThanHours int `json:"older_than_hours,omitempty"`
}

// Prune handles POST /api/v1/comparisons/prune: delete comparison records
// older than the given age, defaulting to the configured retention TTL.
func (h *AdminHandler) Prune(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	ttl := h.cfg.ComparisonTTL()
	if req.OlderThanHours > 0 {
		ttl = time.Duration(req.OlderThanHours) * time.Hour
	}

	pruned, err := h.store.PruneComparisons(r.Context(), time.Now().Add(-ttl))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if pruned > 0 {
		metrics.PrunedComparisonsTotal.Add(float64(pruned))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pruned": pruned})
}
