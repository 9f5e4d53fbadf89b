package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Forecast/internal/config"
	"github.com/MikeSquared-Agency/Forecast/internal/events"
	"github.com/MikeSquared-Agency/Forecast/internal/store"
)

func NewRouter(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimit))

	score := NewScoreHandler(cfg)
	compare := NewCompareHandler(s, ev, cfg)
	forecasts := NewForecastsHandler(s, ev, cfg)
	admin := NewAdminHandler(s, cfg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Post("/score/divergence", score.Divergence)
		r.Post("/score/logscore", score.LogScore)
		r.Post("/score/relative", score.Relative)

		r.Post("/compare", compare.Compare)
		r.Get("/comparisons", compare.List)
		r.Get("/comparisons/{id}", compare.Explain)

		r.Post("/forecasts", forecasts.Create)
		r.Get("/forecasts", forecasts.List)
		r.Post("/forecasts/compare", compare.CompareStored)
		r.Get("/forecasts/{id}", forecasts.Get)
		r.Delete("/forecasts/{id}", forecasts.Delete)
		r.Post("/forecasts/{id}/resolve", forecasts.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Post("/comparisons/prune", admin.Prune)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
