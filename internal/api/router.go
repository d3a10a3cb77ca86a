package api

import (
	"log/slog"
	"net/http"

	"jpt/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires the service routes. redisClient may be nil, in which
// case publishing is not idempotent.
func NewRouter(h *Handlers, redisClient *redis.Client, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.RequestID)
	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)

	r.Get("/health", h.Health)
	r.Get("/data", h.Data)
	r.Get("/call", h.Call)

	if h.CanPublish() {
		r.Group(func(r chi.Router) {
			if redisClient != nil {
				r.Use(middleware.Idempotency(redisClient))
			}
			r.Post("/produce-message", h.ProduceMessage)
			// Route name used by earlier clients.
			r.Post("/produce-kafka-message", h.ProduceMessage)
		})
	}

	r.Handle("/metrics", promhttp.Handler())

	logger.Info("Registered routes",
		"publish", h.CanPublish(),
		"idempotent_publish", h.CanPublish() && redisClient != nil,
	)

	return r
}
