package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bingoduel/bingo-backend/internal/registry"
	"github.com/bingoduel/bingo-backend/internal/ws"
)

func SetupRoutes(reg *registry.Registry, log *zap.Logger, origins []string) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/roomcode", NewRoomCode(reg))
	r.Get("/healthz", Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/ws", ws.Handler(reg, log, origins))
	return r
}
