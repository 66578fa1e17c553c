// internal/server/router.go
//
// Route table.
//
//	GET  /health_check   liveness, always 200
//	POST /subscriptions  intake pipeline
//	GET  /metrics        Prometheus exposition
//
// Middleware order: request ID → request info → access log → panic
// recovery → security headers.  The access log wraps Recoverer so a panic
// is logged with its 500.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/newsletter/internal/health"
	"github.com/yanizio/newsletter/internal/middleware"
	"github.com/yanizio/newsletter/internal/requestinfo"
)

// Routes bundles what the router mounts.
type Routes struct {
	Subscriptions http.Handler
	Log           *zap.Logger
	HSTS          bool
}

// NewRouter builds the chi router for the service.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.RequestLog(rt.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security(rt.HSTS))

	r.Get("/health_check", health.Check)
	r.Method(http.MethodPost, "/subscriptions", rt.Subscriptions)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
