// Package httptransport assembles the HTTP surface: middleware chain, public
// routes, and the authenticated API.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "tradegate/internal/account/handler"
	documenthandler "tradegate/internal/document/handler"
	"tradegate/internal/platform/metrics"
	"tradegate/internal/platform/middleware"
	verificationhandler "tradegate/internal/verification/handler"
)

const requestTimeout = 30 * time.Second

// Handlers bundles the per-domain handlers the router mounts.
type Handlers struct {
	Accounts     *accounthandler.Handler
	Documents    *documenthandler.Handler
	Verification *verificationhandler.Handler
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(h Handlers, validator middleware.JWTValidator, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The confirmation link arrives from a mail client, so no JSON
	// content-type requirement on public GETs.
	h.Verification.RegisterPublic(r)

	r.Group(func(public chi.Router) {
		public.Use(middleware.ContentTypeJSON)
		h.Accounts.RegisterPublic(public)
	})

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.ContentTypeJSON)
		protected.Use(middleware.RequireAuth(validator, logger))
		h.Accounts.RegisterProtected(protected)
		h.Documents.RegisterProtected(protected)
		h.Verification.RegisterProtected(protected)
	})

	return r
}
