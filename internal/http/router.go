// Package http assembles the API router: global middleware, CORS, the public
// surface, and the identity-gated application routes.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"pulse/internal/identity"
	"pulse/internal/messaging"
	"pulse/internal/platform/metrics"
	"pulse/internal/platform/middleware"
)

// RouterDeps carries everything the router needs. Handlers register their own
// routes; the router only decides ordering and which routes sit behind the
// identity gate.
type RouterDeps struct {
	Logger         *slog.Logger
	Identity       *identity.Handler
	Messaging      *messaging.Handler
	Users          middleware.UserResolver
	HTTPMetrics    *metrics.HTTP
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Latency(deps.HTTPMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	deps.Identity.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(deps.Users, deps.Logger))
		deps.Identity.Register(r)
		deps.Messaging.Register(r)
	})

	return r
}
