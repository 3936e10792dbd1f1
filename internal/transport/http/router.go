package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campus/pkg/platform/middleware/metadata"
	"campus/pkg/platform/middleware/request"
)

// Registrar mounts its routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps is what the router needs from main. Nil optional fields are skipped.
type Deps struct {
	Logger *slog.Logger

	// API serves /api/*.
	API Registrar
	// Health serves /health*.
	Health Registrar
	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Guard protects every prefix in GuardedPrefixes; Pages renders them
	// and the public pages.
	Guard           func(http.Handler) http.Handler
	GuardedPrefixes []string
	Pages           http.Handler
	PublicPages     []string

	Metadata       *metadata.Middleware
	RequestMetrics *request.Metrics
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	if d.Metadata != nil {
		r.Use(d.Metadata.Handler)
	}
	r.Use(request.Logger(d.Logger))
	r.Use(request.Latency(d.RequestMetrics))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(api chi.Router) {
		if d.RequestTimeout > 0 {
			api.Use(request.Timeout(d.RequestTimeout))
		}
		if d.MaxBodyBytes > 0 {
			api.Use(request.BodyLimit(d.MaxBodyBytes))
		}
		api.Use(request.ContentTypeJSON)
		d.API.Register(api)
	})

	if d.Pages != nil {
		for _, path := range d.PublicPages {
			r.Handle(path, d.Pages)
		}
		guarded := r.With()
		if d.Guard != nil {
			guarded = r.With(d.Guard)
		}
		for _, prefix := range d.GuardedPrefixes {
			guarded.Handle(prefix, d.Pages)
			guarded.Handle(prefix+"/*", d.Pages)
		}
	}

	return r
}
