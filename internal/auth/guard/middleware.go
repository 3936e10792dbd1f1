package guard

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/auth/metrics"
	"campus/internal/auth/session"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/privacy"
	"campus/pkg/requestcontext"
)

// Extractor pulls the raw session token off a request.
type Extractor interface {
	Extract(r *http.Request) (string, bool)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Guard is the HTTP face of Evaluate.
type Guard struct {
	cfg       Config
	verifier  Verifier
	extractor Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditPublisher
	tracer    trace.Tracer
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(g *Guard) {
		g.auditor = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Guard) {
		g.tracer = t
	}
}

func New(cfg Config, verifier Verifier, extractor Extractor, opts ...Option) *Guard {
	g := &Guard{cfg: cfg, verifier: verifier, extractor: extractor}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer("campus/guard")
	}
	return g
}

// Decide evaluates r without writing anything.
func (g *Guard) Decide(r *http.Request) Decision {
	ctx, span := g.tracer.Start(r.Context(), "guard.decide",
		trace.WithAttributes(attribute.String("http.path", r.URL.Path)))
	defer span.End()

	token, _ := g.extractor.Extract(r)
	d := Evaluate(ctx, g.cfg, g.verifier, r.URL.Path, token)

	span.SetAttributes(
		attribute.Bool("guard.allowed", d.Allowed),
		attribute.String("guard.reason", string(d.Reason)),
	)
	if g.metrics != nil {
		g.metrics.IncrementGuardDecision(d.Allowed, string(d.Reason))
	}
	return d
}

// Middleware serves allowed requests with the verified claims in context and
// answers every denial with a 307 to the decision's target.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cleaned := CleanPath(r.URL.Path); cleaned != r.URL.Path {
			// Pages and upstreams only ever see the path the guard judged.
			target := cleaned
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			g.logger.DebugContext(ctx, "guard redirect",
				"reason", "non_canonical_path",
				"path", r.URL.Path,
				"redirect_to", cleaned,
				"request_id", requestcontext.RequestID(ctx),
			)
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}

		d := g.Decide(r)
		if d.Allowed {
			next.ServeHTTP(w, r.WithContext(session.WithClaims(ctx, d.Claims)))
			return
		}
		g.recordDenial(ctx, r.URL.Path, d)
		http.Redirect(w, r, d.RedirectTo, http.StatusTemporaryRedirect)
	})
}

// recordDenial logs every denial; only denials of a presented token reach the
// audit trail, anonymous visits are too common to be interesting.
func (g *Guard) recordDenial(ctx context.Context, path string, d Decision) {
	requestID := requestcontext.RequestID(ctx)
	if d.Reason == ReasonNoToken {
		g.logger.DebugContext(ctx, "guard redirect",
			"reason", d.Reason,
			"path", path,
			"request_id", requestID,
		)
		return
	}

	attrs := []any{
		"event", audit.EventGuardDenied,
		"reason", d.Reason,
		"path", path,
		"redirect_to", d.RedirectTo,
		"request_id", requestID,
	}
	if d.Claims != nil {
		attrs = append(attrs, "user_id", d.Claims.UserID.String(), "role", d.Claims.Role)
	}
	g.logger.InfoContext(ctx, "guard redirect", attrs...)

	if g.auditor == nil || d.Reason == ReasonMustChangePassword {
		return
	}
	ev := audit.Event{
		Action:   string(audit.EventGuardDenied),
		Decision: "denied",
		Reason:   string(d.Reason) + " " + path,
		ClientIP: privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
	}
	if d.Claims != nil {
		ev.UserID = d.Claims.UserID
		ev.Subject = d.Claims.UserID.String()
		ev.Email = privacy.MaskEmail(d.Claims.Email)
	}
	if err := g.auditor.Emit(ctx, ev); err != nil {
		g.logger.ErrorContext(ctx, "failed to emit guard audit event",
			"error", err,
			"request_id", requestID,
		)
	}
}
