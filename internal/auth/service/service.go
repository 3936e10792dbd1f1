package service

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/auth/metrics"
	"campus/pkg/secrets"
)

// Service runs the login, change-password, logout and registration flows.
// It is stateless; every collaborator is safe for concurrent use.
type Service struct {
	users          UserStore
	tokens         TokenIssuer
	credentials    Credentials
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCredentials replaces the bcrypt verifier.
func WithCredentials(c Credentials) Option {
	return func(s *Service) {
		s.credentials = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(users UserStore, tokens TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		users:  users,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.credentials == nil {
		svc.credentials = secrets.Bcrypt{}
	}
	if svc.tracer == nil {
		svc.tracer = otel.Tracer("campus/auth")
	}
	return svc
}
