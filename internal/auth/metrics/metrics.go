package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeInvalidRequest     = "invalid_request"
	OutcomeError              = "error"
	OutcomeDuplicate          = "duplicate"
)

// Token issue reasons.
const (
	ReasonLogin          = "login"
	ReasonPasswordChange = "password_change"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	LoginDurationMs prometheus.Histogram
	PasswordChanges prometheus.Counter
	TokensIssued    *prometheus.CounterVec
	GuardDecisions  *prometheus.CounterVec
	Logouts         prometheus.Counter
	Registrations   *prometheus.CounterVec
}

// New registers auth collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		LoginDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_login_duration_ms",
			Help:    "Duration of login requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		}),
		PasswordChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "campus_password_changes_total",
			Help: "Successful password changes",
		}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_tokens_issued_total",
			Help: "Session tokens issued, by reason",
		}, []string{"reason"}),
		GuardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_guard_decisions_total",
			Help: "Route guard decisions by decision and deny reason",
		}, []string{"decision", "reason"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "campus_logouts_total",
			Help: "Logout requests served",
		}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_registrations_total",
			Help: "Registration requests by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementLoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLoginDuration(durationMs float64) {
	m.LoginDurationMs.Observe(durationMs)
}

func (m *Metrics) IncrementPasswordChanges() {
	m.PasswordChanges.Inc()
}

func (m *Metrics) IncrementTokensIssued(reason string) {
	m.TokensIssued.WithLabelValues(reason).Inc()
}

// IncrementGuardDecision records an allow (reason "") or a deny with its reason.
func (m *Metrics) IncrementGuardDecision(allowed bool, reason string) {
	decision := "deny"
	if allowed {
		decision = "allow"
		reason = "none"
	}
	m.GuardDecisions.WithLabelValues(decision, reason).Inc()
}

func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}

func (m *Metrics) IncrementRegistrations(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}
