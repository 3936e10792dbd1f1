// Package session moves session tokens between the service and the HTTP
// client. A freshly issued token becomes one Issued event that every
// configured sink consumes; the cookie sink sets auth_token, the body sink
// hands the raw token to the handler for the JSON response.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus/internal/auth/models"
	"campus/pkg/platform/sentinel"
)

// Mode selects which sinks receive an issued token.
type Mode string

const (
	ModeCookie Mode = "cookie"
	ModeBody   Mode = "body"
	ModeBoth   Mode = "both"
)

// ParseMode accepts the SESSION_TRANSPORT values.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeCookie, ModeBody, ModeBoth:
		return m, nil
	case "":
		return ModeCookie, nil
	default:
		return "", fmt.Errorf("unknown session transport %q", raw)
	}
}

const DefaultCookieName = "auth_token"

// Config controls how tokens are delivered and cleared.
type Config struct {
	Mode       Mode
	CookieName string
	// Secure marks the cookie Secure; on in production.
	Secure bool
}

// Issued is the event produced once per successful login or password change.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	MaxAge    time.Duration
}

func issuedFrom(token *models.SessionToken) Issued {
	return Issued{
		Token:     token.Value,
		ExpiresAt: token.Claims.ExpiresAt,
		MaxAge:    token.TTL(),
	}
}

// Sink consumes issued tokens and clears them on logout.
type Sink interface {
	Deliver(w http.ResponseWriter, ev Issued) error
	Clear(w http.ResponseWriter) error
}

// Transport builds per-request bindings for the configured sinks.
type Transport struct {
	cfg    Config
	cookie *CookieSink
	body   bool
}

func NewTransport(cfg Config) *Transport {
	if cfg.Mode == "" {
		cfg.Mode = ModeCookie
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	t := &Transport{cfg: cfg}
	if cfg.Mode == ModeCookie || cfg.Mode == ModeBoth {
		t.cookie = &CookieSink{Name: cfg.CookieName, Secure: cfg.Secure}
	}
	t.body = cfg.Mode == ModeBody || cfg.Mode == ModeBoth
	return t
}

func (t *Transport) CookieName() string {
	return t.cfg.CookieName
}

// Bind ties the transport to one response. The returned binding is what the
// service sees as its session sink.
func (t *Transport) Bind(w http.ResponseWriter) *Binding {
	b := &Binding{w: w}
	if t.cookie != nil {
		b.sinks = append(b.sinks, t.cookie)
	}
	if t.body {
		b.body = &BodySink{}
		b.sinks = append(b.sinks, b.body)
	}
	return b
}

// Binding delivers tokens for a single request.
type Binding struct {
	w     http.ResponseWriter
	sinks []Sink
	body  *BodySink
}

// Deliver fans the issued token out to every sink.
func (b *Binding) Deliver(_ context.Context, token *models.SessionToken) error {
	if b == nil || b.w == nil {
		return fmt.Errorf("deliver session: %w", sentinel.ErrUnavailable)
	}
	ev := issuedFrom(token)
	for _, s := range b.sinks {
		if err := s.Deliver(b.w, ev); err != nil {
			return fmt.Errorf("deliver session: %w", err)
		}
	}
	return nil
}

// Clear expires the session on the client. Clearing an absent session is fine.
func (b *Binding) Clear(ctx context.Context) error {
	if b == nil || b.w == nil {
		return fmt.Errorf("clear session: %w", sentinel.ErrUnavailable)
	}
	for _, s := range b.sinks {
		if err := s.Clear(b.w); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// BodyToken is the token for the JSON response, empty unless the body sink is on.
func (b *Binding) BodyToken() string {
	if b == nil || b.body == nil {
		return ""
	}
	return b.body.token
}

// CookieSink stores the token in an HttpOnly cookie scoped to the whole site.
type CookieSink struct {
	Name   string
	Secure bool
}

func (c *CookieSink) Deliver(w http.ResponseWriter, ev Issued) error {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    ev.Token,
		Path:     "/",
		MaxAge:   int(ev.MaxAge / time.Second),
		Expires:  ev.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieSink) Clear(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// BodySink keeps the token so the handler can put it in the response body.
type BodySink struct {
	token string
}

func (s *BodySink) Deliver(_ http.ResponseWriter, ev Issued) error {
	s.token = ev.Token
	return nil
}

func (s *BodySink) Clear(http.ResponseWriter) error {
	s.token = ""
	return nil
}

// Extract returns the first session token on a request, see Candidates.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	candidates := t.Candidates(r)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// Candidates lists the session tokens a request carries in the order they
// are tried: the cookie, then an Authorization: Bearer header. A stale
// cookie must not hide a valid header, so callers that verify should walk
// the whole list.
func (t *Transport) Candidates(r *http.Request) []string {
	var out []string
	if c, err := r.Cookie(t.cfg.CookieName); err == nil && c.Value != "" {
		out = append(out, c.Value)
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" && (len(out) == 0 || out[0] != token) {
			out = append(out, token)
		}
	}
	return out
}

type claimsKey struct{}

// WithClaims stores verified claims for downstream handlers.
func WithClaims(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims RequireSession verified, or nil.
func ClaimsFromContext(ctx context.Context) *models.SessionClaims {
	c, _ := ctx.Value(claimsKey{}).(*models.SessionClaims)
	return c
}
