package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

// Verifier checks a raw token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.SessionClaims, error)
}

// ErrNoSession means the request carried no session token at all.
var ErrNoSession = errors.New("no session token")

// Authenticate verifies the request's candidate tokens in order and returns
// the claims of the first one that passes. With no candidates it returns
// ErrNoSession, otherwise the last verification error.
func Authenticate(ctx context.Context, t *Transport, verifier Verifier, r *http.Request) (*models.SessionClaims, error) {
	err := ErrNoSession
	for _, token := range t.Candidates(r) {
		var claims *models.SessionClaims
		claims, err = verifier.Verify(ctx, token)
		if err == nil {
			return claims, nil
		}
	}
	return nil, err
}

// RequireSession rejects API calls that carry no valid session with 401 and
// stores the verified claims in the context otherwise. Pages use the guard
// instead, which redirects.
func RequireSession(t *Transport, verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claims, err := Authenticate(ctx, t, verifier, r)
			if errors.Is(err, ErrNoSession) {
				logger.WarnContext(ctx, "unauthorized access - missing session",
					"event", "auth_failed",
					"reason", "no_token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, models.MsgUnauthorized))
				return
			}
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"event", "auth_failed",
					"reason", "invalid_session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, models.MsgSessionInvalid))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}
