package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/requestcontext"
)

// DefaultTTL is how long a session token stays valid.
const DefaultTTL = time.Hour

// ErrInvalidSession is the single failure callers see from Verify. Expiry,
// bad signature and malformed input are deliberately indistinguishable.
var ErrInvalidSession = dErrors.New(dErrors.CodeUnauthorized, "invalid session")

// SessionTokenClaims is the wire shape of a session token.
type SessionTokenClaims struct {
	UserID             string `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"mustChangePassword"`
	jwt.RegisteredClaims
}

// JWTService mints and verifies HS256 session tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey string, issuer string, tokenTTL time.Duration) *JWTService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTTL
	}
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// TTL reports the configured token lifetime; the cookie Max-Age follows it.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// Issue signs a token for subject, valid from the request time for the
// configured TTL.
func (s *JWTService) Issue(ctx context.Context, subject models.Subject) (*models.SessionToken, error) {
	if subject.UserID.IsNil() || !subject.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cannot issue token for incomplete subject")
	}
	now := requestcontext.Now(ctx)
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(s.tokenTTL))
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionTokenClaims{
		UserID:             subject.UserID.String(),
		Email:              subject.Email,
		Role:               subject.Role.String(),
		MustChangePassword: subject.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
			ID:        jti,
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}

	return &models.SessionToken{
		Value: signed,
		Claims: models.SessionClaims{
			Subject:   subject,
			TokenID:   jti,
			IssuedAt:  issuedAt.Time,
			ExpiresAt: expiresAt.Time,
		},
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry against the
// request time. A token is valid only while now < exp.
func (s *JWTService) Verify(ctx context.Context, tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}
	now := requestcontext.Now(ctx)

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, dErrors.Wrap(errors.Join(ErrInvalidSession, err), dErrors.CodeUnauthorized, "invalid session")
	}

	claims, ok := parsed.Claims.(*SessionTokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return toSessionClaims(claims)
}
