package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/audit"
)

// UserStore defines the persistence interface for user data.
// Error Contract: Find methods and UpdatePassword return sentinel.ErrNotFound when the
// user doesn't exist; Create returns sentinel.ErrAlreadyUsed on email or DNI collision.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrDNI(ctx context.Context, email, dni string) (bool, error)
	UpdatePassword(ctx context.Context, userID id.UserID, hash string, at time.Time) error
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, subject models.Subject) (*models.SessionToken, error)
}

// Credentials hashes and verifies passwords. Verify returns (false, nil) on mismatch.
type Credentials interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) (bool, error)
}

// SessionSink externalizes a session for the current response.
type SessionSink interface {
	Deliver(ctx context.Context, token *models.SessionToken) error
	Clear(ctx context.Context) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
