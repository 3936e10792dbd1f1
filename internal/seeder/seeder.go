// Package seeder bootstraps the first administrator account.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	audit "campus/pkg/platform/audit"
	"campus/pkg/platform/privacy"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
	"campus/pkg/secrets"
)

// UserStore defines methods for seeding users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuditPublisher records the seeding outcome.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Admin describes the bootstrap administrator. An empty Password is
// replaced by a generated one.
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Result reports what Seed did. GeneratedPassword is set only when the
// password was generated, so the caller can hand it to the operator once.
type Result struct {
	Created           bool
	UserID            id.UserID
	GeneratedPassword string
}

// Seeder creates the bootstrap admin when it does not exist yet.
type Seeder struct {
	users  UserStore
	audit  AuditPublisher
	logger *slog.Logger
}

// New creates a new seeder. auditPublisher may be nil.
func New(users UserStore, auditPublisher AuditPublisher, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{users: users, audit: auditPublisher, logger: logger}
}

// SeedAdmin is idempotent: an existing account with the same email is left
// untouched whatever its role.
func (s *Seeder) SeedAdmin(ctx context.Context, admin Admin) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return nil, errors.New("seed admin email is required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "seed admin already present",
			"email", privacy.MaskEmail(email),
			"role", existing.Role,
		)
		return &Result{UserID: existing.ID}, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, fmt.Errorf("look up seed admin: %w", err)
	}

	res := &Result{Created: true, UserID: id.NewUserID()}
	password := admin.Password
	if password == "" {
		if password, err = secrets.Generate(); err != nil {
			return nil, err
		}
		res.GeneratedPassword = password
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash seed admin password: %w", err)
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:                 res.UserID,
		Email:              email,
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		Status:             models.UserStatusActive,
		MustChangePassword: true,
		FirstName:          valueOr(admin.FirstName, "Administrador"),
		LastName:           valueOr(admin.LastName, "Campus"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Another instance seeded concurrently.
			return &Result{}, nil
		}
		return nil, fmt.Errorf("create seed admin: %w", err)
	}

	s.logger.InfoContext(ctx, "seed admin created",
		"user_id", user.ID.String(),
		"email", privacy.MaskEmail(email),
		"generated_password", res.GeneratedPassword != "",
	)
	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			UserID:   user.ID,
			Subject:  user.ID.String(),
			Action:   string(audit.EventAdminSeeded),
			Decision: "granted",
			Email:    privacy.MaskEmail(email),
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to audit seed admin", "error", err)
		}
	}
	return res, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
