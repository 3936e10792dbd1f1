package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmodels "campus/internal/auth/models"
	id "campus/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
var TestIDs = struct {
	UserID1 id.UserID
	UserID2 id.UserID
}{
	UserID1: id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2: id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *authmodels.User
}

// NewUserBuilder creates an active student with a fixed creation time.
func NewUserBuilder() *UserBuilder {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &UserBuilder{
		user: &authmodels.User{
			ID:        id.UserID(uuid.New()),
			Email:     "alumno@campus.test",
			Role:      authmodels.RoleStudent,
			Status:    authmodels.UserStatusActive,
			FirstName: "Lucía",
			LastName:  "García",
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(firstName, lastName string) *UserBuilder {
	b.user.FirstName = firstName
	b.user.LastName = lastName
	return b
}

func (b *UserBuilder) WithRole(role authmodels.Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) WithStatus(status authmodels.UserStatus) *UserBuilder {
	b.user.Status = status
	return b
}

func (b *UserBuilder) WithDNI(dni string) *UserBuilder {
	b.user.DNI = dni
	return b
}

func (b *UserBuilder) MustChangePassword(must bool) *UserBuilder {
	b.user.MustChangePassword = must
	return b
}

// WithPassword stores a low-cost bcrypt hash of plain. Panics on failure; tests only.
func (b *UserBuilder) WithPassword(plain string) *UserBuilder {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("WithPassword: %v", err))
	}
	b.user.PasswordHash = string(hash)
	return b
}

func (b *UserBuilder) Build() *authmodels.User {
	return b.user
}

// NewTestAdmin creates an active admin that must change the given password.
func NewTestAdmin(email, password string) *authmodels.User {
	return NewUserBuilder().
		WithEmail(email).
		WithRole(authmodels.RoleAdmin).
		WithName("Admin", "Campus").
		WithPassword(password).
		MustChangePassword(true).
		Build()
}

// NewTestStudent creates an active student with the given credentials.
func NewTestStudent(email, password string) *authmodels.User {
	return NewUserBuilder().
		WithEmail(email).
		WithPassword(password).
		Build()
}
