package models

import (
	"time"

	id "campus/pkg/domain"
)

// Role is the coarse authorization class of a user. There is no hierarchy:
// an ADMIN is not implicitly a STUDENT.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}

func (r Role) String() string {
	return string(r)
}

// UserStatus is the account lifecycle state. Only ACTIVE users may log in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusPending  UserStatus = "PENDING"
)

func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive || s == UserStatusPending
}

// User is the stored account record.
type User struct {
	ID                 id.UserID
	Email              string
	PasswordHash       string
	Role               Role
	Status             UserStatus
	MustChangePassword bool
	FirstName          string
	LastName           string
	DNI                string
	DateOfBirth        time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Subject is the identity snapshot a session token is minted from.
func (u *User) Subject() Subject {
	return Subject{
		UserID:             u.ID,
		Email:              u.Email,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
	}
}

// Subject carries the fields embedded in a session token.
type Subject struct {
	UserID             id.UserID
	Email              string
	Role               Role
	MustChangePassword bool
}

// SessionClaims is the verified content of a session token. Claims are
// immutable; a password change mints a whole new token.
type SessionClaims struct {
	Subject
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionToken is a freshly minted token together with what it asserts.
type SessionToken struct {
	Value  string
	Claims SessionClaims
}

// TTL is the lifetime the token was minted with.
func (t *SessionToken) TTL() time.Duration {
	return t.Claims.ExpiresAt.Sub(t.Claims.IssuedAt)
}
