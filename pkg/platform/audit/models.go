package audit

import (
	"context"
	"time"

	id "campus/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	// Email is stored masked; audit rows outlive the account.
	Email     string
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	EventLoginSucceeded  AuditEvent = "login_succeeded"
	EventAuthFailed      AuditEvent = "auth_failed"
	EventPasswordChanged AuditEvent = "password_changed"
	EventLoggedOut       AuditEvent = "logged_out"
	EventUserRegistered  AuditEvent = "user_registered"
	EventAdminSeeded     AuditEvent = "admin_seeded"
	EventGuardDenied     AuditEvent = "guard_denied"
)

// EventCategory groups events by who needs to read them.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance"
	CategorySecurity   EventCategory = "security"
	CategoryOperations EventCategory = "operations"
)

// Category maps an event to its category. Unknown events are operations
// so that a typo never lands in the compliance trail.
func (e AuditEvent) Category() EventCategory {
	switch e {
	case EventUserRegistered, EventPasswordChanged, EventAdminSeeded:
		return CategoryCompliance
	case EventAuthFailed, EventGuardDenied:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
