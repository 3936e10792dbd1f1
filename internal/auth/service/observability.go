package service

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/auth/device"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/privacy"
	"campus/pkg/requestcontext"
)

// auditEntry carries what a flow knows about the subject of an event.
type auditEntry struct {
	userID id.UserID
	email  string
	reason string
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, entry auditEntry) {
	requestID := requestcontext.RequestID(ctx)
	masked := privacy.MaskEmail(entry.email)
	deviceLabel := device.Label(requestcontext.UserAgent(ctx))

	s.logger.InfoContext(ctx, string(event),
		"event", event,
		"log_type", "audit",
		"user_id", subjectOf(entry.userID),
		"email", masked,
		"device", deviceLabel,
		"request_id", requestID,
	)
	s.emit(ctx, audit.Event{
		UserID:    entry.userID,
		Subject:   subjectOf(entry.userID),
		Action:    string(event),
		Decision:  "granted",
		Reason:    entry.reason,
		Email:     masked,
		RequestID: requestID,
		ClientIP:  privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
		Device:    deviceLabel,
	})
}

// authFailure logs and audits a refused attempt. isError marks failures
// caused by us rather than by the caller.
func (s *Service) authFailure(ctx context.Context, reason string, isError bool, entry auditEntry) {
	requestID := requestcontext.RequestID(ctx)
	masked := privacy.MaskEmail(entry.email)
	args := []any{
		"event", audit.EventAuthFailed,
		"reason", reason,
		"log_type", "standard",
		"user_id", subjectOf(entry.userID),
		"email", masked,
		"request_id", requestID,
	}
	if isError {
		s.logger.ErrorContext(ctx, string(audit.EventAuthFailed), args...)
	} else {
		s.logger.WarnContext(ctx, string(audit.EventAuthFailed), args...)
	}
	s.emit(ctx, audit.Event{
		UserID:    entry.userID,
		Subject:   subjectOf(entry.userID),
		Action:    string(audit.EventAuthFailed),
		Decision:  "denied",
		Reason:    reason,
		Email:     masked,
		RequestID: requestID,
		ClientIP:  privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
		Device:    device.Label(requestcontext.UserAgent(ctx)),
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}

func subjectOf(userID id.UserID) string {
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}

// endSpan records err on span; expected client errors are not span errors.
func endSpan(span trace.Span, err error) {
	if err != nil && dErrors.HasCode(err, dErrors.CodeInternal) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) incrementLoginAttempt(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLoginAttempt(outcome)
	}
}

func (s *Service) observeLoginDuration(durationMs float64) {
	if s.metrics != nil {
		s.metrics.ObserveLoginDuration(durationMs)
	}
}

func (s *Service) incrementTokensIssued(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued(reason)
	}
}

func (s *Service) incrementPasswordChanges() {
	if s.metrics != nil {
		s.metrics.IncrementPasswordChanges()
	}
}

func (s *Service) incrementLogouts() {
	if s.metrics != nil {
		s.metrics.IncrementLogouts()
	}
}

func (s *Service) incrementRegistrations(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRegistrations(outcome)
	}
}
