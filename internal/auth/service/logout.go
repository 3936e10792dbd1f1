package service

import (
	"context"

	"campus/internal/auth/models"
	"campus/pkg/platform/audit"
)

// Logout clears the session transport. It works with or without a live
// session and may be repeated; only a transport failure is an error.
func (s *Service) Logout(ctx context.Context, claims *models.SessionClaims, sink SessionSink) (err error) {
	ctx, span := s.tracer.Start(ctx, "auth.logout")
	defer func() { endSpan(span, err) }()

	if err := sink.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear session", "error", err)
		return transportError(err)
	}
	s.incrementLogouts()

	var entry auditEntry
	if claims != nil {
		entry = auditEntry{userID: claims.UserID, email: claims.Email}
	}
	s.logAudit(ctx, audit.EventLoggedOut, entry)
	return nil
}
