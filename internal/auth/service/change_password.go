package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"campus/internal/auth/metrics"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// ChangePassword rotates the password of the session's user. Request
// validation fails fast before the store is touched; the current password is
// checked last. On success a replacement token with the forced-change flag
// cleared is delivered through sink.
func (s *Service) ChangePassword(ctx context.Context, claims *models.SessionClaims, req *models.ChangePasswordRequest, sink SessionSink) (result *models.ChangePasswordResult, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.change_password")
	defer func() { endSpan(span, err) }()

	if claims == nil || claims.UserID.IsNil() {
		return nil, errNoSession
	}
	span.SetAttributes(attribute.String("user.id", claims.UserID.String()))
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "user_not_found", false, auditEntry{userID: claims.UserID, email: claims.Email})
			return nil, errSessionInvalid
		}
		return nil, internal(err, "failed to load user")
	}
	// A token outlives a deactivation; the account state wins.
	if !user.IsActive() {
		s.authFailure(ctx, "account_inactive", false, auditEntry{userID: user.ID, email: user.Email})
		return nil, errSessionInvalid
	}

	ok, err := s.credentials.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, internal(err, "failed to verify credentials")
	}
	if !ok {
		s.authFailure(ctx, "wrong_current_password", false, auditEntry{userID: user.ID, email: user.Email})
		return nil, errCurrentPassword
	}

	hash, err := s.credentials.Hash(req.NewPassword)
	if err != nil {
		return nil, internal(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errSessionInvalid
		}
		return nil, internal(err, "failed to update password")
	}
	s.incrementPasswordChanges()
	s.logAudit(ctx, audit.EventPasswordChanged, auditEntry{userID: user.ID, email: user.Email})

	subject := user.Subject()
	subject.MustChangePassword = false
	token, err := s.tokens.Issue(ctx, subject)
	if err != nil {
		return nil, internal(err, "failed to issue session token")
	}
	if err := sink.Deliver(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to deliver session", "error", err, "user_id", user.ID.String())
		return nil, transportError(err)
	}
	s.incrementTokensIssued(metrics.ReasonPasswordChange)

	return &models.ChangePasswordResult{Token: token}, nil
}
