package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"campus/internal/auth/metrics"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
	"campus/pkg/secrets"
)

// Login verifies the credential pair, mints a session token for an active
// user and hands it to sink.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, sink SessionSink) (result *models.LoginResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer func() {
		s.observeLoginDuration(float64(time.Since(start).Milliseconds()))
		endSpan(span, err)
	}()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incrementLoginAttempt(metrics.OutcomeInvalidRequest)
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Unknown accounts pay the same bcrypt cost as a wrong password.
			_, _ = s.credentials.Verify(req.Password, secrets.DummyHash())
			s.incrementLoginAttempt(metrics.OutcomeInvalidCredentials)
			s.authFailure(ctx, "user_not_found", false, auditEntry{email: req.Email})
			return nil, errInvalidCredentials
		}
		s.incrementLoginAttempt(metrics.OutcomeError)
		s.authFailure(ctx, "internal_error", true, auditEntry{email: req.Email})
		return nil, internal(err, "failed to load user")
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	ok, err := s.credentials.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.incrementLoginAttempt(metrics.OutcomeError)
		s.authFailure(ctx, "corrupt_hash", true, auditEntry{userID: user.ID, email: user.Email})
		return nil, internal(err, "failed to verify credentials")
	}
	if !ok {
		s.incrementLoginAttempt(metrics.OutcomeInvalidCredentials)
		s.authFailure(ctx, "wrong_password", false, auditEntry{userID: user.ID, email: user.Email})
		return nil, errInvalidCredentials
	}

	if !user.IsActive() {
		s.incrementLoginAttempt(metrics.OutcomeInactive)
		s.authFailure(ctx, "account_inactive", false, auditEntry{userID: user.ID, email: user.Email})
		return nil, inactiveError(user.Role)
	}

	token, err := s.tokens.Issue(ctx, user.Subject())
	if err != nil {
		s.incrementLoginAttempt(metrics.OutcomeError)
		return nil, internal(err, "failed to issue session token")
	}
	if err := sink.Deliver(ctx, token); err != nil {
		s.incrementLoginAttempt(metrics.OutcomeError)
		s.logger.ErrorContext(ctx, "failed to deliver session", "error", err, "user_id", user.ID.String())
		return nil, transportError(err)
	}
	s.incrementTokensIssued(metrics.ReasonLogin)
	s.incrementLoginAttempt(metrics.OutcomeSuccess)
	s.logAudit(ctx, audit.EventLoginSucceeded, auditEntry{userID: user.ID, email: user.Email})

	return &models.LoginResult{
		User:  models.NewUserView(user),
		Token: token,
	}, nil
}
