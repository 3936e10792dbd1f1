package service

import (
	"context"
	"errors"

	"campus/internal/auth/metrics"
	"campus/internal/auth/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Register files a student sign-up request. The account starts PENDING and
// cannot log in until an administrator activates it.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, "auth.register")
	defer func() { endSpan(span, err) }()

	if req == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incrementRegistrations(metrics.OutcomeInvalidRequest)
		return err
	}

	exists, err := s.users.ExistsByEmailOrDNI(ctx, req.Email, req.DNI)
	if err != nil {
		s.incrementRegistrations(metrics.OutcomeError)
		return internal(err, "failed to check registration")
	}
	if exists {
		s.incrementRegistrations(metrics.OutcomeDuplicate)
		return errAlreadyRegistered
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		s.incrementRegistrations(metrics.OutcomeError)
		return internal(err, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Status:       models.UserStatusPending,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DNI:          req.DNI,
		DateOfBirth:  req.BirthDate(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same email or DNI.
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.incrementRegistrations(metrics.OutcomeDuplicate)
			return errAlreadyRegistered
		}
		s.incrementRegistrations(metrics.OutcomeError)
		return internal(err, "failed to create user")
	}
	s.incrementRegistrations(metrics.OutcomeSuccess)
	s.logAudit(ctx, audit.EventUserRegistered, auditEntry{userID: user.ID, email: user.Email})
	return nil
}
