package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	authmetrics "campus/internal/auth/metrics"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
	"campus/pkg/secrets"
)

func (s *ServiceSuite) TestLogin() {
	ctx := context.Background()

	s.Run("active user gets a token carrying the stored role", func() {
		user := s.newUser(models.RoleAdmin, models.UserStatusActive, true)
		token := s.tokenFor(user.Subject())

		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "lucia@campus.test").Return(user, nil)
		s.mockCredentials.EXPECT().Verify("Secreta1", "stored-hash").Return(true, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), user.Subject()).Return(token, nil)
		s.mockSink.EXPECT().Deliver(gomock.Any(), token).Return(nil)
		s.expectAudit(audit.EventLoginSucceeded)

		result, err := s.service.Login(ctx, &models.LoginRequest{Email: "  Lucia@Campus.TEST ", Password: "Secreta1"}, s.mockSink)
		s.Require().NoError(err)
		s.Equal(token, result.Token)
		s.Equal(models.RoleAdmin, result.Token.Claims.Role)
		s.Equal(models.UserView{
			ID:                 user.ID.String(),
			Email:              "lucia@campus.test",
			Role:               models.RoleAdmin,
			FirstName:          "Lucía",
			MustChangePassword: true,
		}, result.User)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues(authmetrics.OutcomeSuccess)))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.TokensIssued.WithLabelValues(authmetrics.ReasonLogin)))
	})

	s.Run("malformed email fails validation before lookup", func() {
		_, err := s.service.Login(ctx, &models.LoginRequest{Email: "no-es-un-email", Password: "Secreta1"}, s.mockSink)
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal("email", dErrors.FieldOf(err))
		s.Equal(models.MsgEmailInvalid, err.Error())
	})

	s.Run("missing password fails validation", func() {
		_, err := s.service.Login(ctx, &models.LoginRequest{Email: "lucia@campus.test"}, s.mockSink)
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal(models.MsgPasswordRequired, err.Error())
	})
}

func (s *ServiceSuite) TestLogin_MissingUserAndWrongPasswordAreIndistinguishable() {
	ctx := context.Background()
	req := func() *models.LoginRequest {
		return &models.LoginRequest{Email: "lucia@campus.test", Password: "Secreta1"}
	}

	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "lucia@campus.test").
		Return(nil, sentinel.ErrNotFound)
	// The missing account still goes through a full hash comparison.
	s.mockCredentials.EXPECT().Verify("Secreta1", secrets.DummyHash()).Return(false, nil)
	s.expectAudit(audit.EventAuthFailed)
	_, missingErr := s.service.Login(ctx, req(), s.mockSink)

	user := s.newUser(models.RoleStudent, models.UserStatusActive, false)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "lucia@campus.test").Return(user, nil)
	s.mockCredentials.EXPECT().Verify("Secreta1", "stored-hash").Return(false, nil)
	s.expectAudit(audit.EventAuthFailed)
	_, wrongErr := s.service.Login(ctx, req(), s.mockSink)

	s.requireCode(missingErr, dErrors.CodeInvalidCredentials)
	s.requireCode(wrongErr, dErrors.CodeInvalidCredentials)
	s.Equal(missingErr.Error(), wrongErr.Error())
	s.Equal(models.MsgInvalidCredentials, wrongErr.Error())
	s.Equal(2.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues(authmetrics.OutcomeInvalidCredentials)))
}

func (s *ServiceSuite) TestLogin_InactiveAccount() {
	ctx := context.Background()
	tests := []struct {
		name    string
		role    models.Role
		status  models.UserStatus
		message string
	}{
		{"inactive admin", models.RoleAdmin, models.UserStatusInactive, models.MsgAdminInactive},
		{"pending admin", models.RoleAdmin, models.UserStatusPending, models.MsgAdminInactive},
		{"inactive student", models.RoleStudent, models.UserStatusInactive, models.MsgAccountInactive},
		{"pending student", models.RoleStudent, models.UserStatusPending, models.MsgAccountInactive},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			user := s.newUser(tt.role, tt.status, false)
			s.mockUsers.EXPECT().FindByEmail(gomock.Any(), user.Email).Return(user, nil)
			s.mockCredentials.EXPECT().Verify("Secreta1", "stored-hash").Return(true, nil)
			s.expectAudit(audit.EventAuthFailed)

			_, err := s.service.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "Secreta1"}, s.mockSink)
			s.requireCode(err, dErrors.CodeAccountInactive)
			s.Equal(tt.message, err.Error())
		})
	}
}

func (s *ServiceSuite) TestLogin_DependencyFailures() {
	ctx := context.Background()
	req := func() *models.LoginRequest {
		return &models.LoginRequest{Email: "lucia@campus.test", Password: "Secreta1"}
	}

	s.Run("store failure is internal", func() {
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		s.expectAudit(audit.EventAuthFailed)

		_, err := s.service.Login(ctx, req(), s.mockSink)
		s.requireCode(err, dErrors.CodeInternal)
	})

	s.Run("corrupt hash is internal", func() {
		user := s.newUser(models.RoleStudent, models.UserStatusActive, false)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
		s.mockCredentials.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, errors.New("corrupt password hash"))
		s.expectAudit(audit.EventAuthFailed)

		_, err := s.service.Login(ctx, req(), s.mockSink)
		s.requireCode(err, dErrors.CodeInternal)
	})

	s.Run("issuer failure is internal", func() {
		user := s.newUser(models.RoleStudent, models.UserStatusActive, false)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
		s.mockCredentials.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(nil, errors.New("sign failed"))

		_, err := s.service.Login(ctx, req(), s.mockSink)
		s.requireCode(err, dErrors.CodeInternal)
	})

	s.Run("unbound transport is internal", func() {
		user := s.newUser(models.RoleStudent, models.UserStatusActive, false)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
		s.mockCredentials.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(s.tokenFor(user.Subject()), nil)
		s.mockSink.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

		_, err := s.service.Login(ctx, req(), s.mockSink)
		s.requireCode(err, dErrors.CodeInternal)
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}
