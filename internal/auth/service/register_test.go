package service

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	authmetrics "campus/internal/auth/metrics"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
)

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		DNI:             "12345678z",
		FirstName:       " Ana ",
		LastName:        "Pérez Ruiz",
		Email:           "Ana@Campus.test",
		DateOfBirth:     "2008-03-14",
		Password:        "Alumna2026",
		ConfirmPassword: "Alumna2026",
	}
}

func (s *ServiceSuite) TestRegister_CreatesPendingStudent() {
	s.mockUsers.EXPECT().ExistsByEmailOrDNI(gomock.Any(), "ana@campus.test", "12345678Z").Return(false, nil)
	s.mockCredentials.EXPECT().Hash("Alumna2026").Return("hashed", nil)
	s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Cond(func(u *models.User) bool {
		return u.Role == models.RoleStudent &&
			u.Status == models.UserStatusPending &&
			!u.MustChangePassword &&
			u.PasswordHash == "hashed" &&
			u.FirstName == "Ana" &&
			u.DNI == "12345678Z" &&
			u.DateOfBirth.Equal(time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)) &&
			!u.ID.IsNil()
	})).Return(nil)
	s.expectAudit(audit.EventUserRegistered)

	s.Require().NoError(s.service.Register(context.Background(), registerRequest()))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(authmetrics.OutcomeSuccess)))
}

func (s *ServiceSuite) TestRegister_Duplicate() {
	s.Run("detected before hashing", func() {
		s.mockUsers.EXPECT().ExistsByEmailOrDNI(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		err := s.service.Register(context.Background(), registerRequest())
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal(models.MsgAlreadyRegistered, err.Error())
	})

	s.Run("lost race on insert", func() {
		s.mockUsers.EXPECT().ExistsByEmailOrDNI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.mockCredentials.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		err := s.service.Register(context.Background(), registerRequest())
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal(models.MsgAlreadyRegistered, err.Error())
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(authmetrics.OutcomeDuplicate)))
}

func (s *ServiceSuite) TestRegister_Validation() {
	tests := []struct {
		name    string
		mutate  func(r *models.RegisterRequest)
		field   string
		message string
	}{
		{"bad dni letter", func(r *models.RegisterRequest) { r.DNI = "12345678U" }, "dni", models.MsgDNIInvalid},
		{"blank first name", func(r *models.RegisterRequest) { r.FirstName = "   " }, "firstName", models.MsgFirstNameRequired},
		{"impossible date", func(r *models.RegisterRequest) { r.DateOfBirth = "2008-02-30" }, "dateOfBirth", models.MsgDateOfBirthInvalid},
		{"weak password", func(r *models.RegisterRequest) { r.Password, r.ConfirmPassword = "alumna", "alumna" }, "password", models.MsgPasswordTooShort},
		{"mismatched confirmation", func(r *models.RegisterRequest) { r.ConfirmPassword = "Alumna2027" }, "confirmPassword", models.MsgPasswordMismatch},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := registerRequest()
			tt.mutate(req)
			err := s.service.Register(context.Background(), req)
			s.requireCode(err, dErrors.CodeValidation)
			s.Equal(tt.field, dErrors.FieldOf(err))
			s.Equal(tt.message, err.Error())
		})
	}
}

func (s *ServiceSuite) TestRegister_StoreFailure() {
	s.mockUsers.EXPECT().ExistsByEmailOrDNI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("timeout"))

	err := s.service.Register(context.Background(), registerRequest())
	s.requireCode(err, dErrors.CodeInternal)
}
