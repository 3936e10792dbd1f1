package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/audit"
	"campus/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestLogout() {
	ctx := context.Background()

	s.Run("clears the session of a signed-in user", func() {
		user := s.newUser(models.RoleStudent, models.UserStatusActive, false)
		s.mockSink.EXPECT().Clear(gomock.Any()).Return(nil)
		s.expectAudit(audit.EventLoggedOut)

		s.Require().NoError(s.service.Logout(ctx, s.claimsFor(user), s.mockSink))
	})

	s.Run("is idempotent without a session", func() {
		s.mockSink.EXPECT().Clear(gomock.Any()).Return(nil).Times(2)
		s.expectAudit(audit.EventLoggedOut)
		s.expectAudit(audit.EventLoggedOut)

		s.Require().NoError(s.service.Logout(ctx, nil, s.mockSink))
		s.Require().NoError(s.service.Logout(ctx, nil, s.mockSink))
	})

	s.Equal(3.0, testutil.ToFloat64(s.metrics.Logouts))
}

func (s *ServiceSuite) TestLogout_TransportUnavailable() {
	s.mockSink.EXPECT().Clear(gomock.Any()).Return(sentinel.ErrUnavailable)

	err := s.service.Logout(context.Background(), nil, s.mockSink)
	s.requireCode(err, dErrors.CodeInternal)
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Logouts))
}
