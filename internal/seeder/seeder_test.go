package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"campus/internal/auth/models"
	userstore "campus/internal/auth/store/user"
	audit "campus/pkg/platform/audit"
	"campus/pkg/platform/audit/publisher"
	auditmemory "campus/pkg/platform/audit/store/memory"
	"campus/pkg/secrets"
	"campus/pkg/testutil"
)

type SeederSuite struct {
	suite.Suite
	users  *userstore.InMemoryUserStore
	events *auditmemory.InMemoryStore
	seeder *Seeder
}

func TestSeederSuite(t *testing.T) {
	suite.Run(t, new(SeederSuite))
}

func (s *SeederSuite) SetupTest() {
	s.users = userstore.NewInMemoryUserStore()
	s.events = auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.seeder = New(s.users, publisher.NewPublisher(s.events), logger)
}

func (s *SeederSuite) TestCreatesAdminWithForcedChange() {
	ctx := context.Background()

	res, err := s.seeder.SeedAdmin(ctx, Admin{Email: " Admin@Campus.test ", Password: "Inicial123"})
	s.Require().NoError(err)
	s.True(res.Created)
	s.Empty(res.GeneratedPassword)

	user, err := s.users.FindByEmail(ctx, "admin@campus.test")
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, user.Role)
	s.Equal(models.UserStatusActive, user.Status)
	s.True(user.MustChangePassword)
	s.Equal(res.UserID, user.ID)

	ok, err := secrets.Verify("Inicial123", user.PasswordHash)
	s.Require().NoError(err)
	s.True(ok)

	events, err := s.events.ListByUser(ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventAdminSeeded), events[0].Action)
	s.NotEqual("admin@campus.test", events[0].Email)
}

func (s *SeederSuite) TestGeneratesPasswordWhenMissing() {
	res, err := s.seeder.SeedAdmin(context.Background(), Admin{Email: "admin@campus.test"})
	s.Require().NoError(err)
	s.Require().NotEmpty(res.GeneratedPassword)

	user, err := s.users.FindByEmail(context.Background(), "admin@campus.test")
	s.Require().NoError(err)
	ok, err := secrets.Verify(res.GeneratedPassword, user.PasswordHash)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *SeederSuite) TestIdempotent() {
	existing := testutil.NewTestStudent("admin@campus.test", "Alumno123")
	s.Require().NoError(s.users.Create(context.Background(), existing))

	res, err := s.seeder.SeedAdmin(context.Background(), Admin{Email: "admin@campus.test", Password: "Otra1234"})
	s.Require().NoError(err)
	s.False(res.Created)
	s.Equal(existing.ID, res.UserID)

	user, err := s.users.FindByEmail(context.Background(), "admin@campus.test")
	s.Require().NoError(err)
	s.Equal(models.RoleStudent, user.Role)

	events, err := s.events.ListRecent(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *SeederSuite) TestRequiresEmail() {
	_, err := s.seeder.SeedAdmin(context.Background(), Admin{Email: "  "})
	s.Error(err)
}

func (s *SeederSuite) TestStoreFailure() {
	storeErr := errors.New("connection refused")
	seeder := New(&brokenStore{err: storeErr}, nil, nil)

	_, err := seeder.SeedAdmin(context.Background(), Admin{Email: "admin@campus.test"})
	s.ErrorIs(err, storeErr)
}

type brokenStore struct {
	err error
}

func (b *brokenStore) Create(context.Context, *models.User) error { return b.err }

func (b *brokenStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, b.err
}
