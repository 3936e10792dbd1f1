package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*models.SessionClaims, error) {
	args := m.Called(ctx, token)
	if c := args.Get(0); c != nil {
		return c.(*models.SessionClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type RequireSessionSuite struct {
	suite.Suite
	verifier *MockVerifier
	handler  http.Handler
	called   bool
	claims   *models.SessionClaims
}

func TestRequireSessionSuite(t *testing.T) {
	suite.Run(t, new(RequireSessionSuite))
}

func (s *RequireSessionSuite) SetupTest() {
	s.verifier = new(MockVerifier)
	s.called = false
	s.claims = nil
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.claims = ClaimsFromContext(r.Context())
	})
	s.handler = RequireSession(NewTransport(Config{}), s.verifier, logger)(next)
}

func (s *RequireSessionSuite) TearDownTest() {
	s.verifier.AssertExpectations(s.T())
}

func (s *RequireSessionSuite) serve(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func (s *RequireSessionSuite) errorBody(w *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *RequireSessionSuite) TestMissingToken() {
	w := s.serve(httptest.NewRequest(http.MethodPost, "/api/auth/change-password", nil))

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.MsgUnauthorized, s.errorBody(w).Message)
	s.False(s.called)
}

func (s *RequireSessionSuite) TestInvalidToken() {
	s.verifier.On("Verify", mock.Anything, "bad").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session"))

	r := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "bad"})
	w := s.serve(r)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.MsgSessionInvalid, s.errorBody(w).Message)
	s.False(s.called)
}

func (s *RequireSessionSuite) TestValidTokenPopulatesContext() {
	claims := &models.SessionClaims{Subject: models.Subject{UserID: id.UserID(uuid.New()), Role: models.RoleAdmin}}
	s.verifier.On("Verify", mock.Anything, "good").Return(claims, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", nil)
	r.Header.Set("Authorization", "Bearer good")
	w := s.serve(r)

	s.Equal(http.StatusOK, w.Code)
	s.True(s.called)
	s.Same(claims, s.claims)
}

func (s *RequireSessionSuite) TestStaleCookieFallsBackToBearer() {
	claims := &models.SessionClaims{Subject: models.Subject{UserID: id.UserID(uuid.New()), Role: models.RoleStudent}}
	s.verifier.On("Verify", mock.Anything, "caducado").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "token expired"))
	s.verifier.On("Verify", mock.Anything, "vigente").Return(claims, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "caducado"})
	r.Header.Set("Authorization", "Bearer vigente")
	w := s.serve(r)

	s.Equal(http.StatusOK, w.Code)
	s.True(s.called)
	s.Same(claims, s.claims)
}

func (s *RequireSessionSuite) TestEveryCandidateFailing() {
	s.verifier.On("Verify", mock.Anything, mock.Anything).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session"))

	r := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "uno"})
	r.Header.Set("Authorization", "Bearer dos")
	w := s.serve(r)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.MsgSessionInvalid, s.errorBody(w).Message)
	s.verifier.AssertNumberOfCalls(s.T(), "Verify", 2)
	s.False(s.called)
}
