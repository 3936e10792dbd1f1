package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/requestcontext"
)

const testKey = "test-signing-key-0123456789abcdef"

type JWTServiceSuite struct {
	suite.Suite
	service *JWTService
	subject models.Subject
	now     time.Time
}

func TestJWTServiceSuite(t *testing.T) {
	suite.Run(t, new(JWTServiceSuite))
}

func (s *JWTServiceSuite) SetupTest() {
	s.service = NewJWTService(testKey, "campus", time.Hour)
	s.subject = models.Subject{
		UserID:             id.UserID(uuid.New()),
		Email:              "ana@colegio.es",
		Role:               models.RoleStudent,
		MustChangePassword: true,
	}
	s.now = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
}

func (s *JWTServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *JWTServiceSuite) assertInvalid(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("invalid session", err.Error())
}

func (s *JWTServiceSuite) TestRoundTrip() {
	token, err := s.service.Issue(s.at(s.now), s.subject)
	s.Require().NoError(err)
	s.NotEmpty(token.Value)
	s.Equal(time.Hour, token.TTL())

	claims, err := s.service.Verify(s.at(s.now.Add(30*time.Minute)), token.Value)
	s.Require().NoError(err)
	s.Equal(s.subject, claims.Subject)
	s.Equal(token.Claims.TokenID, claims.TokenID)
	s.True(s.now.Equal(claims.IssuedAt))
	s.True(s.now.Add(time.Hour).Equal(claims.ExpiresAt))
}

func (s *JWTServiceSuite) TestExpiryBoundary() {
	token, err := s.service.Issue(s.at(s.now), s.subject)
	s.Require().NoError(err)

	s.Run("one second before expiry is valid", func() {
		_, err := s.service.Verify(s.at(s.now.Add(time.Hour-time.Second)), token.Value)
		s.NoError(err)
	})

	s.Run("exactly at expiry is invalid", func() {
		_, err := s.service.Verify(s.at(s.now.Add(time.Hour)), token.Value)
		s.assertInvalid(err)
	})

	s.Run("after expiry is invalid", func() {
		_, err := s.service.Verify(s.at(s.now.Add(2*time.Hour)), token.Value)
		s.assertInvalid(err)
	})
}

func (s *JWTServiceSuite) TestRejectsTampering() {
	token, err := s.service.Issue(s.at(s.now), s.subject)
	s.Require().NoError(err)
	ctx := s.at(s.now)

	s.Run("flipped signature byte", func() {
		raw := []byte(token.Value)
		last := len(raw) - 2
		if raw[last] == 'A' {
			raw[last] = 'B'
		} else {
			raw[last] = 'A'
		}
		_, err := s.service.Verify(ctx, string(raw))
		s.assertInvalid(err)
	})

	s.Run("different key", func() {
		other := NewJWTService("another-signing-key-0123456789abcd", "campus", time.Hour)
		_, err := other.Verify(ctx, token.Value)
		s.assertInvalid(err)
	})

	s.Run("different issuer", func() {
		other := NewJWTService(testKey, "someone-else", time.Hour)
		_, err := other.Verify(ctx, token.Value)
		s.assertInvalid(err)
	})

	s.Run("malformed", func() {
		_, err := s.service.Verify(ctx, "not.a.token")
		s.assertInvalid(err)
	})

	s.Run("empty", func() {
		_, err := s.service.Verify(ctx, "")
		s.assertInvalid(err)
	})
}

func (s *JWTServiceSuite) sign(method jwt.SigningMethod, key any, claims SessionTokenClaims) string {
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	s.Require().NoError(err)
	return signed
}

func (s *JWTServiceSuite) validClaims() SessionTokenClaims {
	return SessionTokenClaims{
		UserID: s.subject.UserID.String(),
		Email:  s.subject.Email,
		Role:   string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campus",
			IssuedAt:  jwt.NewNumericDate(s.now),
			ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Hour)),
		},
	}
}

func (s *JWTServiceSuite) TestRejectsAlgorithmConfusion() {
	ctx := s.at(s.now)

	s.Run("HS512 with same key", func() {
		_, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodHS512, []byte(testKey), s.validClaims()))
		s.assertInvalid(err)
	})

	s.Run("alg none", func() {
		_, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, s.validClaims()))
		s.assertInvalid(err)
	})

	s.Run("hand-built HS256 is accepted", func() {
		claims, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodHS256, []byte(testKey), s.validClaims()))
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, claims.Role)
		s.False(claims.MustChangePassword)
	})
}

func (s *JWTServiceSuite) TestRejectsIncompletePayload() {
	ctx := s.at(s.now)

	s.Run("unknown role", func() {
		c := s.validClaims()
		c.Role = "PROFESOR"
		_, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodHS256, []byte(testKey), c))
		s.assertInvalid(err)
	})

	s.Run("bad user id", func() {
		c := s.validClaims()
		c.UserID = "42"
		_, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodHS256, []byte(testKey), c))
		s.assertInvalid(err)
	})

	s.Run("no expiry", func() {
		c := s.validClaims()
		c.ExpiresAt = nil
		_, err := s.service.Verify(ctx, s.sign(jwt.SigningMethodHS256, []byte(testKey), c))
		s.assertInvalid(err)
	})
}

func (s *JWTServiceSuite) TestIssueRequiresSubject() {
	_, err := s.service.Issue(s.at(s.now), models.Subject{Role: models.RoleAdmin})
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	subject := s.subject
	subject.Role = "PROFESOR"
	_, err = s.service.Issue(s.at(s.now), subject)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
