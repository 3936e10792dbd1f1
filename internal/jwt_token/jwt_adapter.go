package jwttoken

import (
	"campus/internal/auth/models"
	id "campus/pkg/domain"
)

// toSessionClaims maps verified wire claims onto the domain view, rejecting
// tokens whose payload does not describe a real subject.
func toSessionClaims(c *SessionTokenClaims) (*models.SessionClaims, error) {
	userID, err := id.ParseUserID(c.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}
	role := models.Role(c.Role)
	if !role.IsValid() || c.IssuedAt == nil {
		return nil, ErrInvalidSession
	}
	return &models.SessionClaims{
		Subject: models.Subject{
			UserID:             userID,
			Email:              c.Email,
			Role:               role,
			MustChangePassword: c.MustChangePassword,
		},
		TokenID:   c.ID,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
