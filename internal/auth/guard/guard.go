// Package guard decides, per request, whether a page under a role area may
// be served, or where the browser must be sent instead.
//
// The checks run in a fixed order and the first failure wins:
//
//	no token              -> login
//	token does not verify -> login
//	wrong role for area   -> that area's mismatch target
//	must change password  -> the role's change-password page
package guard

import (
	"context"
	gopath "path"
	"strings"

	"campus/internal/auth/models"
)

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNoToken            Reason = "no_token"
	ReasonInvalidSession     Reason = "invalid_session"
	ReasonRoleMismatch       Reason = "role_mismatch"
	ReasonMustChangePassword Reason = "must_change_password"
)

// Decision is the outcome for one request. It is never persisted.
type Decision struct {
	Allowed    bool
	Reason     Reason
	RedirectTo string
	// Claims is set whenever the token verified, including some denials.
	Claims *models.SessionClaims
}

func allow(claims *models.SessionClaims) Decision {
	return Decision{Allowed: true, Claims: claims}
}

func deny(reason Reason, target string, claims *models.SessionClaims) Decision {
	return Decision{Reason: reason, RedirectTo: target, Claims: claims}
}

// Area is a path subtree reserved for one role.
type Area struct {
	Prefix string
	Role   models.Role
	// MismatchRedirect is where other roles are sent.
	MismatchRedirect string
}

// Config maps roles to areas and pages. Nothing in the decision code knows
// concrete paths.
type Config struct {
	LoginPath           string
	Areas               []Area
	ChangePasswordPaths map[models.Role]string
}

// DefaultConfig is the school's routing table.
func DefaultConfig() Config {
	return Config{
		LoginPath: "/login",
		Areas: []Area{
			{Prefix: "/admin", Role: models.RoleAdmin, MismatchRedirect: "/estudiante/inicio"},
			{Prefix: "/estudiante", Role: models.RoleStudent, MismatchRedirect: "/admin/inicio"},
		},
		ChangePasswordPaths: map[models.Role]string{
			models.RoleAdmin:   "/admin/cambiar-contrasena",
			models.RoleStudent: "/estudiante/cambiar-contrasena",
		},
	}
}

// AreaFor returns the area containing path. Matching is by whole segments:
// "/admin" and "/admin/x" are in the admin area, "/administrator" is not.
func (c Config) AreaFor(path string) (Area, bool) {
	for _, a := range c.Areas {
		if inArea(path, a.Prefix) {
			return a, true
		}
	}
	return Area{}, false
}

func inArea(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Verifier checks a raw token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.SessionClaims, error)
}

// Evaluate runs the check sequence for path. token is "" when the request
// carried none.
func Evaluate(ctx context.Context, cfg Config, verifier Verifier, path, token string) Decision {
	path = CleanPath(path)
	if token == "" {
		return deny(ReasonNoToken, cfg.LoginPath, nil)
	}

	claims, err := verifier.Verify(ctx, token)
	if err != nil || claims == nil {
		return deny(ReasonInvalidSession, cfg.LoginPath, nil)
	}

	if area, ok := cfg.AreaFor(path); ok && claims.Role != area.Role {
		return deny(ReasonRoleMismatch, area.MismatchRedirect, claims)
	}

	if claims.MustChangePassword {
		changePath, ok := cfg.ChangePasswordPaths[claims.Role]
		if !ok {
			// A role without a change page can never satisfy the requirement.
			return deny(ReasonMustChangePassword, cfg.LoginPath, claims)
		}
		if normalize(path) != normalize(changePath) {
			return deny(ReasonMustChangePassword, changePath, claims)
		}
	}

	return allow(claims)
}

// CleanPath resolves dot segments and repeated slashes in p, keeping a
// trailing slash. Area matching is only sound on cleaned paths.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	cleaned := gopath.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

func normalize(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}
