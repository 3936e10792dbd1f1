package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"campus/internal/auth/models"
	"campus/internal/auth/session"
	jwttoken "campus/internal/jwt_token"
	id "campus/pkg/domain"
)

type tokenConfig struct {
	key                string
	issuer             string
	ttl                time.Duration
	role               roleValue
	email              string
	userID             string
	mustChangePassword bool
	asJSON             bool
}

// roleValue parses --role at flag time so a typo fails before anything is signed.
type roleValue models.Role

var _ pflag.Value = (*roleValue)(nil)

func (r *roleValue) String() string { return string(*r) }

func (r *roleValue) Set(raw string) error {
	role := models.Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q: want ADMIN or STUDENT", raw)
	}
	*r = roleValue(role)
	return nil
}

func (r *roleValue) Type() string { return "role" }

type tokenOutput struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Cookie    string    `json:"cookie"`
}

// NewTokenCmd creates the token subcommand.
func NewTokenCmd() *cobra.Command {
	cfg := &tokenConfig{role: roleValue(models.RoleStudent)}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for local testing",
		Long: `Mint a signed session token with the same claims the login endpoint
issues. The key must match the server's JWT_SIGNING_KEY.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.key, "key", os.Getenv("JWT_SIGNING_KEY"), "HMAC signing key (defaults to $JWT_SIGNING_KEY)")
	cmd.Flags().StringVar(&cfg.issuer, "issuer", "campus", "issuer claim")
	cmd.Flags().DurationVar(&cfg.ttl, "ttl", jwttoken.DefaultTTL, "token lifetime")
	cmd.Flags().Var(&cfg.role, "role", "ADMIN or STUDENT")
	cmd.Flags().StringVar(&cfg.email, "email", "alumno@campus.test", "email claim")
	cmd.Flags().StringVar(&cfg.userID, "user-id", "", "user id (UUID); generated if empty")
	cmd.Flags().BoolVar(&cfg.mustChangePassword, "must-change-password", false, "set the forced password change flag")
	cmd.Flags().BoolVar(&cfg.asJSON, "json", false, "print JSON instead of the bare token")

	return cmd
}

func runToken(cmd *cobra.Command, cfg *tokenConfig) error {
	if cfg.key == "" {
		return errors.New("signing key is required: pass --key or set JWT_SIGNING_KEY")
	}
	role := models.Role(cfg.role)

	userID := id.NewUserID()
	if cfg.userID != "" {
		parsed, err := uuid.Parse(cfg.userID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		userID = id.UserID(parsed)
	}

	svc := jwttoken.NewJWTService(cfg.key, cfg.issuer, cfg.ttl)
	token, err := svc.Issue(context.Background(), models.Subject{
		UserID:             userID,
		Email:              strings.ToLower(cfg.email),
		Role:               role,
		MustChangePassword: cfg.mustChangePassword,
	})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	out := cmd.OutOrStdout()
	if !cfg.asJSON {
		_, err = fmt.Fprintln(out, token.Value)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenOutput{
		Token:     token.Value,
		UserID:    userID.String(),
		Role:      role.String(),
		ExpiresAt: token.Claims.ExpiresAt,
		Cookie:    session.DefaultCookieName + "=" + token.Value,
	})
}
