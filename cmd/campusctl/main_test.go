package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/auth/models"
	"campus/internal/auth/session"
	jwttoken "campus/internal/jwt_token"
	audit "campus/pkg/platform/audit"
	"campus/pkg/secrets"
)

const testKey = "0123456789abcdef0123456789abcdef"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SIGNING_KEY", "")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "", "token", "--key", testKey, "--role", "admin", "--email", "Jefa@Campus.test", "--must-change-password")
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService(testKey, "campus", time.Hour).Verify(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "jefa@campus.test", claims.Email)
	assert.True(t, claims.MustChangePassword)
}

func TestTokenCmd_JSON(t *testing.T) {
	userID := "7f1a2b3c-4d5e-4f60-8a9b-0c1d2e3f4a5b"
	out, err := execute(t, "", "token", "--key", testKey, "--user-id", userID, "--json")
	require.NoError(t, err)

	var got tokenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "STUDENT", got.Role)
	assert.Equal(t, session.DefaultCookieName+"="+got.Token, got.Cookie)
}

func TestTokenCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing key", args: []string{"token"}, want: "signing key is required"},
		{name: "bad role", args: []string{"token", "--key", testKey, "--role", "profesor"}, want: "invalid role"},
		{name: "bad user id", args: []string{"token", "--key", testKey, "--user-id", "nope"}, want: "invalid --user-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHashPasswordCmd_Stdin(t *testing.T) {
	out, err := execute(t, "Segura123\n", "hash-password", "--stdin")
	require.NoError(t, err)

	ok, err := secrets.Verify("Segura123", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashPasswordCmd_Prompt(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	t.Run("hashes the typed password", func(t *testing.T) {
		readPassword = func(int) ([]byte, error) { return []byte("Tecleada1"), nil }
		out, err := execute(t, "", "hash-password")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		ok, err := secrets.Verify("Tecleada1", lines[len(lines)-1])
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("terminal errors surface", func(t *testing.T) {
		readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
		_, err := execute(t, "", "hash-password")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a terminal")
	})
}

func TestDatabaseCommandsRequireURL(t *testing.T) {
	for _, name := range []string{"migrate", "seed-admin", "audit"} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "", name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "database URL is required")
		})
	}
}

func TestPrintEvents(t *testing.T) {
	cmd := NewAuditCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := printEvents(cmd, []audit.Event{{
		Timestamp: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Action:    string(audit.EventAuthFailed),
		Decision:  "denied",
		Reason:    "invalid_credentials",
		RequestID: "req-1",
	}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2026-03-02T09:30:00Z")
	assert.Contains(t, out.String(), "invalid_credentials")
}
