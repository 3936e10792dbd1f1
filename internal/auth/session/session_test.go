package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

func testToken() *models.SessionToken {
	issued := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	return &models.SessionToken{
		Value: "signed.jwt.value",
		Claims: models.SessionClaims{
			Subject:   models.Subject{UserID: id.UserID(uuid.New()), Role: models.RoleStudent},
			IssuedAt:  issued,
			ExpiresAt: issued.Add(time.Hour),
		},
	}
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"": ModeCookie, "cookie": ModeCookie, " BODY ": ModeBody, "both": ModeBoth} {
		got, err := ParseMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("header")
	assert.Error(t, err)
}

func TestBinding_CookieMode(t *testing.T) {
	transport := NewTransport(Config{Mode: ModeCookie, Secure: true})
	w := httptest.NewRecorder()
	b := transport.Bind(w)

	require.NoError(t, b.Deliver(context.Background(), testToken()))

	c := findCookie(t, w, "auth_token")
	assert.Equal(t, "signed.jwt.value", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Empty(t, b.BodyToken())
}

func TestBinding_BodyMode(t *testing.T) {
	transport := NewTransport(Config{Mode: ModeBody})
	w := httptest.NewRecorder()
	b := transport.Bind(w)

	require.NoError(t, b.Deliver(context.Background(), testToken()))

	assert.Equal(t, "signed.jwt.value", b.BodyToken())
	assert.Empty(t, w.Result().Cookies())
}

func TestBinding_BothModesShareOneEvent(t *testing.T) {
	transport := NewTransport(Config{Mode: ModeBoth})
	w := httptest.NewRecorder()
	b := transport.Bind(w)

	require.NoError(t, b.Deliver(context.Background(), testToken()))

	assert.Equal(t, "signed.jwt.value", b.BodyToken())
	assert.Equal(t, b.BodyToken(), findCookie(t, w, "auth_token").Value)
}

func TestBinding_Clear(t *testing.T) {
	transport := NewTransport(Config{Mode: ModeBoth, CookieName: "sid"})
	w := httptest.NewRecorder()
	b := transport.Bind(w)

	require.NoError(t, b.Clear(context.Background()))
	require.NoError(t, b.Clear(context.Background()), "clear is idempotent")

	c := findCookie(t, w, "sid")
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Empty(t, b.BodyToken())
}

func TestBinding_Unavailable(t *testing.T) {
	b := NewTransport(Config{}).Bind(nil)

	assert.ErrorIs(t, b.Deliver(context.Background(), testToken()), sentinel.ErrUnavailable)
	assert.ErrorIs(t, b.Clear(context.Background()), sentinel.ErrUnavailable)
}

func TestExtract(t *testing.T) {
	transport := NewTransport(Config{})

	t.Run("cookie wins over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
		token, ok := transport.Extract(r)
		assert.True(t, ok)
		assert.Equal(t, "from-cookie", token)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")
		token, ok := transport.Extract(r)
		assert.True(t, ok)
		assert.Equal(t, "from-header", token)
	})

	t.Run("nothing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc")
		_, ok := transport.Extract(r)
		assert.False(t, ok)
	})

	t.Run("empty cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: ""})
		_, ok := transport.Extract(r)
		assert.False(t, ok)
	})
}

func TestCandidates(t *testing.T) {
	transport := NewTransport(Config{})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth_token", Value: "caducado"})
	r.Header.Set("Authorization", "Bearer vigente")
	assert.Equal(t, []string{"caducado", "vigente"}, transport.Candidates(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth_token", Value: "mismo"})
	r.Header.Set("Authorization", "Bearer mismo")
	assert.Equal(t, []string{"mismo"}, transport.Candidates(r))

	assert.Empty(t, transport.Candidates(httptest.NewRequest(http.MethodGet, "/", nil)))
}
