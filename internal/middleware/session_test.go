package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_LogIn(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	cfg, err := config.New()
	require.NoError(err)
	cfg.Session.CookieName = "sid"

	sm, err := NewSessionManager(cfg)
	require.NoError(err)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	var token string
	var expiry time.Time
	handler := sm.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := sm.Principal(r.Context())
		assert.Error(err)

		token, expiry, err = sm.LogIn(r.Context(), w, &model.Principal{UserID: "u1", Email: "test@test.org"})
		assert.NoError(err)

		p, err := sm.Principal(r.Context())
		assert.NoError(err)
		assert.Equal("u1", p.UserID)
		assert.Equal("test@test.org", p.Email)
	}))
	handler.ServeHTTP(rr, req)

	require.NotEmpty(token)
	assert.WithinDuration(time.Now().Add(sm.Lifetime()), expiry, time.Minute)

	// The cookie carries the committed token under the configured name.
	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == "sid" && c.Value == token {
			found = true
		}
	}
	assert.True(found)
}

func TestSessionManager_LogOut(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sm := newManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loginToken, _, err := sm.LogIn(r.Context(), w, &model.Principal{UserID: "u1"})
		assert.NoError(err)

		token, err := sm.LogOut(r.Context())
		assert.NoError(err)
		assert.Equal(loginToken, token)

		_, err = sm.Principal(r.Context())
		assert.Error(err)
	}))
	handler.ServeHTTP(rr, req)

	require.Equal(http.StatusOK, rr.Code)
}

func TestSessionManager_SetLifetime(t *testing.T) {
	assert := assert.New(t)

	sm := newManager(t)

	assert.Equal(time.Hour, sm.Lifetime())
	sm.SetLifetime(time.Second)
	assert.Equal(time.Second, sm.Lifetime())
}

func newManager(t *testing.T) *SessionManager {
	cfg, err := config.New()
	require.NoError(t, err)

	sm, err := NewSessionManager(cfg)
	require.NoError(t, err)

	return sm
}
