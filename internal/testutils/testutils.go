// Package testutils builds a complete accounts application for tests and
// provides helpers to create users, log them in through the login view,
// probe authentication state and spawn multiple sessions per user.
package testutils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghaggin/accounts/internal/accounts"
	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/middleware"
	"github.com/ghaggin/accounts/internal/model"
	"github.com/ghaggin/accounts/internal/repository"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	DefaultEmail    = "test@test.org"
	DefaultPassword = "123456"
)

// TestUser is a created user plus the plaintext password it was created
// with, kept around so the user can be logged in later.
type TestUser struct {
	*model.User
	PasswordPlaintext string
}

// App is a fully wired accounts application served by an in-process
// httptest server. Every test gets its own App, repository file and
// session store, so there is no cross-test state.
type App struct {
	Server     *httptest.Server
	Config     *config.Config
	Sessions   *middleware.SessionManager
	Controller *accounts.Controller
	Repo       repository.Repository
	Clock      clockwork.Clock

	fx *fxtest.App
}

func New(tb testing.TB) *App {
	tb.Helper()

	cfg, err := config.New()
	require.NoError(tb, err)
	cfg.Repo.Path = filepath.Join(tb.TempDir(), "accounts.json")

	app := &App{Config: cfg}

	var server *accounts.Server
	app.fx = fxtest.New(tb,
		fx.Supply(cfg),
		fx.Provide(
			func() *zap.Logger { return zaptest.NewLogger(tb) },
			clockwork.NewRealClock,
			middleware.NewSessionManager,
			repository.NewJSON,
		),
		accounts.Module,
		fx.Populate(&server, &app.Sessions, &app.Controller, &app.Repo, &app.Clock),
	)
	app.fx.RequireStart()

	app.Server = httptest.NewServer(server.Handler())
	tb.Cleanup(func() {
		app.Server.Close()
		app.fx.RequireStop()
	})

	return app
}

func (a *App) URL(path string) string {
	return a.Server.URL + path
}

// NewClient returns a simulated browser: a cookie jar and nothing else.
// One client holds at most one active session at a time.
func (a *App) NewClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	return &http.Client{Jar: jar}
}

// noFollow shares the client's cookie jar but reports redirects instead
// of following them.
func noFollow(c *http.Client) *http.Client {
	return &http.Client{
		Jar:       c.Jar,
		Transport: c.Transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// CreateTestUser creates a user with an encrypted password and remembers
// the plaintext. Empty arguments fall back to DefaultEmail and
// DefaultPassword. A duplicate email fails with
// repository.ErrEmailTaken.
func CreateTestUser(a *App, email string, plaintext string) (*TestUser, error) {
	if email == "" {
		email = DefaultEmail
	}
	if plaintext == "" {
		plaintext = DefaultPassword
	}

	user, err := a.Controller.Register(context.Background(), email, plaintext)
	if err != nil {
		return nil, err
	}

	return &TestUser{User: user, PasswordPlaintext: plaintext}, nil
}

// LoginUserViaView submits the login form for the client and returns
// once the redirect comes back. On success the session cookie is in the
// client's jar.
func LoginUserViaView(a *App, client *http.Client, email string, plaintext string) error {
	resp, err := noFollow(client).PostForm(a.URL(accounts.LoginURL), url.Values{
		"email":    {email},
		"password": {plaintext},
	})
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("login via view: expected redirect, got %d", resp.StatusCode)
	}

	return nil
}

// ClientAuthenticated infers login state from response behavior: a
// protected URL served with 200 means authenticated, a 302 to the login
// view means not. testURL defaults to the change-password view. Errors
// count as unauthenticated.
func ClientAuthenticated(a *App, client *http.Client, testURL string) bool {
	if testURL == "" {
		testURL = a.URL(accounts.ChangePasswordURL)
	}

	resp, err := noFollow(client).Get(testURL)
	if err != nil {
		return false
	}
	defer drain(resp)

	// Anything but a plain 200 means the protected view was not served,
	// which for this app is the redirect to the login view.
	return resp.StatusCode == http.StatusOK
}

// SetAppSessionTTL installs the TTL into the session manager and the
// config, and returns the equivalent duration. The effect lasts for the
// lifetime of the app.
func SetAppSessionTTL(a *App, seconds int) time.Duration {
	ttl := time.Duration(seconds) * time.Second
	a.Config.Session.TTLSeconds = seconds
	a.Sessions.SetLifetime(ttl)
	return ttl
}

// CreateSessionsForUser logs the user in from n fresh clients and
// returns the user along with the clients. Calls are additive: each one
// appends n sessions to the user's active sessions. A nil user creates
// one with the default values, so a second anonymous call fails with
// repository.ErrEmailTaken.
func CreateSessionsForUser(a *App, user *TestUser, n int) (*TestUser, []*http.Client, error) {
	if user == nil {
		var err error
		user, err = CreateTestUser(a, "", "")
		if err != nil {
			return nil, nil, err
		}
	}
	if n < 1 {
		n = 1
	}

	clients := make([]*http.Client, 0, n)
	for i := 0; i < n; i++ {
		client := a.NewClient()
		err := LoginUserViaView(a, client, user.Email, user.PasswordPlaintext)
		if err != nil {
			return nil, nil, err
		}
		clients = append(clients, client)
	}

	return user, clients, nil
}

// SessionCookie returns the session cookie from the client's jar, or nil
// if the client never logged in. Its value is the session token recorded
// for the login.
func SessionCookie(a *App, client *http.Client) *http.Cookie {
	u, err := url.Parse(a.Server.URL)
	if err != nil {
		return nil
	}

	for _, c := range client.Jar.Cookies(u) {
		if c.Name == a.Sessions.CookieName() {
			return c
		}
	}

	return nil
}

// ActiveSessions lists the user's unexpired session records.
func ActiveSessions(a *App, user *TestUser) ([]model.Session, error) {
	return a.Controller.ActiveSessions(context.Background(), user.ID)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
