package middleware

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/model"
)

const (
	principalKey = "principal"
)

var (
	errSessionNotFound = errors.New("session not found")
)

type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	gob.Register(&model.Principal{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Lifetime = cfg.SessionTTL()
	sm.impl.Cookie.Name = cfg.Session.CookieName

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) Principal(ctx context.Context) (*model.Principal, error) {
	principal, ok := s.impl.Get(ctx, principalKey).(*model.Principal)
	if !ok {
		return nil, errSessionNotFound
	}

	return principal, nil
}

// LogIn rotates the session token, stores the principal and commits
// immediately so the caller learns the token before the response is
// written. The cookie is written here as well; the LoadAndSave wrapper
// may commit once more on the way out, with the same token.
func (s *SessionManager) LogIn(ctx context.Context, w http.ResponseWriter, principal *model.Principal) (string, time.Time, error) {
	err := s.impl.RenewToken(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	s.impl.Put(ctx, principalKey, principal)

	token, expiry, err := s.impl.Commit(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	s.impl.WriteSessionCookie(ctx, w, token, expiry)
	return token, expiry, nil
}

// LogOut destroys the session and returns the token it had, so callers
// can drop the persisted record for it.
func (s *SessionManager) LogOut(ctx context.Context) (string, error) {
	token := s.impl.Token(ctx)
	return token, s.impl.Destroy(ctx)
}

func (s *SessionManager) Lifetime() time.Duration {
	return s.impl.Lifetime
}

// SetLifetime installs a new session TTL. The effect is process-wide:
// every commit after this call uses the new lifetime.
func (s *SessionManager) SetLifetime(d time.Duration) {
	s.impl.Lifetime = d
}

func (s *SessionManager) CookieName() string {
	return s.impl.Cookie.Name
}
