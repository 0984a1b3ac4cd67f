package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Users    []model.User    `json:"users"`
	Sessions []model.Session `json:"sessions"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data *Data
}

type jsonParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewJSON(p jsonParams) (Repository, error) {
	r := &jsonRepo{
		path: p.Config.Repo.Path,
		log:  p.Log,
		data: &Data{},
	}

	err := r.readfile()
	if err != nil {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json repo data file", zap.Error(err))
	}

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func (r *jsonRepo) stop(_ context.Context) error {
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) writefile() error {
	r.mu.RLock()
	b, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(b)
	return err
}

func (r *jsonRepo) AddUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.data.Users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	r.data.Users = append(r.data.Users, *user)
	return nil
}

func (r *jsonRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

func (r *jsonRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

func (r *jsonRepo) UpdateUserPassword(_ context.Context, id string, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.data.Users {
		if r.data.Users[i].ID == id {
			r.data.Users[i].Password = hash
			return nil
		}
	}

	return ErrNotFound
}

func (r *jsonRepo) GetUsers(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, len(r.data.Users))
	copy(users, r.data.Users)
	return users, nil
}

func (r *jsonRepo) AddSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.Sessions = append(r.data.Sessions, *session)
	return nil
}

func (r *jsonRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.data.Sessions {
		if s.ID == id {
			r.data.Sessions = append(r.data.Sessions[:i], r.data.Sessions[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

func (r *jsonRepo) SessionsForUser(_ context.Context, userID string) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []model.Session
	for _, s := range r.data.Sessions {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}

	return sessions, nil
}

// ActiveSessions filters out expired records. Expiry is checked lazily
// against the caller's clock, there is no eviction sweep.
func (r *jsonRepo) ActiveSessions(_ context.Context, userID string, now time.Time) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []model.Session
	for _, s := range r.data.Sessions {
		if s.UserID == userID && !s.Expired(now) {
			sessions = append(sessions, s)
		}
	}

	return sessions, nil
}
