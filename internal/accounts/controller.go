package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/ghaggin/accounts/internal/model"
	"github.com/ghaggin/accounts/internal/password"
	"github.com/ghaggin/accounts/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Controller struct {
	repo  repository.Repository
	clock clockwork.Clock
	log   *zap.Logger
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.Repository
	Clock  clockwork.Clock
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:   p.Logger,
		repo:  p.Repo,
		clock: p.Clock,
	}, nil
}

// Register creates a user with an encrypted password. A duplicate email
// fails with repository.ErrEmailTaken.
func (c *Controller) Register(ctx context.Context, email string, plaintext string) (*model.User, error) {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		CreatedAt: c.clock.Now(),
	}

	err = c.repo.AddUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (c *Controller) Authenticate(ctx context.Context, email string, plaintext string) (*model.User, error) {
	u, err := c.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	err = password.Verify(u.Password, plaintext)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (c *Controller) ChangePassword(ctx context.Context, userID string, plaintext string) error {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	return c.repo.UpdateUserPassword(ctx, userID, hash)
}

// RecordSession persists one login as a session record keyed by the
// cookie token.
func (c *Controller) RecordSession(ctx context.Context, token string, userID string, expiresAt time.Time) error {
	return c.repo.AddSession(ctx, &model.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: c.clock.Now(),
		ExpiresAt: expiresAt,
	})
}

func (c *Controller) DropSession(ctx context.Context, token string) error {
	err := c.repo.DeleteSession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// ActiveSessions lists the user's unexpired session records.
func (c *Controller) ActiveSessions(ctx context.Context, userID string) ([]model.Session, error) {
	return c.repo.ActiveSessions(ctx, userID, c.clock.Now())
}
