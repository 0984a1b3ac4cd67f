package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ghaggin/accounts/internal/model"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken signals a directory-level uniqueness violation on
	// user creation.
	ErrEmailTaken = errors.New("email already taken")
)

type Repository interface {
	AddUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id string, hash string) error
	GetUsers(ctx context.Context) ([]model.User, error)

	AddSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, id string) error
	SessionsForUser(ctx context.Context, userID string) ([]model.Session, error)
	ActiveSessions(ctx context.Context, userID string, now time.Time) ([]model.Session, error)
}
