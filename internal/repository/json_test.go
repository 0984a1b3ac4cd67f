package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghaggin/accounts/internal/model"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRepo(t *testing.T) *jsonRepo {
	return &jsonRepo{
		path: filepath.Join(t.TempDir(), "accounts.json"),
		log:  zaptest.NewLogger(t),
		data: &Data{},
	}
}

func TestJSONRepo_Users(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r := newRepo(t)
	ctx := context.Background()

	user := &model.User{ID: "u1", Email: "test@test.org", Password: "hash"}
	require.NoError(r.AddUser(ctx, user))

	// Email is unique.
	err := r.AddUser(ctx, &model.User{ID: "u2", Email: "test@test.org"})
	require.ErrorIs(err, ErrEmailTaken)

	found, err := r.GetUserByEmail(ctx, "test@test.org")
	require.NoError(err)
	assert.Equal("u1", found.ID)

	found, err = r.GetUserByID(ctx, "u1")
	require.NoError(err)
	assert.Equal("test@test.org", found.Email)

	_, err = r.GetUserByEmail(ctx, "missing@test.org")
	require.ErrorIs(err, ErrNotFound)

	require.NoError(r.UpdateUserPassword(ctx, "u1", "newhash"))
	found, err = r.GetUserByID(ctx, "u1")
	require.NoError(err)
	assert.Equal("newhash", found.Password)

	require.ErrorIs(r.UpdateUserPassword(ctx, "missing", "hash"), ErrNotFound)

	users, err := r.GetUsers(ctx)
	require.NoError(err)
	assert.Len(users, 1)
}

func TestJSONRepo_Sessions(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r := newRepo(t)
	ctx := context.Background()
	clock := clockwork.NewFakeClock()

	require.NoError(r.AddSession(ctx, &model.Session{
		ID:        "s1",
		UserID:    "u1",
		CreatedAt: clock.Now(),
		ExpiresAt: clock.Now().Add(time.Second),
	}))
	require.NoError(r.AddSession(ctx, &model.Session{
		ID:        "s2",
		UserID:    "u2",
		CreatedAt: clock.Now(),
		ExpiresAt: clock.Now().Add(time.Hour),
	}))

	active, err := r.ActiveSessions(ctx, "u1", clock.Now())
	require.NoError(err)
	assert.Len(active, 1)

	// Expiry is checked lazily against the caller's clock; the record
	// itself stays put.
	clock.Advance(2 * time.Second)

	active, err = r.ActiveSessions(ctx, "u1", clock.Now())
	require.NoError(err)
	assert.Empty(active)

	all, err := r.SessionsForUser(ctx, "u1")
	require.NoError(err)
	assert.Len(all, 1)

	// The other user's session is unaffected.
	active, err = r.ActiveSessions(ctx, "u2", clock.Now())
	require.NoError(err)
	assert.Len(active, 1)

	require.NoError(r.DeleteSession(ctx, "s1"))
	require.ErrorIs(r.DeleteSession(ctx, "s1"), ErrNotFound)
}

func TestJSONRepo_Persistence(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "accounts.json")
	ctx := context.Background()

	r := &jsonRepo{path: path, log: zaptest.NewLogger(t), data: &Data{}}
	require.NoError(r.AddUser(ctx, &model.User{ID: "u1", Email: "test@test.org", Password: "hash"}))
	require.NoError(r.AddSession(ctx, &model.Session{ID: "s1", UserID: "u1"}))
	require.NoError(r.writefile())

	r2 := &jsonRepo{path: path, log: zaptest.NewLogger(t), data: &Data{}}
	require.NoError(r2.readfile())

	found, err := r2.GetUserByEmail(ctx, "test@test.org")
	require.NoError(err)
	assert.Equal("u1", found.ID)

	sessions, err := r2.SessionsForUser(ctx, "u1")
	require.NoError(err)
	assert.Len(sessions, 1)
}
