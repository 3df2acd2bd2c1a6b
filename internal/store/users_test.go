// ABOUTME: Tests for user store methods
// ABOUTME: Covers creation, lookup, unique usernames and locale updates

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{
		ID:           "user-123",
		Username:     "grey",
		PasswordHash: "hash",
		Locale:       "en_US",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUser(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.Equal(t, user.Locale, got.Locale)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))

	byName, err := s.GetUserByUsername(ctx, "grey")
	require.NoError(t, err)
	assert.Equal(t, "user-123", byName.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "grey")
	err := s.CreateUser(ctx, &User{ID: "other", Username: "grey", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUpdateUserLocale_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateUserLocale(context.Background(), "missing", "en_US")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCountUsers(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "grey")
	createTestUser(t, s, "li")

	count, err := s.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
