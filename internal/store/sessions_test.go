// ABOUTME: Tests for session store methods
// ABOUTME: Covers expiry filtering and purging of stale sessions

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "grey")

	session := &Session{
		ID:        "abc123",
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, s.DeleteSession(ctx, "abc123"))
	_, err = s.GetSession(ctx, "abc123")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting twice is fine
	require.NoError(t, s.DeleteSession(ctx, "abc123"))
}

func TestGetSession_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "grey")

	require.NoError(t, s.CreateSession(ctx, &Session{
		ID:        "stale",
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := s.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "grey")

	require.NoError(t, s.CreateSession(ctx, &Session{
		ID: "stale", UserID: user.ID, CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, s.CreateSession(ctx, &Session{
		ID: "fresh", UserID: user.ID, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, s.DeleteExpiredSessions(ctx))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 1, count)

	_, err := s.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}
