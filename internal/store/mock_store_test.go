// ABOUTME: Tests for the in-memory MockStore
// ABOUTME: Keeps MockStore behaviour aligned with SQLiteStore semantics

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_ItemsMatchSQLiteSemantics(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	a := &Item{Body: "a", AuthorID: "u1"}
	b := &Item{Body: "b", AuthorID: "u1", Done: true}
	c := &Item{Body: "c", AuthorID: "u2", Done: true}
	for _, it := range []*Item{a, b, c} {
		require.NoError(t, m.CreateItem(ctx, it))
	}
	assert.Less(t, a.ID, b.ID)

	items, err := m.ListItems(ctx, ItemFilter{AuthorID: "u1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Body)

	toggled, err := m.ToggleItem(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	n, err := m.DeleteCompletedItems(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := m.CountItems(ctx, ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = m.GetItem(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_UsersAndSessions(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, &User{ID: "u1", Username: "grey"}))
	assert.ErrorIs(t, m.CreateUser(ctx, &User{ID: "u2", Username: "grey"}), ErrUsernameExists)

	require.NoError(t, m.CreateSession(ctx, &Session{ID: "s", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}))
	_, err := m.GetSession(ctx, "s")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMockStore_Err(t *testing.T) {
	m := NewMockStore()
	m.Err = errors.New("boom")

	_, err := m.CountItems(context.Background(), ItemFilter{})
	assert.EqualError(t, err, "boom")
	assert.EqualError(t, m.Ping(context.Background()), "boom")
}
