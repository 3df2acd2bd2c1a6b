// ABOUTME: Error-path tests for SQLiteStore driven by go-sqlmock
// ABOUTME: Verifies driver failures are wrapped and mapped to store sentinels

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newSQLiteStoreFromDB(db), mock
}

func TestCreateUser_UniqueViolationMapsToSentinel(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))

	err := s.CreateUser(context.Background(), &User{ID: "u1", Username: "grey"})
	assert.ErrorIs(t, err, ErrUsernameExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_DriverErrorIsWrapped(t *testing.T) {
	s, mock := newMockedStore(t)
	driverErr := errors.New("disk I/O error")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO items")).WillReturnError(driverErr)

	err := s.CreateItem(context.Background(), &Item{Body: "x", AuthorID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "inserting item")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleItem_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE items SET done = NOT done")).
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.ToggleItem(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItem_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, body, done, author_id")).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetItem(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountItems_BuildsFilterClause(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM items WHERE author_id = ? AND done = ?")).
		WithArgs("u1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := s.CountItems(context.Background(), ItemFilter{AuthorID: "u1", Done: BoolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListItems_ScanErrorIsWrapped(t *testing.T) {
	s, mock := newMockedStore(t)

	rows := sqlmock.NewRows([]string{"id", "body", "done", "author_id", "created_at", "updated_at"}).
		AddRow(1, "a", false, "u1", "not-a-time", "not-a-time")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, body, done, author_id, created_at, updated_at FROM items")).
		WillReturnRows(rows)

	_, err := s.ListItems(context.Background(), ItemFilter{AuthorID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing created_at")
	require.NoError(t, mock.ExpectationsWereMet())
}
