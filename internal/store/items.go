// ABOUTME: Todo item store methods for SQLiteStore
// ABOUTME: Item IDs are assigned by SQLite; toggles flip done in a single UPDATE

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateItem inserts a new item and sets its ID from the database.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *Item) error {
	now := time.Now().UTC().Truncate(time.Second)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (body, done, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, item.Body, item.Done, item.AuthorID, formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading item id: %w", err)
	}
	item.ID = id

	s.logger.Debug("created item", "id", item.ID, "author", item.AuthorID)
	return nil
}

// GetItem retrieves an item by ID.
// Returns ErrNotFound if the item doesn't exist.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, body, done, author_id, created_at, updated_at
		FROM items
		WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return item, nil
}

// UpdateItemBody replaces an item's body and leaves done untouched.
func (s *SQLiteStore) UpdateItemBody(ctx context.Context, id int64, body string) (*Item, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET body = ?, updated_at = ? WHERE id = ?
	`, body, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// ToggleItem flips an item's done flag.
func (s *SQLiteStore) ToggleItem(ctx context.Context, id int64) (*Item, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET done = NOT done, updated_at = ? WHERE id = ?
	`, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("toggling item: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireRow(result)
}

// DeleteCompletedItems removes every done item owned by authorID and
// returns how many rows were removed.
func (s *SQLiteStore) DeleteCompletedItems(ctx context.Context, authorID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE author_id = ? AND done = 1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("deleting completed items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		s.logger.Debug("cleared completed items", "author", authorID, "count", n)
	}
	return n, nil
}

// ListItems returns items matching the filter, oldest first.
func (s *SQLiteStore) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	where, args := itemWhere(filter)
	query := `SELECT id, body, done, author_id, created_at, updated_at FROM items` + where + ` ORDER BY id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountItems returns how many items match the filter, ignoring Limit and Offset.
func (s *SQLiteStore) CountItems(ctx context.Context, filter ItemFilter) (int, error) {
	where, args := itemWhere(filter)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

func itemWhere(filter ItemFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.AuthorID != "" {
		clauses = append(clauses, "author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.Done != nil {
		clauses = append(clauses, "done = ?")
		args = append(args, *filter.Done)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var createdAt, updatedAt string
	if err := row.Scan(&item.ID, &item.Body, &item.Done, &item.AuthorID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if item.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
