// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows service tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	users    map[string]*User    // keyed by user ID
	items    map[int64]*Item     // keyed by item ID
	sessions map[string]*Session // keyed by session ID
	nextID   int64

	// Err, when set, is returned by every method.
	Err error
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[string]*User),
		items:    make(map[int64]*Item),
		sessions: make(map[string]*Session),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameExists
		}
	}
	u := *user
	m.users[u.ID] = &u
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateUserLocale stores the user's preferred locale.
func (m *MockStore) UpdateUserLocale(ctx context.Context, id, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Locale = locale
	return nil
}

// CountUsers returns the number of users.
func (m *MockStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.users), nil
}

// CreateItem stores a new item and assigns the next ID.
func (m *MockStore) CreateItem(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	m.nextID++
	item.ID = m.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.UpdatedAt = item.CreatedAt

	it := *item
	m.items[it.ID] = &it
	return nil
}

// GetItem retrieves an item by ID.
func (m *MockStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

// UpdateItemBody replaces an item's body.
func (m *MockStore) UpdateItemBody(ctx context.Context, id int64, body string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	it.Body = body
	it.UpdatedAt = time.Now().UTC()
	cp := *it
	return &cp, nil
}

// ToggleItem flips an item's done flag.
func (m *MockStore) ToggleItem(ctx context.Context, id int64) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	it.Done = !it.Done
	it.UpdatedAt = time.Now().UTC()
	cp := *it
	return &cp, nil
}

// DeleteItem removes an item.
func (m *MockStore) DeleteItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// DeleteCompletedItems removes done items owned by authorID.
func (m *MockStore) DeleteCompletedItems(ctx context.Context, authorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	var n int64
	for id, it := range m.items {
		if it.AuthorID == authorID && it.Done {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// ListItems returns items matching the filter ordered by ID.
func (m *MockStore) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	matched := m.matchItems(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*Item{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// CountItems returns the number of items matching the filter.
func (m *MockStore) CountItems(ctx context.Context, filter ItemFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.matchItems(filter)), nil
}

func (m *MockStore) matchItems(filter ItemFilter) []*Item {
	out := []*Item{}
	for _, it := range m.items {
		if filter.AuthorID != "" && it.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Done != nil && it.Done != *filter.Done {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateSession stores a session.
func (m *MockStore) CreateSession(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	s := *session
	m.sessions[s.ID] = &s
	return nil
}

// GetSession retrieves an unexpired session.
func (m *MockStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	s, ok := m.sessions[id]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// DeleteSession removes a session.
func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.sessions, id)
	return nil
}

// DeleteExpiredSessions removes expired sessions.
func (m *MockStore) DeleteExpiredSessions(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	now := time.Now()
	for id, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Ping always succeeds unless Err is set.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
