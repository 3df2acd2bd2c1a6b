// ABOUTME: Store interfaces and data types for todoism persistence
// ABOUTME: Defines User, Item, Session and the interfaces the services depend on

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested item does not exist
var ErrNotFound = errors.New("not found")

// ErrUserNotFound is returned when a user doesn't exist.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrUsernameExists is returned when trying to create a user with an existing username.
var ErrUsernameExists = errors.New("username already exists")

// User is an account that owns items.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Locale       string // preferred locale, empty when unset
	CreatedAt    time.Time
}

// Item is a single todo entry owned by exactly one user.
type Item struct {
	ID        int64
	Body      string
	Done      bool
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is an authenticated browser session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ItemFilter narrows ListItems and CountItems to one author.
// A nil Done matches both states. Limit <= 0 means no limit.
type ItemFilter struct {
	AuthorID string
	Done     *bool
	Limit    int
	Offset   int
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUserLocale(ctx context.Context, id, locale string) error
	CountUsers(ctx context.Context) (int, error)
}

// ItemStore persists todo items.
type ItemStore interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	UpdateItemBody(ctx context.Context, id int64, body string) (*Item, error)
	ToggleItem(ctx context.Context, id int64) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
	DeleteCompletedItems(ctx context.Context, authorID string) (int64, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error)
	CountItems(ctx context.Context, filter ItemFilter) (int, error)
}

// SessionStore persists browser sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) error
}

// Store combines every persistence interface used by the server.
type Store interface {
	UserStore
	ItemStore
	SessionStore

	Ping(ctx context.Context) error
	Close() error
}

// BoolPtr returns a pointer to b, for building ItemFilter values.
func BoolPtr(b bool) *bool {
	return &b
}
