// ABOUTME: Account service for registration, credential checks and demo accounts
// ABOUTME: Demo accounts get a random name and four sample items in the caller's locale

package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameRequired is returned when registering with a blank username.
	ErrUsernameRequired = errors.New("username is required")

	// ErrPasswordRequired is returned when registering with an empty password.
	ErrPasswordRequired = errors.New("password is required")
)

// demoAttempts bounds the retries when a generated username is already taken.
const demoAttempts = 10

// DemoItems are the sample bodies seeded into every demo account, in English.
// The last one is created completed.
var DemoItems = []string{
	"Witness something truly majestic",
	"Help a complete stranger",
	"Drive a motorcycle on the Great Wall of China",
	"Sit on the Great Egyptian Pyramids",
}

// Translator renders a message in a locale.
type Translator interface {
	T(locale, msg string) string
}

// Store is the persistence the account service needs.
type Store interface {
	store.UserStore
	CreateItem(ctx context.Context, item *store.Item) error
	ToggleItem(ctx context.Context, id int64) (*store.Item, error)
}

// Demo is a freshly generated demo account with its plaintext password.
type Demo struct {
	User     *store.User
	Password string
}

// Service manages user accounts.
type Service struct {
	store  Store
	tr     Translator
	logger *slog.Logger
}

// New creates an account service.
func New(s Store, tr Translator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		tr:     tr,
		logger: logger.With("component", "account"),
	}
}

// Register creates a user with the given credentials.
// Returns store.ErrUsernameExists if the name is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username and password and returns the user.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_ = auth.CheckPassword("", password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.Debug("password mismatch", "username", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateDemo registers a throwaway account with a random name and password
// and seeds it with DemoItems translated into locale.
func (s *Service) CreateDemo(ctx context.Context, locale string) (*Demo, error) {
	password, err := randomWord()
	if err != nil {
		return nil, err
	}

	var user *store.User
	for attempt := 0; attempt < demoAttempts; attempt++ {
		username, err := randomUsername()
		if err != nil {
			return nil, err
		}
		user, err = s.Register(ctx, username, password)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrUsernameExists) {
			return nil, err
		}
		user = nil
	}
	if user == nil {
		return nil, fmt.Errorf("no free demo username after %d attempts", demoAttempts)
	}

	for i, body := range DemoItems {
		if s.tr != nil {
			body = s.tr.T(locale, body)
		}
		item := &store.Item{Body: body, AuthorID: user.ID}
		if err := s.store.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("seeding demo item: %w", err)
		}
		if i == len(DemoItems)-1 {
			if _, err := s.store.ToggleItem(ctx, item.ID); err != nil {
				return nil, fmt.Errorf("completing demo item: %w", err)
			}
		}
	}

	s.logger.Info("demo account created", "username", user.Username)
	return &Demo{User: user, Password: password}, nil
}

var (
	adjectives = []string{
		"amber", "brave", "calm", "dusty", "eager", "fuzzy", "gentle", "happy",
		"icy", "jolly", "keen", "lucky", "misty", "noble", "proud", "quiet",
		"rapid", "shy", "tidy", "vivid", "witty", "young", "zesty", "bold",
	}
	nouns = []string{
		"otter", "falcon", "maple", "river", "comet", "panda", "willow", "harbor",
		"lantern", "meadow", "pebble", "tiger", "violet", "walrus", "cedar", "ember",
		"fox", "heron", "koala", "lotus", "orca", "quail", "robin", "sparrow",
	}
)

func randomUsername() (string, error) {
	adj, err := pick(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := pick(nouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("generating username: %w", err)
	}
	return fmt.Sprintf("%s_%s%d", adj, noun, n.Int64()), nil
}

func randomWord() (string, error) {
	return pick(nouns)
}

func pick(words []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", fmt.Errorf("picking random word: %w", err)
	}
	return words[n.Int64()], nil
}
