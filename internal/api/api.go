// ABOUTME: API router setup with gorilla/mux, token auth and CORS
// ABOUTME: Routes /api/v1 requests to handlers and renders JSON error envelopes

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/todo"
)

const (
	// Prefix is the mount point of the API.
	Prefix = "/api/v1"

	// MaxPerPage caps the per_page query parameter.
	MaxPerPage = 100

	// DefaultTokenTTL is used when Config.TokenTTL is zero.
	DefaultTokenTTL = time.Hour

	maxBodyBytes = 1 << 20
)

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	auth.TokenVerifier
	auth.TokenGenerator
}

// Config holds the API settings taken from the app and auth config sections.
type Config struct {
	BaseURL     string // e.g. "https://todo.example.com"; empty uses the request host
	PerPage     int
	TokenTTL    time.Duration
	CORSOrigins []string
}

// API is the http.Handler for everything under Prefix.
type API struct {
	router   *mux.Router
	handler  http.Handler
	users    auth.UserLookup
	items    *todo.Service
	accounts *account.Service
	tokens   TokenIssuer
	cfg      Config
	logger   *slog.Logger
}

// New creates the API handler.
func New(users auth.UserLookup, items *todo.Service, accounts *account.Service, tokens TokenIssuer, cfg Config, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PerPage < 1 {
		cfg.PerPage = todo.DefaultPerPage
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	a := &API{
		users:    users,
		items:    items,
		accounts: accounts,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger.With("component", "api"),
	}
	a.router = a.routes()
	a.handler = newCORS(cfg.CORSOrigins).Handler(a.router)
	return a
}

func (a *API) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "")
	})

	requireToken := auth.HTTPAuthMiddleware(a.users, a.tokens, a.writeAuthFailure)
	protect := func(h http.HandlerFunc) http.Handler { return requireToken(h) }

	r.HandleFunc(Prefix, a.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(Prefix+"/", a.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(Prefix+"/oauth/token", a.handleToken).Methods(http.MethodPost)

	r.Handle(Prefix+"/user", protect(a.handleUser)).Methods(http.MethodGet)
	r.Handle(Prefix+"/user/items", protect(a.listItems(todo.FilterAll))).Methods(http.MethodGet)
	r.Handle(Prefix+"/user/items", protect(a.handleCreateItem)).Methods(http.MethodPost)
	r.Handle(Prefix+"/user/items/active", protect(a.listItems(todo.FilterActive))).Methods(http.MethodGet)
	r.Handle(Prefix+"/user/items/completed", protect(a.listItems(todo.FilterCompleted))).Methods(http.MethodGet)
	r.Handle(Prefix+"/user/items/completed", protect(a.handleClearCompleted)).Methods(http.MethodDelete)

	item := Prefix + "/user/items/{id:[0-9]+}"
	r.Handle(item, protect(a.handleGetItem)).Methods(http.MethodGet)
	r.Handle(item, protect(a.handleEditItem)).Methods(http.MethodPut)
	r.Handle(item, protect(a.handleToggleItem)).Methods(http.MethodPatch)
	r.Handle(item, protect(a.handleDeleteItem)).Methods(http.MethodDelete)

	return r
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	a.handler.ServeHTTP(w, r)
}

// baseURL returns the absolute URL of the API root for r.
func (a *API) baseURL(r *http.Request) string {
	if a.cfg.BaseURL != "" {
		return a.cfg.BaseURL + Prefix
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + Prefix
}
