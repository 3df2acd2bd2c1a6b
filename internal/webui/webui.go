// ABOUTME: Session-authenticated web UI for todoism
// ABOUTME: Provides login, session management, CSRF protection, locale switching and item routes

package webui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "todoism_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "todoism_csrf"

	// LocaleCookieName holds the visitor's chosen locale
	LocaleCookieName = "locale"

	// LocaleCookieMaxAge is how long a locale choice is remembered
	LocaleCookieMaxAge = 30 * 24 * time.Hour

	// DefaultSessionDuration is used when Config.SessionDuration is zero
	DefaultSessionDuration = 7 * 24 * time.Hour

	// maxBodyBytes caps request bodies on every web route
	maxBodyBytes = 1 << 20
)

type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds web UI configuration
type Config struct {
	SessionDuration time.Duration
}

// Store is the persistence the web UI needs beyond the item and account services.
type Store interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	UpdateUserLocale(ctx context.Context, id, locale string) error
	store.SessionStore
}

// UI handles web routes and session authentication
type UI struct {
	store    Store
	items    *todo.Service
	accounts *account.Service
	tr       *i18n.Translator
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	intro    map[string]string // rendered intro page per locale
}

// New creates a new web UI handler. A nil logger uses slog.Default.
func New(s Store, items *todo.Service, accounts *account.Service, tr *i18n.Translator, cfg Config, logger *slog.Logger) (*UI, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}

	u := &UI{
		store:    s,
		items:    items,
		accounts: accounts,
		tr:       tr,
		config:   cfg,
		logger:   logger.With("component", "webui"),
		mux:      http.NewServeMux(),
	}

	intro, err := renderIntroPages(tr.Supported())
	if err != nil {
		return nil, err
	}
	u.intro = intro

	u.registerRoutes()
	return u, nil
}

func (u *UI) registerRoutes() {
	// Public routes
	u.mux.HandleFunc("GET /{$}", u.handleIndex)
	u.mux.HandleFunc("GET /intro", u.handleIntro)
	u.mux.HandleFunc("GET /login", u.handleLoginPage)
	u.mux.HandleFunc("POST /login", u.handleLogin)
	u.mux.HandleFunc("GET /register", u.handleRegister)
	u.mux.HandleFunc("GET /set-locale/{locale}", u.handleSetLocale)

	// Protected routes
	u.mux.HandleFunc("GET /logout", u.requireAuth(u.handleLogout))
	u.mux.HandleFunc("GET /app", u.requireAuth(u.handleApp))
	u.mux.HandleFunc("POST /items/new", u.requireAuth(u.handleNewItem))
	u.mux.HandleFunc("PUT /item/{id}/edit", u.requireAuth(u.handleEditItem))
	u.mux.HandleFunc("PATCH /item/{id}/toggle", u.requireAuth(u.handleToggleItem))
	u.mux.HandleFunc("DELETE /item/{id}/delete", u.requireAuth(u.handleDeleteItem))
	u.mux.HandleFunc("DELETE /item/clear", u.requireAuth(u.handleClearItems))
}

// ServeHTTP resolves the session, locale and CSRF token, then dispatches.
// Unmatched requests get a translated 404/405 page or JSON envelope.
func (u *UI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	r = u.withSession(r)
	r = u.withLocale(r)
	r, _ = u.ensureCSRFToken(w, r)

	if isMutating(r.Method) && r.URL.Path != "/login" && !u.validateCSRF(r) {
		u.logger.Warn("rejected request with invalid CSRF token", "method", r.Method, "path", r.URL.Path)
		u.writeMessage(w, r, http.StatusBadRequest, "The CSRF token is missing or invalid.")
		return
	}

	// Handler does not populate path values, so matched requests go back
	// through the mux itself.
	h, pattern := u.mux.Handler(r)
	if pattern == "" {
		capture := &statusCapture{header: make(http.Header), status: http.StatusNotFound}
		h.ServeHTTP(capture, r)
		if allow := capture.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		u.RenderError(w, r, capture.status)
		return
	}
	u.mux.ServeHTTP(w, r)
}

// statusCapture records the status of the mux's built-in 404/405 handlers
// so the UI can replace their plain-text body.
type statusCapture struct {
	header http.Header
	status int
}

func (c *statusCapture) Header() http.Header         { return c.header }
func (c *statusCapture) Write(b []byte) (int, error) { return len(b), nil }
func (c *statusCapture) WriteHeader(code int)        { c.status = code }

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requireAuth wraps a handler to require a signed-in user.
// Browsers navigating with GET are redirected to the login page; API-style
// callers get a 401 JSON message.
func (u *UI) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) != nil {
			next(w, r)
			return
		}
		if r.Method != http.MethodGet || wantsJSON(r) {
			u.writeMessage(w, r, http.StatusUnauthorized, "Please log in to access this page.")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// withSession attaches the session user to the request context, if any.
func (u *UI) withSession(r *http.Request) *http.Request {
	user, err := u.getUserFromSession(r)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) && !errors.Is(err, store.ErrSessionNotFound) && !errors.Is(err, store.ErrUserNotFound) {
			u.logger.Error("failed to resolve session", "error", err)
		}
		return r
	}

	authCtx := &auth.AuthContext{
		UserID:   user.ID,
		Username: user.Username,
		Locale:   user.Locale,
		Method:   auth.MethodSession,
	}
	return r.WithContext(auth.WithAuth(r.Context(), authCtx))
}

// getUserFromSession retrieves the authenticated user from the session cookie
func (u *UI) getUserFromSession(r *http.Request) (*store.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	session, err := u.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	return u.store.GetUser(r.Context(), session.UserID)
}

// withLocale negotiates the request locale and stores it in the context.
func (u *UI) withLocale(r *http.Request) *http.Request {
	var preference, cookieLocale string
	if a := auth.FromContext(r.Context()); a != nil {
		preference = a.Locale
	}
	if c, err := r.Cookie(LocaleCookieName); err == nil {
		cookieLocale = c.Value
	}
	locale := u.tr.Negotiate(preference, cookieLocale, r.Header.Get("Accept-Language"))
	return r.WithContext(i18n.WithLocale(r.Context(), locale))
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (u *UI) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		u.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from the header or form against the cookie
func (u *UI) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.Header.Get("X-CSRF-Token")
	if token == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		token = r.FormValue("csrf_token")
	}

	return token != "" && token == cookie.Value
}

// createSession creates a new session for a user and sets the cookie
func (u *UI) createSession(w http.ResponseWriter, r *http.Request, userID string) error {
	sessionID, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	now := time.Now()
	session := &store.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(u.config.SessionDuration),
	}

	if err := u.store.CreateSession(r.Context(), session); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// clearCookie expires a cookie on the client.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// generateSecureToken generates a cryptographically secure random hex token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
