// ABOUTME: HTTP handlers for pages, authentication, items and locale switching
// ABOUTME: Handlers translate item service errors into short localized JSON messages

package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/metrics"
	"github.com/2389/todoism/internal/todo"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type itemRequest struct {
	Body *string `json:"body"`
}

func (u *UI) handleIndex(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, http.StatusOK, "index.html", u.newPage(r, "Todoism"))
}

func (u *UI) handleIntro(w http.ResponseWriter, r *http.Request) {
	locale := i18n.LocaleFromContext(r.Context())
	data := introData{
		pageData: u.newPage(r, "Todoism"),
		Body:     u.introFor(locale),
	}
	u.render(w, r, http.StatusOK, "intro.html", data)
}

// handleLoginPage renders the login page
func (u *UI) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	u.render(w, r, http.StatusOK, "login.html", u.newPage(r, "Login on Todoism"))
}

// handleLogin checks credentials sent as JSON or as a form and starts a session
func (u *UI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}

	var req loginRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			u.writeMessage(w, r, http.StatusBadRequest, "Invalid username or password.")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			u.writeMessage(w, r, http.StatusBadRequest, "Invalid username or password.")
			return
		}
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	user, err := u.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordLogin("web", false)
		if errors.Is(err, account.ErrInvalidCredentials) {
			u.writeMessage(w, r, http.StatusBadRequest, "Invalid username or password.")
			return
		}
		u.logger.Error("failed to authenticate", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	// Expired sessions are purged here rather than by a background job.
	if err := u.store.DeleteExpiredSessions(r.Context()); err != nil {
		u.logger.Warn("failed to purge expired sessions", "error", err)
	}

	if err := u.createSession(w, r, user.ID); err != nil {
		u.logger.Error("failed to create session", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	metrics.RecordLogin("web", true)
	u.logger.Info("user logged in", "username", user.Username)
	u.writeMessage(w, r, http.StatusOK, "Login success.")
}

// handleLogout ends the session and clears the session and CSRF cookies
func (u *UI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := u.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			u.logger.Warn("failed to delete session", "error", err)
		}
	}

	clearCookie(w, SessionCookieName)
	clearCookie(w, CSRFCookieName)

	u.writeMessage(w, r, http.StatusOK, "Logout success.")
}

// handleRegister creates a demo account with sample items
func (u *UI) handleRegister(w http.ResponseWriter, r *http.Request) {
	locale := i18n.LocaleFromContext(r.Context())
	demo, err := u.accounts.CreateDemo(r.Context(), locale)
	if err != nil {
		u.logger.Error("failed to create demo account", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username": demo.User.Username,
		"password": demo.Password,
		"message":  u.tr.T(locale, "Generate success."),
	})
}

// handleApp renders the signed-in user's items and counts
func (u *UI) handleApp(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID

	items, err := u.items.All(r.Context(), owner)
	if err != nil {
		u.logger.Error("failed to list items", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}
	counts, err := u.items.Counts(r.Context(), owner)
	if err != nil {
		u.logger.Error("failed to count items", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	u.render(w, r, http.StatusOK, "app.html", appData{
		pageData: u.newPage(r, "Todoism"),
		Items:    items,
		Counts:   counts,
	})
}

func (u *UI) handleNewItem(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID

	body, ok := readItemBody(r)
	if !ok {
		u.writeMessage(w, r, http.StatusBadRequest, "Invalid item body.")
		return
	}

	item, err := u.items.Create(r.Context(), owner, body)
	if err != nil {
		u.writeItemError(w, r, err)
		return
	}

	html, err := u.renderItem(r, item)
	if err != nil {
		u.logger.Error("failed to render item", "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"html": html, "message": "+1"})
}

func (u *UI) handleEditItem(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID
	id, ok := parseItemID(r)
	if !ok {
		u.writeMessage(w, r, http.StatusNotFound, "Item not found.")
		return
	}

	// An unreadable body is validated after the ownership gate, like an empty one.
	body, _ := readItemBody(r)
	if _, err := u.items.Edit(r.Context(), owner, id, body); err != nil {
		u.writeItemError(w, r, err)
		return
	}
	u.writeMessage(w, r, http.StatusOK, "Item updated.")
}

func (u *UI) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID
	id, ok := parseItemID(r)
	if !ok {
		u.writeMessage(w, r, http.StatusNotFound, "Item not found.")
		return
	}

	if _, err := u.items.Toggle(r.Context(), owner, id); err != nil {
		u.writeItemError(w, r, err)
		return
	}
	u.writeMessage(w, r, http.StatusOK, "Item toggled.")
}

func (u *UI) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID
	id, ok := parseItemID(r)
	if !ok {
		u.writeMessage(w, r, http.StatusNotFound, "Item not found.")
		return
	}

	if err := u.items.Delete(r.Context(), owner, id); err != nil {
		u.writeItemError(w, r, err)
		return
	}
	u.writeMessage(w, r, http.StatusOK, "Item deleted.")
}

func (u *UI) handleClearItems(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustFromContext(r.Context()).UserID

	if _, err := u.items.ClearCompleted(r.Context(), owner); err != nil {
		u.writeItemError(w, r, err)
		return
	}
	u.writeMessage(w, r, http.StatusOK, "All clear!")
}

// handleSetLocale remembers a locale in a cookie and, when signed in, on the user
func (u *UI) handleSetLocale(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")
	if !u.tr.IsSupported(locale) {
		u.writeMessage(w, r, http.StatusNotFound, "Invalid locale.")
		return
	}

	if a := auth.FromContext(r.Context()); a != nil {
		if err := u.store.UpdateUserLocale(r.Context(), a.UserID, locale); err != nil {
			u.logger.Error("failed to save locale", "user_id", a.UserID, "error", err)
			u.RenderError(w, r, http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     LocaleCookieName,
		Value:    locale,
		Path:     "/",
		MaxAge:   int(LocaleCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	u.writeMessage(w, r, http.StatusOK, "Setting updated.")
}

// writeItemError maps item service errors to web responses
func (u *UI) writeItemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, todo.ErrValidation):
		u.writeMessage(w, r, http.StatusBadRequest, "Invalid item body.")
	case errors.Is(err, todo.ErrNotFound):
		u.writeMessage(w, r, http.StatusNotFound, "Item not found.")
	case errors.Is(err, todo.ErrForbidden):
		u.writeMessage(w, r, http.StatusForbidden, "Permission denied.")
	default:
		u.logger.Error("item operation failed", "path", r.URL.Path, "error", err)
		u.RenderError(w, r, http.StatusInternalServerError)
	}
}

// readItemBody decodes {"body": "..."}; ok is false for malformed JSON or a missing key.
func readItemBody(r *http.Request) (string, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == nil {
		return "", false
	}
	return *req.Body, true
}

func parseItemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
