// ABOUTME: HTTP handlers for the API endpoints
// ABOUTME: Token grant, user document, item collections and item operations

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/metrics"
	"github.com/2389/todoism/internal/todo"
)

type itemRequest struct {
	Body *string `json:"body"`
}

// handleIndex handles GET /api/v1/.
func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.indexDocument(r))
}

// handleToken handles POST /api/v1/oauth/token with the password grant.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "")
		return
	}

	if !strings.EqualFold(r.PostFormValue("grant_type"), "password") {
		WriteError(w, http.StatusBadRequest, msgBadGrant)
		return
	}

	user, err := a.accounts.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		metrics.RecordLogin("api", false)
		if errors.Is(err, account.ErrInvalidCredentials) {
			WriteError(w, http.StatusBadRequest, msgBadCredentials)
			return
		}
		a.logger.Error("failed to authenticate", "error", err)
		WriteError(w, http.StatusInternalServerError, "")
		return
	}

	token, err := a.tokens.Generate(user.ID, a.cfg.TokenTTL)
	if err != nil {
		a.logger.Error("failed to issue token", "error", err)
		WriteError(w, http.StatusInternalServerError, "")
		return
	}
	metrics.RecordLogin("api", true)
	a.logger.Info("token issued", "username", user.Username)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(a.cfg.TokenTTL.Seconds()),
	})
}

// handleUser handles GET /api/v1/user.
func (a *API) handleUser(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	counts, err := a.items.Counts(r.Context(), user.UserID)
	if err != nil {
		a.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.userDocument(r, user, counts))
}

// listItems returns the handler for one filtered collection.
func (a *API) listItems(filter todo.Filter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.MustFromContext(r.Context())
		page, perPage, explicit := a.pagination(r)

		p, err := a.items.List(r.Context(), user.UserID, filter, page, perPage)
		if err != nil {
			a.writeItemError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.collectionDocument(r, filter, p, user, explicit))
	}
}

// pagination reads ?page= and ?per_page=. Missing or malformed values fall
// back to page 1 and the configured page size.
func (a *API) pagination(r *http.Request) (page, perPage int, explicitPerPage bool) {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage = a.cfg.PerPage
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && n > 0 {
		perPage = min(n, MaxPerPage)
		explicitPerPage = true
	}
	return page, perPage, explicitPerPage
}

// handleCreateItem handles POST /api/v1/user/items.
func (a *API) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	body, ok := readItemBody(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, msgEmptyBody)
		return
	}

	item, err := a.items.Create(r.Context(), user.UserID, body)
	if err != nil {
		a.writeItemError(w, err)
		return
	}

	w.Header().Set("Location", a.itemURL(r, item.ID))
	writeJSON(w, http.StatusCreated, a.itemDocument(r, item, user))
}

// handleGetItem handles GET /api/v1/user/items/{id}.
func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	item, err := a.items.Get(r.Context(), user.UserID, itemID(r))
	if err != nil {
		a.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.itemDocument(r, item, user))
}

// handleEditItem handles PUT /api/v1/user/items/{id}.
func (a *API) handleEditItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	// An unreadable body is validated after the ownership gate, like an empty one.
	body, _ := readItemBody(r)
	if _, err := a.items.Edit(r.Context(), user.UserID, itemID(r), body); err != nil {
		a.writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleItem handles PATCH /api/v1/user/items/{id}.
func (a *API) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if _, err := a.items.Toggle(r.Context(), user.UserID, itemID(r)); err != nil {
		a.writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteItem handles DELETE /api/v1/user/items/{id}.
func (a *API) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if err := a.items.Delete(r.Context(), user.UserID, itemID(r)); err != nil {
		a.writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearCompleted handles DELETE /api/v1/user/items/completed.
func (a *API) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if _, err := a.items.ClearCompleted(r.Context(), user.UserID); err != nil {
		a.writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// itemID returns the {id} route variable. The route pattern guarantees digits;
// an overflowing id parses as 0, which never exists.
func itemID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// readItemBody decodes {"body": ...}. ok is false for malformed JSON or a
// missing key.
func readItemBody(r *http.Request) (string, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == nil {
		return "", false
	}
	return *req.Body, true
}
