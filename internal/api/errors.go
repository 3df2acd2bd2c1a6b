// ABOUTME: JSON error envelope for API responses
// ABOUTME: Maps item service errors and auth failures to status codes

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/todo"
)

// ErrorResponse is the {code, message} envelope every API error uses.
type ErrorResponse struct {
	Code             int    `json:"code"`
	Message          string `json:"message"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

const (
	msgEmptyBody      = "The item body was empty or invalid."
	msgBadGrant       = "The grant type must be password."
	msgBadCredentials = "Either the username or password was invalid."
	msgInvalidToken   = "Either the token was expired or invalid."
)

// DefaultMessage returns the envelope message used when none is given.
func DefaultMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "The requested URL was not found on the server."
	case http.StatusMethodNotAllowed:
		return "The method is not allowed for the requested URL."
	case http.StatusInternalServerError:
		return "An internal server error occurred."
	}
	return http.StatusText(status)
}

// WriteError writes the error envelope. An empty message uses DefaultMessage.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeErrorResponse(w, ErrorResponse{Code: status, Message: message})
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	if resp.Message == "" {
		resp.Message = DefaultMessage(resp.Code)
	}
	writeJSON(w, resp.Code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAuthFailure answers a request whose bearer token was missing or rejected.
// A failed user lookup is a server error and keeps the JSON envelope.
func (a *API) writeAuthFailure(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, auth.ErrUserLookup) {
		a.logger.Error("failed to resolve token user", "error", err)
		WriteError(w, http.StatusInternalServerError, "")
		return
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	resp := ErrorResponse{Code: http.StatusUnauthorized}
	if !errors.Is(err, auth.ErrMissingToken) {
		resp.Error = "invalid_token"
		resp.ErrorDescription = msgInvalidToken
	}
	writeErrorResponse(w, resp)
}

// writeItemError maps an item service error to an envelope.
func (a *API) writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, todo.ErrValidation):
		WriteError(w, http.StatusBadRequest, msgEmptyBody)
	case errors.Is(err, todo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "")
	case errors.Is(err, todo.ErrForbidden):
		WriteError(w, http.StatusForbidden, "")
	default:
		a.logger.Error("item operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "")
	}
}
