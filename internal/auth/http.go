// ABOUTME: HTTP middleware for bearer token authentication on API endpoints
// ABOUTME: Extracts the JWT from the Authorization header and adds the user to context

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/2389/todoism/internal/store"
)

// ErrMissingToken is passed to the failure handler when no bearer token was sent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrUserLookup wraps store failures while resolving a valid token's subject.
// It is a server error, not an authentication failure.
var ErrUserLookup = errors.New("looking up token subject")

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// FailureHandler writes the response for a request that failed authentication.
// err is ErrMissingToken, or wraps ErrInvalidToken, ErrExpiredToken or ErrUserLookup.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPAuthMiddleware creates an HTTP middleware that extracts and validates bearer tokens.
// A valid token whose subject no longer exists is treated as invalid.
func HTTPAuthMiddleware(users UserLookup, verifier TokenVerifier, onFailure FailureHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				onFailure(w, r, ErrMissingToken)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				onFailure(w, r, err)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrUserNotFound) {
					onFailure(w, r, ErrInvalidToken)
					return
				}
				onFailure(w, r, fmt.Errorf("%w: %w", ErrUserLookup, err))
				return
			}

			authCtx := &AuthContext{
				UserID:   user.ID,
				Username: user.Username,
				Locale:   user.Locale,
				Method:   MethodToken,
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}
