// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating the caller via context

package auth

import (
	"context"
)

// Method names how a request was authenticated.
type Method string

const (
	MethodSession Method = "session"
	MethodToken   Method = "token"
)

// AuthContext holds the authenticated identity extracted from a request.
// It is populated by the session or bearer middleware and read by handlers.
type AuthContext struct {
	UserID   string
	Username string
	Locale   string // the user's stored locale preference, may be empty
	Method   Method
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present.
func FromContext(ctx context.Context) *AuthContext {
	auth, _ := ctx.Value(authContextKey{}).(*AuthContext)
	return auth
}

// MustFromContext retrieves the AuthContext from the context, panicking if not present.
func MustFromContext(ctx context.Context) *AuthContext {
	auth := FromContext(ctx)
	if auth == nil {
		panic("auth: AuthContext not found in context")
	}
	return auth
}
