// Package auth provides authentication primitives for todoism.
//
// # Authentication Methods
//
//   - Sessions: the web surface stores a random session ID in a cookie and
//     resolves it through the store. Session handling lives in package webui.
//
//   - Bearer tokens: API clients exchange a username and password for an
//     HS256 JWT whose "sub" claim is the user ID. Secrets shorter than
//     MinSecretLength are rejected.
//
// # Passwords
//
// Passwords are hashed with bcrypt. CheckPassword compares against a fixed
// dummy hash when no stored hash exists, so unknown usernames cost the same
// as wrong passwords.
//
// # Request Identity
//
// Middleware places an AuthContext on the request context:
//
//	ctx = auth.WithAuth(ctx, &auth.AuthContext{UserID: id, Method: auth.MethodToken})
//	caller := auth.FromContext(ctx)
//
// Handlers pass caller.UserID explicitly into the todo service.
package auth
