// Package todo holds the item rules shared by the web UI and the API.
//
// Every operation takes the acting user's ID explicitly. Ownership is
// checked after existence, so a missing ID yields ErrNotFound and another
// user's ID yields ErrForbidden. Bodies are trimmed and must not be empty.
package todo
