// ABOUTME: Package api serves the JSON REST API under /api/v1
// ABOUTME: Token grant, user document and paginated item collections

// Package api implements the bearer-token JSON API.
//
// Clients exchange a username and password for an access token at
// POST /api/v1/oauth/token and send it as "Authorization: Bearer <token>"
// on every other call. Item operations go through todo.Service, so the
// ownership and validation rules are the same as the web UI's.
//
// Every document carries absolute URLs built from the configured base URL,
// or from the request host when none is configured.
package api
