// ABOUTME: Package client is a Go client for the todoism JSON API
// ABOUTME: Used by the command-line and terminal UI frontends

// Package client talks to a todoism server over /api/v1.
//
// Responses are read with gjson rather than decoded into the server's
// document types, so the client only depends on the fields it shows.
// Non-2xx responses are returned as *Error carrying the envelope's code and
// message.
package client
