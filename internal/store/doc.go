// Package store provides persistent storage for todoism using SQLite.
//
// # Architecture
//
// The store package splits persistence into small interfaces:
//
//   - UserStore: accounts and their locale preference
//   - ItemStore: todo items, filtering, paging and bulk clearing
//   - SessionStore: browser sessions with expiry
//
// Store embeds all three plus Ping and Close. SQLiteStore implements Store in a
// single struct; MockStore is an in-memory implementation for service tests.
//
// # Data Models
//
//   - User: account with a bcrypt password hash
//   - Item: todo entry owned by one user, with an SQLite-assigned integer ID
//   - Session: browser session keyed by a random token
//
// # Schema
//
// Tables are created on open and columns added by idempotent migrations.
// Timestamps are stored as RFC3339 text in UTC. Deleting a user cascades to
// its items and sessions.
//
// # Ownership
//
// The store does not enforce ownership. ItemFilter.AuthorID scopes list and
// count queries, and the todo service checks the author on single-item access.
package store
