// ABOUTME: Package server wires the store, services and HTTP surfaces together
// ABOUTME: Owns listeners, middleware and graceful shutdown

// Package server assembles a running todoism instance.
//
// New opens the SQLite store and builds the item and account services, the
// web UI, the API and the auxiliary endpoints (health, metrics and static
// assets) behind a single http.ServeMux:
//
//	/health, /health/ready   liveness and readiness
//	/metrics                 Prometheus exposition (path configurable)
//	/static/                 fingerprinted embedded assets
//	/api/                    JSON API (internal/api)
//	/                        session web UI (internal/webui)
//
// Every request passes through request-id, access-log, panic-recovery and
// metrics middleware. Run listens on TCP, or on a tsnet node when Tailscale
// is enabled, and shuts down gracefully when its context is canceled.
package server
