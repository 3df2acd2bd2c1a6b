// Package config handles configuration loading for todoism.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. Omitted fields take defaults and the result is validated.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TODOISM_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/todoism/config.yaml
//  3. ~/.config/todoism/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TODOISM_JWT_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Example
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	database:
//	  path: "~/.local/share/todoism/todoism.db"
//
//	auth:
//	  jwt_secret: "${TODOISM_JWT_SECRET}"   # at least 32 bytes
//	  token_ttl: "1h"
//	  session_duration: "168h"
//
//	app:
//	  items_per_page: 20
//	  default_locale: "en_US"
//	  base_url: "https://todo.example.com"
//
//	api:
//	  cors_origins: ["*"]
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text or json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
//	tailscale:
//	  enabled: false
//	  hostname: "todoism"
//	  auth_key: "${TS_AUTHKEY}"
//	  ephemeral: false
//	  https: true
//	  funnel: false
//
// Duration values use Go's time.ParseDuration syntax.
package config
