// ABOUTME: CORS middleware for the API
// ABOUTME: Echoes allowed origins and answers preflight requests with 204

package api

import (
	"net/http"
)

type cors struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

func newCORS(origins []string) *cors {
	c := &cors{allowedOrigins: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			c.allowAll = true
			continue
		}
		c.allowedOrigins[origin] = true
	}
	return c
}

// Handler returns the CORS middleware handler.
func (c *cors) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if c.allowAll || c.allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Location, WWW-Authenticate")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		// Preflight
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
