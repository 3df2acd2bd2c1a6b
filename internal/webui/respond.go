// ABOUTME: JSON response helpers for the web UI
// ABOUTME: Messages are translated into the request locale before writing

package webui

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2389/todoism/internal/i18n"
)

// writeMessage writes {"message": msg} translated into the request locale.
func (u *UI) writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	locale := i18n.LocaleFromContext(r.Context())
	writeJSON(w, status, map[string]string{"message": u.tr.T(locale, msg)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// wantsJSON reports whether the client accepts JSON but not HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
