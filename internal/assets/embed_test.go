package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".mjs", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".map", "application/json"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestHashesCoverEmbeddedFiles(t *testing.T) {
	for _, name := range []string{"css/app.css", "js/app.js"} {
		h, ok := Hashes[name]
		if !ok {
			t.Fatalf("missing fingerprint for %s", name)
		}
		if len(h) != hashLength {
			t.Errorf("fingerprint for %s = %q, want %d chars", name, h, hashLength)
		}
	}
}

func TestURL(t *testing.T) {
	orig := Hashes
	defer func() { Hashes = orig }()
	Hashes = map[string]string{"css/app.css": "abcdef012345"}

	if got := URL("css/app.css"); got != "/static/css/app.css?v=abcdef012345" {
		t.Errorf("URL() = %q", got)
	}
	if got := URL("/css/app.css"); got != "/static/css/app.css?v=abcdef012345" {
		t.Errorf("URL() with leading slash = %q", got)
	}
	if got := URL("img/logo.png"); got != "/static/img/logo.png" {
		t.Errorf("URL() for unknown asset = %q", got)
	}
}

func TestHandler_CacheHeaders(t *testing.T) {
	h := Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, URL("css/app.css"), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Errorf("versioned Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/app.js?v=stale", nil))
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("stale Cache-Control = %q, want no-cache", got)
	}
	if !strings.Contains(rec.Body.String(), "X-CSRF-Token") {
		t.Error("app.js body not served")
	}
}

func TestHandler_NoDirectoryListing(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_MissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/nope.css", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
