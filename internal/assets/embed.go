// Package assets serves the stylesheet and script embedded via go:embed.
// Each file is fingerprinted at startup so templates can emit versioned URLs
// that are safe to cache forever.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// Prefix is the URL path the file server is mounted under.
const Prefix = "/static/"

// hashLength is the number of hex characters kept from each file's digest.
const hashLength = 12

// Hashes maps asset paths (e.g. "css/app.css") to their content fingerprints.
// NOTE: Exported and mutable for testability. Not safe for concurrent mutation;
// tests that modify this must not use t.Parallel().
var Hashes map[string]string

func init() {
	// Register MIME types that may not be in the default database.
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".map", "application/json")

	Hashes = make(map[string]string)
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		Hashes[strings.TrimPrefix(p, "static/")] = hex.EncodeToString(sum[:])[:hashLength]
		return nil
	})
	if err != nil {
		slog.Error("failed to fingerprint static assets", "error", err)
	}
}

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the Go standard library's MIME type database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".woff2":
		return "font/woff2"
	case ".svg":
		return "image/svg+xml"
	case ".map":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// URL returns the versioned URL for an asset, e.g. "/static/css/app.css?v=1a2b3c4d5e6f".
// Unknown assets get an unversioned URL.
func URL(name string) string {
	name = strings.TrimPrefix(name, "/")
	if h, ok := Hashes[name]; ok {
		return Prefix + name + "?v=" + h
	}
	return Prefix + name
}

// versioned reports whether the request carries the current fingerprint of
// the requested file.
func versioned(r *http.Request) bool {
	v := r.URL.Query().Get("v")
	if v == "" {
		return false
	}
	return Hashes[strings.TrimPrefix(r.URL.Path, "/")] == v
}

// FileServer returns an http.Handler that serves embedded assets from static/.
// Requests with a current fingerprint get immutable cache headers; others get no-cache.
// The handler expects paths relative to the static root (strip /static/ before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Directory listings are not part of the public surface.
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		ext := strings.ToLower(path.Ext(r.URL.Path))
		if ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}

		if versioned(r) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// Handler mounts FileServer under Prefix.
func Handler() http.Handler {
	return http.StripPrefix(strings.TrimSuffix(Prefix, "/"), FileServer())
}
