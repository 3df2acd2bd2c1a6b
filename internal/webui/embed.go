// ABOUTME: Embeds HTML templates and markdown pages into the binary using go:embed
// ABOUTME: Provides templateFS and contentFS for loading them at runtime

package webui

import "embed"

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS
