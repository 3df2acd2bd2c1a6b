// ABOUTME: Template rendering functions for the web UI
// ABOUTME: Loads templates from the embedded filesystem with a per-locale translation func

package webui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/2389/todoism/internal/assets"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
)

// Template data types
type localeOption struct {
	Code string
	Name string
}

type pageData struct {
	Title     string
	Locale    string
	Locales   []localeOption
	User      *auth.AuthContext
	CSRFToken string
}

type introData struct {
	pageData
	Body template.HTML
}

type appData struct {
	pageData
	Items  []*store.Item
	Counts todo.Counts
}

type errorData struct {
	pageData
	Code int
	Info string
}

func (u *UI) newPage(r *http.Request, title string) pageData {
	locale := i18n.LocaleFromContext(r.Context())
	locales := make([]localeOption, 0, len(u.tr.Supported()))
	for _, l := range u.tr.Supported() {
		locales = append(locales, localeOption{Code: l, Name: u.tr.DisplayName(l)})
	}
	return pageData{
		Title:     u.tr.T(locale, title),
		Locale:    locale,
		Locales:   locales,
		User:      auth.FromContext(r.Context()),
		CSRFToken: getCSRFToken(r),
	}
}

// templateFuncs returns the helpers available to every template for locale.
func (u *UI) templateFuncs(locale string) template.FuncMap {
	return template.FuncMap{
		"T":     func(msg string) string { return u.tr.T(locale, msg) },
		"asset": assets.URL,
	}
}

func (u *UI) parsePage(locale, page string) *template.Template {
	return template.Must(template.New("base.html").Funcs(u.templateFuncs(locale)).ParseFS(templateFS,
		"templates/base.html",
		"templates/partials/item.html",
		"templates/"+page,
	))
}

// render writes a full page inside the base layout
func (u *UI) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl := u.parsePage(i18n.LocaleFromContext(r.Context()), page)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		u.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderItem renders the single-item partial used by the app page and by
// the new-item endpoint
func (u *UI) renderItem(r *http.Request, item *store.Item) (string, error) {
	locale := i18n.LocaleFromContext(r.Context())
	tmpl := template.Must(template.New("item.html").Funcs(u.templateFuncs(locale)).ParseFS(templateFS,
		"templates/partials/item.html"))

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "item", item); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderError writes an error response for status. JSON-preferring clients
// get a {code, message} envelope; browsers get the error page.
func (u *UI) RenderError(w http.ResponseWriter, r *http.Request, status int) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]any{"code": status, "message": envelopeMessage(status)})
		return
	}

	locale := i18n.LocaleFromContext(r.Context())
	data := errorData{
		pageData: u.newPage(r, http.StatusText(status)),
		Code:     status,
		Info:     u.tr.T(locale, errorInfo(status)),
	}
	u.render(w, r, status, "error.html", data)
}

func errorInfo(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Page Not Found"
	case http.StatusMethodNotAllowed:
		return "Method Not Allowed"
	case http.StatusInternalServerError:
		return "Server Error"
	}
	return http.StatusText(status)
}

// envelopeMessage is the fixed English message for JSON error envelopes.
func envelopeMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "The requested URL was not found on the server."
	case http.StatusMethodNotAllowed:
		return "The method is not allowed for the requested URL."
	case http.StatusInternalServerError:
		return "An internal server error occurred."
	}
	return http.StatusText(status)
}

// renderIntroPages converts the markdown intro for every locale up front.
func renderIntroPages(locales []string) (map[string]string, error) {
	pages := make(map[string]string, len(locales))
	for _, locale := range locales {
		src, err := contentFS.ReadFile("content/intro." + locale + ".md")
		if err != nil {
			return nil, fmt.Errorf("reading intro for %s: %w", locale, err)
		}
		var buf bytes.Buffer
		if err := goldmark.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("converting intro for %s: %w", locale, err)
		}
		pages[locale] = buf.String()
	}
	return pages, nil
}

func (u *UI) introFor(locale string) template.HTML {
	if html, ok := u.intro[locale]; ok {
		return template.HTML(html)
	}
	return template.HTML(u.intro[u.tr.Default()])
}
