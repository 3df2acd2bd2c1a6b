// ABOUTME: Message catalogs and locale negotiation for en_US and zh_Hans_CN
// ABOUTME: Catalogs are TOML files embedded at build time and keyed by the English text

package i18n

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// DefaultLocale is used when nothing better can be negotiated.
const DefaultLocale = "en_US"

type catalog struct {
	Meta struct {
		Name string `toml:"name"`
	} `toml:"meta"`
	Messages map[string]string `toml:"messages"`
}

// Translator looks up translated messages by locale.
type Translator struct {
	defaultLocale string
	locales       []string
	catalogs      map[string]*catalog
	matcher       language.Matcher
}

// New loads the embedded catalogs. defaultLocale must be one of them;
// an empty value selects DefaultLocale.
func New(defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	t := &Translator{
		defaultLocale: defaultLocale,
		catalogs:      make(map[string]*catalog),
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".toml")
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", name, err)
		}
		var c catalog
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", name, err)
		}
		t.catalogs[name] = &c
		t.locales = append(t.locales, name)
	}

	if _, ok := t.catalogs[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}

	// The default goes first so the matcher falls back to it.
	sort.Slice(t.locales, func(i, j int) bool {
		if t.locales[i] == defaultLocale || t.locales[j] == defaultLocale {
			return t.locales[i] == defaultLocale
		}
		return t.locales[i] < t.locales[j]
	})

	tags := make([]language.Tag, 0, len(t.locales))
	for _, l := range t.locales {
		tag, err := language.Parse(strings.ReplaceAll(l, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", l, err)
		}
		tags = append(tags, tag)
	}
	t.matcher = language.NewMatcher(tags)

	return t, nil
}

// T translates msg into locale. Unknown locales and missing entries return msg.
func (t *Translator) T(locale, msg string) string {
	c, ok := t.catalogs[locale]
	if !ok {
		return msg
	}
	if translated, ok := c.Messages[msg]; ok && translated != "" {
		return translated
	}
	return msg
}

// Supported returns the available locales, default first.
func (t *Translator) Supported() []string {
	out := make([]string, len(t.locales))
	copy(out, t.locales)
	return out
}

// IsSupported reports whether locale has a catalog.
func (t *Translator) IsSupported(locale string) bool {
	_, ok := t.catalogs[locale]
	return ok
}

// DisplayName returns the native name of locale, e.g. "简体中文".
func (t *Translator) DisplayName(locale string) string {
	if c, ok := t.catalogs[locale]; ok && c.Meta.Name != "" {
		return c.Meta.Name
	}
	return locale
}

// Default returns the fallback locale.
func (t *Translator) Default() string {
	return t.defaultLocale
}

// Negotiate picks the locale for a request: the user's stored preference,
// then the locale cookie, then Accept-Language, then the default.
func (t *Translator) Negotiate(preference, cookie, acceptLanguage string) string {
	if t.IsSupported(preference) {
		return preference
	}
	if t.IsSupported(cookie) {
		return cookie
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := t.matcher.Match(tags...)
			if conf != language.No {
				return t.locales[idx]
			}
		}
	}
	return t.defaultLocale
}

type localeKey struct{}

// WithLocale attaches the negotiated locale to ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored by WithLocale, or DefaultLocale.
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLocale
}
