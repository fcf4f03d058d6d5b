// Package i18n implements the catalog localization contract: locale maps
// stored alongside default-language values, Accept-Language negotiation, and
// the display-name fallback chain (requested locale -> default value).
package i18n

import (
	"strings"

	"github.com/medreg/registry/internal/platform/apperr"
)

// LocaleMap holds per-locale overrides for a localized column, stored as a
// jsonb object keyed by locale code.
type LocaleMap map[string]string

// Get returns the value for the given locale and whether it was present.
func (m LocaleMap) Get(locale string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[locale]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Resolver negotiates request locales against the configured language set.
type Resolver struct {
	defaultLocale string
	supported     map[string]bool
}

func NewResolver(defaultLocale string, supported []string) *Resolver {
	set := make(map[string]bool, len(supported)+1)
	set[defaultLocale] = true
	for _, s := range supported {
		set[strings.ToLower(s)] = true
	}
	return &Resolver{defaultLocale: strings.ToLower(defaultLocale), supported: set}
}

// Default returns the configured default locale.
func (r *Resolver) Default() string { return r.defaultLocale }

// IsSupported reports whether the locale is in the configured set.
func (r *Resolver) IsSupported(locale string) bool {
	return r.supported[strings.ToLower(locale)]
}

// ValidateInput rejects locale codes that are not configured. Used for
// request bodies, where an unsupported locale is a client error rather than
// something to fall back from.
func (r *Resolver) ValidateInput(locale string) error {
	if !r.IsSupported(locale) {
		return apperr.Validation("unsupported locale %q", locale)
	}
	return nil
}

// ValidateDefault rejects locale values other than the default language.
// Catalog writes carry their base value in the default language only;
// translations go through the locale maps.
func (r *Resolver) ValidateDefault(locale string) error {
	if locale != "" && strings.ToLower(locale) != r.defaultLocale {
		return apperr.Validation("lang must be the default language %q, got %q", r.defaultLocale, locale)
	}
	return nil
}

// Negotiate picks the response locale from an Accept-Language header value.
// The first supported tag wins; q-weights are honored in header order as
// sent, which is what the upstream system did. Unsupported or empty headers
// fall back to the default locale.
func (r *Resolver) Negotiate(header string) string {
	if header == "" {
		return r.defaultLocale
	}
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		if i := strings.IndexByte(tag, ';'); i >= 0 {
			tag = tag[:i]
		}
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || tag == "*" {
			continue
		}
		// Primary subtag only: "ru-RU" matches "ru".
		if i := strings.IndexByte(tag, '-'); i >= 0 {
			tag = tag[:i]
		}
		if r.supported[tag] {
			return tag
		}
	}
	return r.defaultLocale
}

// Resolve picks the display value for a localized field: the requested
// locale's override when present, otherwise the stored default-language
// value.
func Resolve(locale, defaultValue string, locales LocaleMap) string {
	if v, ok := locales.Get(locale); ok {
		return v
	}
	return defaultValue
}
