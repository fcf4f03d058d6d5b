package nationality

import (
	"time"

	"github.com/medreg/registry/internal/platform/i18n"
)

// Nationality maps to the nationality table.
type Nationality struct {
	ID          int            `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	NameLocales i18n.LocaleMap `db:"name_locales" json:"name_locales,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// View is the localized response shape. When all locales were requested the
// full locale map is attached; otherwise Name carries the resolved display
// value only.
type View struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	NameLocales i18n.LocaleMap `json:"name_locales,omitempty"`
}

func (n *Nationality) view(locale string, includeAllLocales bool) *View {
	if includeAllLocales {
		return &View{ID: n.ID, Name: n.Name, NameLocales: n.NameLocales}
	}
	return &View{ID: n.ID, Name: i18n.Resolve(locale, n.Name, n.NameLocales)}
}

// CreateRequest is the POST body. Lang must be the default language; the
// base name is stored in it and translations go into NameLocales.
type CreateRequest struct {
	Name        string         `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
}

// UpdateRequest is the PATCH body; nil fields are left untouched.
type UpdateRequest struct {
	Name        *string        `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
}
