package diagnosis

import (
	"time"

	"github.com/medreg/registry/internal/platform/i18n"
)

// Diagnosis maps to the diagnosis table, one row per ICD code.
type Diagnosis struct {
	ID          int            `db:"id" json:"id"`
	Code        string         `db:"code" json:"code"`
	Name        string         `db:"name" json:"name"`
	NameLocales i18n.LocaleMap `db:"name_locales" json:"name_locales,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type View struct {
	ID          int            `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	NameLocales i18n.LocaleMap `json:"name_locales,omitempty"`
}

func (d *Diagnosis) view(locale string, includeAllLocales bool) *View {
	if includeAllLocales {
		return &View{ID: d.ID, Code: d.Code, Name: d.Name, NameLocales: d.NameLocales}
	}
	return &View{ID: d.ID, Code: d.Code, Name: i18n.Resolve(locale, d.Name, d.NameLocales)}
}

type CreateRequest struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
}

type UpdateRequest struct {
	Code        *string        `json:"code"`
	Name        *string        `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
}
