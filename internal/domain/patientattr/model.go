package patientattr

import (
	"time"

	"github.com/medreg/registry/internal/platform/i18n"
)

// DataType constrains what value kind a context attribute carries on a
// patient record.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeInteger DataType = "integer"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
)

func (dt DataType) Valid() bool {
	switch dt {
	case DataTypeString, DataTypeInteger, DataTypeBoolean, DataTypeDate:
		return true
	}
	return false
}

// Attribute maps to the patient_context_attribute table.
type Attribute struct {
	ID          int            `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	NameLocales i18n.LocaleMap `db:"name_locales" json:"name_locales,omitempty"`
	DataType    DataType       `db:"data_type" json:"data_type"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type View struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	NameLocales i18n.LocaleMap `json:"name_locales,omitempty"`
	DataType    DataType       `json:"data_type"`
}

func (a *Attribute) view(locale string, includeAllLocales bool) *View {
	if includeAllLocales {
		return &View{ID: a.ID, Name: a.Name, NameLocales: a.NameLocales, DataType: a.DataType}
	}
	return &View{ID: a.ID, Name: i18n.Resolve(locale, a.Name, a.NameLocales), DataType: a.DataType}
}

type CreateRequest struct {
	Name        string         `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
	DataType    DataType       `json:"data_type"`
}

type UpdateRequest struct {
	Name        *string        `json:"name"`
	Lang        string         `json:"lang"`
	NameLocales i18n.LocaleMap `json:"name_locales"`
	DataType    *DataType      `json:"data_type"`
}
