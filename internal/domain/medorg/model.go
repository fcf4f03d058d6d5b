package medorg

import (
	"time"

	"github.com/medreg/registry/internal/platform/i18n"
)

type OrganizationType string

const (
	TypePolyclinic    OrganizationType = "polyclinic"
	TypeHospital      OrganizationType = "hospital"
	TypeMaternityWard OrganizationType = "maternity_ward"
	TypeAmbulatory    OrganizationType = "ambulatory"
)

func (ot OrganizationType) Valid() bool {
	switch ot {
	case TypePolyclinic, TypeHospital, TypeMaternityWard, TypeAmbulatory:
		return true
	}
	return false
}

// Organization maps to the medical_organization table. Both the name and the
// address carry their own locale maps.
type Organization struct {
	ID             int              `db:"id" json:"id"`
	Code           string           `db:"code" json:"code"`
	Name           string           `db:"name" json:"name"`
	NameLocales    i18n.LocaleMap   `db:"name_locales" json:"name_locales,omitempty"`
	Address        string           `db:"address" json:"address"`
	AddressLocales i18n.LocaleMap   `db:"address_locales" json:"address_locales,omitempty"`
	Type           OrganizationType `db:"org_type" json:"org_type"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

type View struct {
	ID             int              `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	NameLocales    i18n.LocaleMap   `json:"name_locales,omitempty"`
	Address        string           `json:"address"`
	AddressLocales i18n.LocaleMap   `json:"address_locales,omitempty"`
	Type           OrganizationType `json:"org_type"`
}

func (o *Organization) view(locale string, includeAllLocales bool) *View {
	if includeAllLocales {
		return &View{
			ID: o.ID, Code: o.Code, Type: o.Type,
			Name: o.Name, NameLocales: o.NameLocales,
			Address: o.Address, AddressLocales: o.AddressLocales,
		}
	}
	return &View{
		ID: o.ID, Code: o.Code, Type: o.Type,
		Name:    i18n.Resolve(locale, o.Name, o.NameLocales),
		Address: i18n.Resolve(locale, o.Address, o.AddressLocales),
	}
}

type CreateRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Lang           string           `json:"lang"`
	NameLocales    i18n.LocaleMap   `json:"name_locales"`
	Address        string           `json:"address"`
	AddressLocales i18n.LocaleMap   `json:"address_locales"`
	Type           OrganizationType `json:"org_type"`
}

type UpdateRequest struct {
	Code           *string           `json:"code"`
	Name           *string           `json:"name"`
	Lang           string            `json:"lang"`
	NameLocales    i18n.LocaleMap    `json:"name_locales"`
	Address        *string           `json:"address"`
	AddressLocales i18n.LocaleMap    `json:"address_locales"`
	Type           *OrganizationType `json:"org_type"`
}
