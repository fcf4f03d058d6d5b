package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the registry root entity, keyed by the 12-digit IIN.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	IIN              string     `db:"iin" json:"iin"`
	LastName         string     `db:"last_name" json:"last_name"`
	FirstName        string     `db:"first_name" json:"first_name"`
	MiddleName       string     `db:"middle_name" json:"middle_name,omitempty"`
	BirthDate        time.Time  `db:"birth_date" json:"birth_date"`
	CitizenshipID    int        `db:"citizenship_id" json:"citizenship_id"`
	NationalityID    int        `db:"nationality_id" json:"nationality_id"`
	AttachedClinicID int        `db:"attached_clinic_id" json:"attached_clinic_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	// Join-table links, loaded alongside the row.
	FinancingSourceIDs  []int `db:"-" json:"financing_source_ids,omitempty"`
	ContextAttributeIDs []int `db:"-" json:"context_attribute_ids,omitempty"`
}

// FullName renders "Last First Middle" with the middle name optional.
func (p *Patient) FullName() string {
	s := p.LastName + " " + p.FirstName
	if p.MiddleName != "" {
		s += " " + p.MiddleName
	}
	return s
}

// ListFilter narrows patient listings. Zero values mean "no constraint".
type ListFilter struct {
	FullName         string
	IIN              string
	AttachedClinicID int
}

type CreateRequest struct {
	IIN                 string    `json:"iin"`
	LastName            string    `json:"last_name"`
	FirstName           string    `json:"first_name"`
	MiddleName          string    `json:"middle_name"`
	BirthDate           time.Time `json:"birth_date"`
	CitizenshipID       int       `json:"citizenship_id"`
	NationalityID       int       `json:"nationality_id"`
	AttachedClinicID    int       `json:"attached_clinic_id"`
	FinancingSourceIDs  []int     `json:"financing_source_ids"`
	ContextAttributeIDs []int     `json:"context_attribute_ids"`
}

type UpdateRequest struct {
	LastName            *string    `json:"last_name"`
	FirstName           *string    `json:"first_name"`
	MiddleName          *string    `json:"middle_name"`
	BirthDate           *time.Time `json:"birth_date"`
	CitizenshipID       *int       `json:"citizenship_id"`
	NationalityID       *int       `json:"nationality_id"`
	AttachedClinicID    *int       `json:"attached_clinic_id"`
	FinancingSourceIDs  []int      `json:"financing_source_ids"`
	ContextAttributeIDs []int      `json:"context_attribute_ids"`
}
