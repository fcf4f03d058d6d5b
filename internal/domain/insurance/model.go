package insurance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy maps to the patient_insurance table. One row per policy; the policy
// number is unique across all patients.
type Policy struct {
	ID                int             `db:"id" json:"id"`
	PatientID         uuid.UUID       `db:"patient_id" json:"patient_id"`
	FinancingSourceID int             `db:"financing_source_id" json:"financing_source_id"`
	PolicyNumber      string          `db:"policy_number" json:"policy_number"`
	Coverage          decimal.Decimal `db:"coverage" json:"coverage"`
	ValidFrom         time.Time       `db:"valid_from" json:"valid_from"`
	ValidTo           time.Time       `db:"valid_to" json:"valid_to"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the policy covers the given moment.
func (p *Policy) ActiveAt(t time.Time) bool {
	return !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}

type CreateRequest struct {
	PatientID         uuid.UUID       `json:"patient_id"`
	FinancingSourceID int             `json:"financing_source_id"`
	PolicyNumber      string          `json:"policy_number"`
	Coverage          decimal.Decimal `json:"coverage"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidTo           time.Time       `json:"valid_to"`
}

type UpdateRequest struct {
	FinancingSourceID *int             `json:"financing_source_id"`
	PolicyNumber      *string          `json:"policy_number"`
	Coverage          *decimal.Decimal `json:"coverage"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidTo           *time.Time       `json:"valid_to"`
}
