package patientdiagnosis

import (
	"time"

	"github.com/google/uuid"
)

// Record links a patient to a diagnosis on a given date. The triple
// (patient, diagnosis, date) is unique.
type Record struct {
	ID          int       `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DiagnosisID int       `db:"diagnosis_id" json:"diagnosis_id"`
	DiagnosedAt time.Time `db:"diagnosed_at" json:"diagnosed_at"`
	Note        string    `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DiagnosisID int       `json:"diagnosis_id"`
	DiagnosedAt time.Time `json:"diagnosed_at"`
	Note        string    `json:"note"`
}

type UpdateRequest struct {
	DiagnosedAt *time.Time `json:"diagnosed_at"`
	Note        *string    `json:"note"`
}
