package staffassign

import (
	"time"

	"github.com/google/uuid"

	"github.com/medreg/registry/internal/domain/asset"
)

// Asset is a staff-to-patient assignment journal record.
type Asset struct {
	asset.Record

	StaffName    string     `db:"staff_name" json:"staff_name"`
	Position     string     `db:"position" json:"position"`
	Department   string     `db:"department" json:"department,omitempty"`
	AssignedFrom time.Time  `db:"assigned_from" json:"assigned_from"`
	TerminatedAt *time.Time `db:"terminated_at" json:"terminated_at,omitempty"`
}

// Active reports whether the assignment is still in force.
func (a *Asset) Active() bool {
	return a.TerminatedAt == nil
}

type ListItem struct {
	ID           uuid.UUID    `json:"id"`
	PatientID    uuid.UUID    `json:"patient_id"`
	Status       asset.Status `json:"status"`
	StaffName    string       `json:"staff_name"`
	Position     string       `json:"position"`
	AssignedFrom time.Time    `json:"assigned_from"`
	TerminatedAt *time.Time   `json:"terminated_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (a *Asset) listItem() *ListItem {
	return &ListItem{
		ID:           a.ID,
		PatientID:    a.PatientID,
		Status:       a.Status,
		StaffName:    a.StaffName,
		Position:     a.Position,
		AssignedFrom: a.AssignedFrom,
		TerminatedAt: a.TerminatedAt,
		CreatedAt:    a.CreatedAt,
	}
}

type ListFilter struct {
	PatientID  uuid.UUID
	Status     asset.Status
	Position   string
	ActiveOnly bool
}

type CreateRequest struct {
	PatientIIN   string    `json:"patient_iin"`
	BGAssetID    *string   `json:"bg_asset_id"`
	StaffName    string    `json:"staff_name"`
	Position     string    `json:"position"`
	Department   string    `json:"department"`
	AssignedFrom time.Time `json:"assigned_from"`
	Note         *string   `json:"note"`
}

type UpdateRequest struct {
	Status     *asset.Status `json:"status"`
	StaffName  *string       `json:"staff_name"`
	Position   *string       `json:"position"`
	Department *string       `json:"department"`
	Note       *string       `json:"note"`
}

// TerminateRequest ends the assignment on the given date.
type TerminateRequest struct {
	TerminatedAt time.Time `json:"terminated_at"`
	Note         *string   `json:"note"`
}
