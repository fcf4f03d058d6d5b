package sickleave

import (
	"time"

	"github.com/google/uuid"

	"github.com/medreg/registry/internal/domain/asset"
)

// Asset is a work-incapacity (sick leave) journal record.
type Asset struct {
	asset.Record

	PeriodFrom time.Time `db:"period_from" json:"period_from"`
	PeriodTo   time.Time `db:"period_to" json:"period_to"`
	WorkPlace  string    `db:"work_place" json:"work_place,omitempty"`
	Closed     bool      `db:"closed" json:"closed"`
}

type ListItem struct {
	ID               uuid.UUID    `json:"id"`
	PatientID        uuid.UUID    `json:"patient_id"`
	Status           asset.Status `json:"status"`
	PeriodFrom       time.Time    `json:"period_from"`
	PeriodTo         time.Time    `json:"period_to"`
	Closed           bool         `json:"closed"`
	DiagnosesSummary string       `json:"diagnoses_summary"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (a *Asset) listItem() *ListItem {
	return &ListItem{
		ID:               a.ID,
		PatientID:        a.PatientID,
		Status:           a.Status,
		PeriodFrom:       a.PeriodFrom,
		PeriodTo:         a.PeriodTo,
		Closed:           a.Closed,
		DiagnosesSummary: a.Diagnoses.Summary(),
		CreatedAt:        a.CreatedAt,
	}
}

type ListFilter struct {
	PatientID uuid.UUID
	Status    asset.Status
	Closed    *bool
	OpenFrom  *time.Time
	OpenTo    *time.Time
}

type CreateRequest struct {
	PatientIIN string          `json:"patient_iin"`
	BGAssetID  *string         `json:"bg_asset_id"`
	PeriodFrom time.Time       `json:"period_from"`
	PeriodTo   time.Time       `json:"period_to"`
	WorkPlace  string          `json:"work_place"`
	Diagnoses  asset.Diagnoses `json:"diagnoses"`
	Note       *string         `json:"note"`
}

type UpdateRequest struct {
	Status    *asset.Status   `json:"status"`
	WorkPlace *string         `json:"work_place"`
	Diagnoses asset.Diagnoses `json:"diagnoses"`
	Note      *string         `json:"note"`
}

// CloseRequest ends the incapacity period on the given date.
type CloseRequest struct {
	ClosedAt time.Time `json:"closed_at"`
}

// ExtendRequest moves the period end forward.
type ExtendRequest struct {
	PeriodTo time.Time `json:"period_to"`
}
