package maternity

import (
	"time"

	"github.com/google/uuid"

	"github.com/medreg/registry/internal/domain/asset"
)

// MotherData carries the free-form mother details, persisted as jsonb.
type MotherData struct {
	BloodType       string `json:"blood_type,omitempty"`
	PregnancyNumber int    `json:"pregnancy_number,omitempty"`
	DeliveryNumber  int    `json:"delivery_number,omitempty"`
	Complications   string `json:"complications,omitempty"`
}

// Asset is a maternity stay journal record.
type Asset struct {
	asset.Record

	StayFrom        time.Time   `db:"stay_from" json:"stay_from"`
	StayTo          *time.Time  `db:"stay_to" json:"stay_to,omitempty"`
	DeliveryOutcome string      `db:"delivery_outcome" json:"delivery_outcome,omitempty"`
	Mother          *MotherData `db:"mother_data" json:"mother_data,omitempty"`
}

// ListItem is the list representation, with the summary derived from the
// primary diagnosis.
type ListItem struct {
	ID               uuid.UUID            `json:"id"`
	PatientID        uuid.UUID            `json:"patient_id"`
	Status           asset.Status         `json:"status"`
	DeliveryStatus   asset.DeliveryStatus `json:"delivery_status"`
	StayFrom         time.Time            `json:"stay_from"`
	StayTo           *time.Time           `json:"stay_to,omitempty"`
	DeliveryOutcome  string               `json:"delivery_outcome,omitempty"`
	DiagnosesSummary string               `json:"diagnoses_summary"`
	CreatedAt        time.Time            `json:"created_at"`
}

func (a *Asset) listItem() *ListItem {
	return &ListItem{
		ID:               a.ID,
		PatientID:        a.PatientID,
		Status:           a.Status,
		DeliveryStatus:   a.DeliveryStatus,
		StayFrom:         a.StayFrom,
		StayTo:           a.StayTo,
		DeliveryOutcome:  a.DeliveryOutcome,
		DiagnosesSummary: a.Diagnoses.Summary(),
		CreatedAt:        a.CreatedAt,
	}
}

// ListFilter narrows maternity listings. Zero values mean "no constraint".
type ListFilter struct {
	PatientID      uuid.UUID
	Status         asset.Status
	DeliveryStatus asset.DeliveryStatus
	StayFrom       *time.Time
	StayTo         *time.Time
}

type CreateRequest struct {
	PatientIIN      string          `json:"patient_iin"`
	BGAssetID       *string         `json:"bg_asset_id"`
	StayFrom        time.Time       `json:"stay_from"`
	StayTo          *time.Time      `json:"stay_to"`
	DeliveryOutcome string          `json:"delivery_outcome"`
	Diagnoses       asset.Diagnoses `json:"diagnoses"`
	Mother          *MotherData     `json:"mother_data"`
	Note            *string         `json:"note"`
}

type UpdateRequest struct {
	Status          *asset.Status         `json:"status"`
	DeliveryStatus  *asset.DeliveryStatus `json:"delivery_status"`
	StayFrom        *time.Time            `json:"stay_from"`
	StayTo          *time.Time            `json:"stay_to"`
	DeliveryOutcome *string               `json:"delivery_outcome"`
	Diagnoses       asset.Diagnoses       `json:"diagnoses"`
	Mother          *MotherData           `json:"mother_data"`
	Note            *string               `json:"note"`
}

// ImportResult reports the outcome of a BG file load.
type ImportResult struct {
	Imported         int `json:"imported"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	SkippedNoPatient int `json:"skipped_no_patient"`
}

// bgRecord is one entry of the BG import file.
type bgRecord struct {
	BGAssetID       string          `json:"bg_asset_id"`
	PatientIIN      string          `json:"patient_iin"`
	StayFrom        time.Time       `json:"stay_from"`
	StayTo          *time.Time      `json:"stay_to"`
	DeliveryOutcome string          `json:"delivery_outcome"`
	Diagnoses       asset.Diagnoses `json:"diagnoses"`
	Mother          *MotherData     `json:"mother_data"`
}
