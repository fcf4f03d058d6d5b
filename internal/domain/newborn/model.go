package newborn

import (
	"time"

	"github.com/google/uuid"

	"github.com/medreg/registry/internal/domain/asset"
)

// NewbornData carries the birth details, persisted as jsonb.
type NewbornData struct {
	Gender      string `json:"gender,omitempty"`
	WeightGrams int    `json:"weight_grams,omitempty"`
	HeightCm    int    `json:"height_cm,omitempty"`
	ApgarScore  string `json:"apgar_score,omitempty"`
}

// Asset is a newborn journal record.
type Asset struct {
	asset.Record

	BirthDate time.Time    `db:"birth_date" json:"birth_date"`
	Newborn   *NewbornData `db:"newborn_data" json:"newborn_data,omitempty"`
}

type ListItem struct {
	ID               uuid.UUID            `json:"id"`
	PatientID        uuid.UUID            `json:"patient_id"`
	Status           asset.Status         `json:"status"`
	DeliveryStatus   asset.DeliveryStatus `json:"delivery_status"`
	BirthDate        time.Time            `json:"birth_date"`
	DiagnosesSummary string               `json:"diagnoses_summary"`
	CreatedAt        time.Time            `json:"created_at"`
}

func (a *Asset) listItem() *ListItem {
	return &ListItem{
		ID:               a.ID,
		PatientID:        a.PatientID,
		Status:           a.Status,
		DeliveryStatus:   a.DeliveryStatus,
		BirthDate:        a.BirthDate,
		DiagnosesSummary: a.Diagnoses.Summary(),
		CreatedAt:        a.CreatedAt,
	}
}

type ListFilter struct {
	PatientID      uuid.UUID
	Status         asset.Status
	DeliveryStatus asset.DeliveryStatus
	BornFrom       *time.Time
	BornTo         *time.Time
}

type CreateRequest struct {
	PatientIIN string          `json:"patient_iin"`
	BGAssetID  *string         `json:"bg_asset_id"`
	BirthDate  time.Time       `json:"birth_date"`
	Diagnoses  asset.Diagnoses `json:"diagnoses"`
	Newborn    *NewbornData    `json:"newborn_data"`
	Note       *string         `json:"note"`
}

type UpdateRequest struct {
	Status         *asset.Status         `json:"status"`
	DeliveryStatus *asset.DeliveryStatus `json:"delivery_status"`
	BirthDate      *time.Time            `json:"birth_date"`
	Diagnoses      asset.Diagnoses       `json:"diagnoses"`
	Newborn        *NewbornData          `json:"newborn_data"`
	Note           *string               `json:"note"`
}

// TransferRequest moves the linked patient to another medical organization.
type TransferRequest struct {
	OrganizationID int `json:"organization_id"`
}
