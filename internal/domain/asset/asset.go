// Package asset holds the journal record core shared by the maternity,
// newborn, sick-leave and staff-assignment modules: statuses, embedded
// diagnosis value objects and the guarded status mutators.
package asset

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medreg/registry/internal/platform/apperr"
)

type Status string

const (
	StatusRegistered Status = "registered"
	StatusConfirmed  Status = "confirmed"
	StatusRefused    Status = "refused"
	StatusCancelled  Status = "cancelled"
)

type DeliveryStatus string

const (
	DeliveryReceived  DeliveryStatus = "received"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// ValidStatus reports whether s is a known journal status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusRegistered, StatusConfirmed, StatusRefused, StatusCancelled:
		return true
	}
	return false
}

// ValidDeliveryStatus reports whether s is a known delivery status.
func ValidDeliveryStatus(s DeliveryStatus) bool {
	return s == DeliveryReceived || s == DeliveryDelivered
}

// Diagnosis is a value object embedded in journal records and persisted as
// jsonb. Type distinguishes primary from concomitant diagnoses.
type Diagnosis struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
}

type Diagnoses []Diagnosis

// Primary returns the primary diagnosis, falling back to the first entry.
func (d Diagnoses) Primary() (Diagnosis, bool) {
	for _, diag := range d {
		if strings.EqualFold(diag.Type, "primary") {
			return diag, true
		}
	}
	if len(d) > 0 {
		return d[0], true
	}
	return Diagnosis{}, false
}

// Summary renders the list-item representation derived from the primary
// diagnosis code and name.
func (d Diagnoses) Summary() string {
	primary, ok := d.Primary()
	if !ok {
		return ""
	}
	if primary.Code == "" {
		return primary.Name
	}
	if primary.Name == "" {
		return primary.Code
	}
	return primary.Code + " " + primary.Name
}

// Record carries the fields common to every journal record. Concrete asset
// types embed it; all status mutations go through the guarded methods so
// UpdatedAt is stamped consistently.
type Record struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BGAssetID      *string        `db:"bg_asset_id" json:"bg_asset_id,omitempty"`
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	Status         Status         `db:"status" json:"status"`
	DeliveryStatus DeliveryStatus `db:"delivery_status" json:"delivery_status"`
	Diagnoses      Diagnoses      `db:"diagnoses" json:"diagnoses,omitempty"`
	Note           *string        `db:"note" json:"note,omitempty"`
	HasConfirm     bool           `db:"has_confirm" json:"has_confirm"`
	HasRefusal     bool           `db:"has_refusal" json:"has_refusal"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Touch stamps UpdatedAt. Concrete asset types call it after mutating their
// own fields outside the status mutators.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// Confirm marks the record confirmed. Confirming twice, or confirming a
// refused record, fails without mutating state.
func (r *Record) Confirm(note *string) error {
	if r.HasConfirm {
		return apperr.Domain("asset is already confirmed")
	}
	if r.HasRefusal {
		return apperr.Domain("cannot confirm a refused asset")
	}
	if r.Status == StatusCancelled {
		return apperr.Domain("cannot confirm a cancelled asset")
	}
	r.Status = StatusConfirmed
	r.HasConfirm = true
	if note != nil {
		r.Note = note
	}
	r.Touch()
	return nil
}

// Refuse marks the record refused under the mirror-image guards.
func (r *Record) Refuse(note *string) error {
	if r.HasRefusal {
		return apperr.Domain("asset is already refused")
	}
	if r.HasConfirm {
		return apperr.Domain("cannot refuse a confirmed asset")
	}
	if r.Status == StatusCancelled {
		return apperr.Domain("cannot refuse a cancelled asset")
	}
	r.Status = StatusRefused
	r.HasRefusal = true
	if note != nil {
		r.Note = note
	}
	r.Touch()
	return nil
}

// Cancel withdraws a record that has not been confirmed.
func (r *Record) Cancel() error {
	if r.HasConfirm {
		return apperr.Domain("cannot cancel a confirmed asset")
	}
	if r.Status == StatusCancelled {
		return apperr.Domain("asset is already cancelled")
	}
	r.Status = StatusCancelled
	r.Touch()
	return nil
}

// UpdateStatus routes a plain status change through the mutators where the
// target status has one, otherwise assigns directly.
func (r *Record) UpdateStatus(s Status) error {
	if !ValidStatus(s) {
		return apperr.Validation("invalid status %q", s)
	}
	switch s {
	case StatusConfirmed:
		return r.Confirm(nil)
	case StatusRefused:
		return r.Refuse(nil)
	case StatusCancelled:
		return r.Cancel()
	}
	r.Status = s
	r.Touch()
	return nil
}

// SetDeliveryStatus assigns the delivery status and stamps UpdatedAt.
func (r *Record) SetDeliveryStatus(s DeliveryStatus) error {
	if !ValidDeliveryStatus(s) {
		return apperr.Validation("invalid delivery status %q", s)
	}
	r.DeliveryStatus = s
	r.Touch()
	return nil
}

// Deletable reports whether the record may be removed: confirmed records are
// kept forever.
func (r *Record) Deletable() bool {
	return !r.HasConfirm
}
