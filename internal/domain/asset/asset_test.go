package asset

import (
	"reflect"
	"testing"
	"time"

	"github.com/medreg/registry/internal/platform/apperr"
)

func newRecord() *Record {
	return &Record{
		Status:         StatusRegistered,
		DeliveryStatus: DeliveryReceived,
		UpdatedAt:      time.Now().UTC().Add(-time.Hour),
	}
}

func TestConfirm(t *testing.T) {
	r := newRecord()
	before := r.UpdatedAt

	if err := r.Confirm(nil); err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusConfirmed || !r.HasConfirm {
		t.Errorf("record = %+v", r)
	}
	if !r.UpdatedAt.After(before) {
		t.Error("UpdatedAt not stamped")
	}
}

func TestConfirm_Twice(t *testing.T) {
	r := newRecord()
	if err := r.Confirm(nil); err != nil {
		t.Fatal(err)
	}
	snapshot := *r

	err := r.Confirm(nil)
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if !reflect.DeepEqual(*r, snapshot) {
		t.Error("double confirm mutated state")
	}
}

func TestConfirm_Refused(t *testing.T) {
	r := newRecord()
	if err := r.Refuse(nil); err != nil {
		t.Fatal(err)
	}
	snapshot := *r

	err := r.Confirm(nil)
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if !reflect.DeepEqual(*r, snapshot) {
		t.Error("confirming a refused asset mutated state")
	}
}

func TestRefuse_Confirmed(t *testing.T) {
	r := newRecord()
	if err := r.Confirm(nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Refuse(nil); !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	r := newRecord()
	if err := r.Cancel(); err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("status = %s", r.Status)
	}
	if err := r.Cancel(); !apperr.IsDomain(err) {
		t.Fatalf("double cancel should fail, got %v", err)
	}
}

func TestCancel_Confirmed(t *testing.T) {
	r := newRecord()
	if err := r.Confirm(nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Cancel(); !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestUpdateStatus_RoutesThroughMutators(t *testing.T) {
	r := newRecord()
	if err := r.UpdateStatus(StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	if !r.HasConfirm {
		t.Error("UpdateStatus(confirmed) must set HasConfirm")
	}

	if err := newRecord().UpdateStatus("unknown"); !apperr.IsValidation(err) {
		t.Error("unknown status should be rejected")
	}
}

func TestSetDeliveryStatus(t *testing.T) {
	r := newRecord()
	if err := r.SetDeliveryStatus(DeliveryDelivered); err != nil {
		t.Fatal(err)
	}
	if r.DeliveryStatus != DeliveryDelivered {
		t.Errorf("delivery status = %s", r.DeliveryStatus)
	}
	if err := r.SetDeliveryStatus("lost"); !apperr.IsValidation(err) {
		t.Error("invalid delivery status should be rejected")
	}
}

func TestDeletable(t *testing.T) {
	r := newRecord()
	if !r.Deletable() {
		t.Error("registered record should be deletable")
	}
	if err := r.Confirm(nil); err != nil {
		t.Fatal(err)
	}
	if r.Deletable() {
		t.Error("confirmed record must not be deletable")
	}
}

func TestDiagnosesSummary(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnoses
		want string
	}{
		{"empty", nil, ""},
		{"primary wins", Diagnoses{
			{Type: "concomitant", Code: "J06", Name: "URTI"},
			{Type: "primary", Code: "O80", Name: "Single spontaneous delivery"},
		}, "O80 Single spontaneous delivery"},
		{"fallback to first", Diagnoses{
			{Type: "concomitant", Code: "J06", Name: "URTI"},
		}, "J06 URTI"},
		{"code only", Diagnoses{{Type: "primary", Code: "O80"}}, "O80"},
		{"name only", Diagnoses{{Type: "primary", Name: "Delivery"}}, "Delivery"},
	}
	for _, tt := range tests {
		if got := tt.d.Summary(); got != tt.want {
			t.Errorf("%s: Summary() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
