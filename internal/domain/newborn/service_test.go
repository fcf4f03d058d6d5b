package newborn

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/domain/asset"
	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/rpn"
)

type mockRepo struct {
	items map[uuid.UUID]*Asset
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Asset)}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Asset, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Asset, int, error) {
	var all []*Asset
	for _, a := range m.items {
		if f.PatientID != uuid.Nil && a.PatientID != f.PatientID {
			continue
		}
		all = append(all, a)
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, a *Asset) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) Update(_ context.Context, a *Asset) error {
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) BGAssetIDExists(_ context.Context, bgAssetID string) (bool, error) {
	for _, a := range m.items {
		if a.BGAssetID != nil && *a.BGAssetID == bgAssetID {
			return true, nil
		}
	}
	return false, nil
}

const knownIIN = "230101650112"

// mockRegistry is an in-memory PatientRegistry that records clinic
// reassignments.
type mockRegistry struct {
	patientID uuid.UUID
	clinicID  int
}

func (m *mockRegistry) ResolveIIN(_ context.Context, iin string) (uuid.UUID, error) {
	if iin != knownIIN {
		return uuid.Nil, apperr.NotFound("patient with IIN %s not found", iin)
	}
	return m.patientID, nil
}

func (m *mockRegistry) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return id == m.patientID, nil
}

func (m *mockRegistry) GetIIN(_ context.Context, id uuid.UUID) (string, error) {
	if id != m.patientID {
		return "", apperr.NotFound("patient %s not found", id)
	}
	return knownIIN, nil
}

func (m *mockRegistry) ReassignClinic(_ context.Context, id uuid.UUID, clinicID int) error {
	if id != m.patientID {
		return apperr.NotFound("patient %s not found", id)
	}
	m.clinicID = clinicID
	return nil
}

type yesClinic struct{}

func (yesClinic) Exists(context.Context, int) (bool, error) { return true, nil }

type stubAttachments struct {
	att *rpn.Attachment
	err error
}

func (s stubAttachments) GetAttachment(context.Context, string) (*rpn.Attachment, error) {
	return s.att, s.err
}

func newService(att *rpn.Attachment) (*Service, *mockRegistry) {
	registry := &mockRegistry{patientID: uuid.New(), clinicID: 1}
	svc := NewService(newMockRepo(), registry, yesClinic{}, stubAttachments{att: att}, zerolog.Nop())
	return svc, registry
}

func activeAttachment() *rpn.Attachment {
	return &rpn.Attachment{IIN: knownIIN, AttachedClinicID: 1, Active: true}
}

func validRequest() CreateRequest {
	return CreateRequest{
		PatientIIN: knownIIN,
		BirthDate:  time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		Newborn:    &NewbornData{Gender: "male", WeightGrams: 3400, ApgarScore: "8/9"},
	}
}

func TestCreate_RequiresBirthDate(t *testing.T) {
	svc, _ := newService(activeAttachment())

	req := validRequest()
	req.BirthDate = time.Time{}
	_, err := svc.Create(context.Background(), req)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_StampsUpdatedAt(t *testing.T) {
	svc, _ := newService(activeAttachment())
	ctx := context.Background()

	a, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	note := "повторный осмотр"
	updated, err := svc.Update(ctx, a.ID, UpdateRequest{Note: &note})
	if err != nil {
		t.Fatal(err)
	}
	if updated.UpdatedAt.IsZero() {
		t.Error("updated_at not stamped by field update")
	}
}

func TestTransfer_ReassignsClinicAndResetsDelivery(t *testing.T) {
	svc, registry := newService(activeAttachment())
	ctx := context.Background()

	a, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	delivered := asset.DeliveryDelivered
	if _, err := svc.Update(ctx, a.ID, UpdateRequest{DeliveryStatus: &delivered}); err != nil {
		t.Fatal(err)
	}

	transferred, err := svc.Transfer(ctx, a.ID, TransferRequest{OrganizationID: 7})
	if err != nil {
		t.Fatal(err)
	}
	if registry.clinicID != 7 {
		t.Errorf("clinic = %d, want 7", registry.clinicID)
	}
	if transferred.DeliveryStatus != asset.DeliveryReceived {
		t.Errorf("delivery status = %s, want received", transferred.DeliveryStatus)
	}
}

func TestTransfer_InactiveAttachment(t *testing.T) {
	svc, _ := newService(&rpn.Attachment{IIN: knownIIN, Active: false})
	ctx := context.Background()

	a, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Transfer(ctx, a.ID, TransferRequest{OrganizationID: 7})
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestTransfer_CancelledAsset(t *testing.T) {
	svc, _ := newService(activeAttachment())
	ctx := context.Background()

	a, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Cancel(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	_, err = svc.Transfer(ctx, a.ID, TransferRequest{OrganizationID: 7})
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestConfirmRefuseGuards(t *testing.T) {
	svc, _ := newService(activeAttachment())
	ctx := context.Background()

	a, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Refuse(ctx, a.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, a.ID, nil); !apperr.IsDomain(err) {
		t.Fatalf("confirm refused: expected domain error, got %v", err)
	}
}
