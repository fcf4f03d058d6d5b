package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/pkg/pagination"
)

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockRepo) GetByIIN(_ context.Context, iin string) (*Patient, error) {
	for _, p := range m.items {
		if p.IIN == iin {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.items {
		if f.IIN != "" && p.IIN != f.IIN {
			continue
		}
		if f.AttachedClinicID != 0 && p.AttachedClinicID != f.AttachedClinicID {
			continue
		}
		all = append(all, p)
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) IINTaken(_ context.Context, iin string) (bool, error) {
	for _, p := range m.items {
		if p.IIN == iin {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

// alwaysExists satisfies CatalogChecker for references the test does not care
// about.
type alwaysExists struct{}

func (alwaysExists) Exists(context.Context, int) (bool, error) { return true, nil }

type neverExists struct{}

func (neverExists) Exists(context.Context, int) (bool, error) { return false, nil }

func newService() *Service {
	return NewService(newMockRepo(), alwaysExists{}, alwaysExists{}, alwaysExists{}, alwaysExists{}, alwaysExists{})
}

func validRequest() CreateRequest {
	return CreateRequest{
		IIN:              "850315450234",
		LastName:         "Ахметова",
		FirstName:        "Айгерим",
		BirthDate:        time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
		CitizenshipID:    1,
		NationalityID:    1,
		AttachedClinicID: 1,
	}
}

func TestCreate_InvalidIIN(t *testing.T) {
	svc := newService()
	for _, iin := range []string{"", "12345", "85031545023X", "8503154502345"} {
		req := validRequest()
		req.IIN = iin
		if _, err := svc.Create(context.Background(), req); !apperr.IsValidation(err) {
			t.Errorf("IIN %q: expected validation error, got %v", iin, err)
		}
	}
}

func TestCreate_DuplicateIIN(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validRequest()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, validRequest())
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreate_UnknownCitizenship(t *testing.T) {
	svc := NewService(newMockRepo(), neverExists{}, alwaysExists{}, alwaysExists{}, alwaysExists{}, alwaysExists{})
	_, err := svc.Create(context.Background(), validRequest())
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIIN(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	p, err := svc.GetByIIN(ctx, created.IIN)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != created.ID {
		t.Errorf("got patient %s, want %s", p.ID, created.ID)
	}

	if _, err := svc.GetByIIN(ctx, "000000000000"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReassignClinic(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ReassignClinic(ctx, created.ID, 7); err != nil {
		t.Fatal(err)
	}
	p, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.AttachedClinicID != 7 {
		t.Errorf("attached clinic = %d, want 7", p.AttachedClinicID)
	}
}

func TestList_FilterByClinic(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first := validRequest()
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := validRequest()
	second.IIN = "900101300117"
	second.AttachedClinicID = 2
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.List(ctx, ListFilter{AttachedClinicID: 2}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(items) != 1 || items[0].IIN != second.IIN {
		t.Errorf("filtered list = %d items, total %d", len(items), total)
	}
}

func TestFullName(t *testing.T) {
	p := &Patient{LastName: "Ахметова", FirstName: "Айгерим", MiddleName: "Сериковна"}
	if got := p.FullName(); got != "Ахметова Айгерим Сериковна" {
		t.Errorf("full name = %q", got)
	}
	p.MiddleName = ""
	if got := p.FullName(); got != "Ахметова Айгерим" {
		t.Errorf("full name = %q", got)
	}
}
