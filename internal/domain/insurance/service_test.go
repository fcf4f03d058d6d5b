package insurance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/medreg/registry/internal/platform/apperr"
)

type mockRepo struct {
	items  map[int]*Policy
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Policy), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Policy, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	var all []*Policy
	for i := 1; i < m.nextID; i++ {
		if p, ok := m.items[i]; ok && p.PatientID == patientID {
			all = append(all, p)
		}
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, p *Policy) error {
	p.ID = m.nextID
	m.nextID++
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Policy) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) PolicyNumberTaken(_ context.Context, number string, excludeID int) (bool, error) {
	for id, p := range m.items {
		if id != excludeID && p.PolicyNumber == number {
			return true, nil
		}
	}
	return false, nil
}

type staticChecker struct{ ok bool }

func (c staticChecker) Exists(context.Context, uuid.UUID) (bool, error) { return c.ok, nil }

type staticFinancing struct{ ok bool }

func (c staticFinancing) Exists(context.Context, int) (bool, error) { return c.ok, nil }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func validRequest() CreateRequest {
	return CreateRequest{
		PatientID:         uuid.New(),
		FinancingSourceID: 1,
		PolicyNumber:      "POL-001",
		Coverage:          decimal.NewFromInt(500000),
		ValidFrom:         date(2026, 1, 1),
		ValidTo:           date(2026, 12, 31),
	}
}

func TestCreate_DuplicatePolicyNumber(t *testing.T) {
	svc := NewService(newMockRepo(), staticChecker{ok: true}, staticFinancing{ok: true})
	ctx := context.Background()

	if _, err := svc.Create(ctx, validRequest()); err != nil {
		t.Fatal(err)
	}
	second := validRequest()
	_, err := svc.Create(ctx, second)
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreate_InvalidPeriod(t *testing.T) {
	svc := NewService(newMockRepo(), staticChecker{ok: true}, staticFinancing{ok: true})

	req := validRequest()
	req.ValidFrom, req.ValidTo = req.ValidTo, req.ValidFrom
	_, err := svc.Create(context.Background(), req)
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo(), staticChecker{ok: false}, staticFinancing{ok: true})

	_, err := svc.Create(context.Background(), validRequest())
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreate_NegativeCoverage(t *testing.T) {
	svc := NewService(newMockRepo(), staticChecker{ok: true}, staticFinancing{ok: true})

	req := validRequest()
	req.Coverage = decimal.NewFromInt(-1)
	_, err := svc.Create(context.Background(), req)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_PeriodStaysConsistent(t *testing.T) {
	svc := NewService(newMockRepo(), staticChecker{ok: true}, staticFinancing{ok: true})
	ctx := context.Background()

	pol, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	early := date(2025, 1, 1)
	_, err = svc.Update(ctx, pol.ID, UpdateRequest{ValidTo: &early})
	if !apperr.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestPolicy_ActiveAt(t *testing.T) {
	p := &Policy{ValidFrom: date(2026, 1, 1), ValidTo: date(2026, 12, 31)}
	if !p.ActiveAt(date(2026, 6, 1)) {
		t.Error("mid-period should be active")
	}
	if p.ActiveAt(date(2027, 1, 1)) {
		t.Error("after valid_to should be inactive")
	}
}
