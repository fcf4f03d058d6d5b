package patientattr

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
)

type mockRepo struct {
	items  map[int]*Attribute
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Attribute), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Attribute, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Attribute, int, error) {
	var all []*Attribute
	for i := 1; i < m.nextID; i++ {
		if a, ok := m.items[i]; ok {
			all = append(all, a)
		}
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, a *Attribute) error {
	a.ID = m.nextID
	m.nextID++
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) Update(_ context.Context, a *Attribute) error {
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) NameTaken(_ context.Context, value string, excludeID int) (bool, error) {
	for id, a := range m.items {
		if id == excludeID {
			continue
		}
		if a.Name == value {
			return true, nil
		}
		for _, v := range a.NameLocales {
			if v == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockRepo) Exists(_ context.Context, id int) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func newService() *Service {
	return NewService(newMockRepo(), i18n.NewResolver("ru", []string{"kk", "en"}))
}

func TestCreate_InvalidDataType(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), CreateRequest{Name: "Группа риска", DataType: "float"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Name: "Группа риска", DataType: DataTypeString}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{Name: "Группа риска", DataType: DataTypeString})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestUpdate_DataType(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{Name: "Инвалидность", DataType: DataTypeBoolean})
	if err != nil {
		t.Fatal(err)
	}

	dt := DataTypeDate
	updated, err := svc.Update(ctx, created.ID, UpdateRequest{DataType: &dt})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DataType != DataTypeDate {
		t.Errorf("data type = %q", updated.DataType)
	}

	bad := DataType("float")
	if _, err := svc.Update(ctx, created.ID, UpdateRequest{DataType: &bad}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByID_Localized(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name: "Группа риска", DataType: DataTypeString,
		NameLocales: i18n.LocaleMap{"en": "Risk group"},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByID(ctx, created.ID, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "Risk group" || view.DataType != DataTypeString {
		t.Errorf("view = %+v", view)
	}
}
