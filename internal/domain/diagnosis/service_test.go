package diagnosis

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
)

type mockRepo struct {
	items  map[int]*Diagnosis
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Diagnosis), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Diagnosis, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Diagnosis, error) {
	for _, d := range m.items {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Diagnosis, int, error) {
	var all []*Diagnosis
	for i := 1; i < m.nextID; i++ {
		if d, ok := m.items[i]; ok {
			all = append(all, d)
		}
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, d *Diagnosis) error {
	d.ID = m.nextID
	m.nextID++
	m.items[d.ID] = d
	return nil
}

func (m *mockRepo) Update(_ context.Context, d *Diagnosis) error {
	m.items[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) NameTaken(_ context.Context, value string, excludeID int) (bool, error) {
	for id, d := range m.items {
		if id == excludeID {
			continue
		}
		if d.Name == value {
			return true, nil
		}
		for _, v := range d.NameLocales {
			if v == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockRepo) CodeTaken(_ context.Context, code string, excludeID int) (bool, error) {
	for id, d := range m.items {
		if id != excludeID && d.Code == code {
			return true, nil
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

func TestCreate_DuplicateICDCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "O80", Name: "Роды одноплодные"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{Code: "O80", Name: "Другое описание"})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestGetByCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "O80", Name: "Роды одноплодные"}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.GetByCode(ctx, "O80")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Роды одноплодные" {
		t.Errorf("name = %q", d.Name)
	}

	if _, err := svc.GetByCode(ctx, "Z99"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByID_Localized(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Code: "O80", Name: "Роды одноплодные",
		NameLocales: i18n.LocaleMap{"en": "Single spontaneous delivery"},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByID(ctx, created.ID, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "Single spontaneous delivery" {
		t.Errorf("name = %q", view.Name)
	}
}
