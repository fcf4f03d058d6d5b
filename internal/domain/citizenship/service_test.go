package citizenship

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
)

type mockRepo struct {
	items  map[int]*Citizenship
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Citizenship), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Citizenship, error) {
	ct, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ct, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Citizenship, int, error) {
	var all []*Citizenship
	for i := 1; i < m.nextID; i++ {
		if ct, ok := m.items[i]; ok {
			all = append(all, ct)
		}
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, ct *Citizenship) error {
	ct.ID = m.nextID
	m.nextID++
	m.items[ct.ID] = ct
	return nil
}

func (m *mockRepo) Update(_ context.Context, ct *Citizenship) error {
	m.items[ct.ID] = ct
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) NameTaken(_ context.Context, value string, excludeID int) (bool, error) {
	for id, ct := range m.items {
		if id == excludeID {
			continue
		}
		if ct.Name == value {
			return true, nil
		}
		for _, v := range ct.NameLocales {
			if v == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockRepo) CodeTaken(_ context.Context, code string, excludeID int) (bool, error) {
	for id, ct := range m.items {
		if id != excludeID && ct.Code == code {
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

func TestCreate_RequiresCode(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), CreateRequest{Name: "Казахстан"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "KZ", Name: "Казахстан"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{Code: "KZ", Name: "Другое"})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreate_DuplicateLocaleValue(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Code: "KZ", Name: "Казахстан",
		NameLocales: i18n.LocaleMap{"en": "Kazakhstan"},
	}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{
		Code: "QZ", Name: "Qazaqstan",
		NameLocales: i18n.LocaleMap{"en": "Kazakhstan"},
	})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestUpdate_CodeCollision(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "KZ", Name: "Казахстан"}); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, CreateRequest{Code: "RU", Name: "Россия"})
	if err != nil {
		t.Fatal(err)
	}

	clash := "KZ"
	_, err = svc.Update(ctx, second.ID, UpdateRequest{Code: &clash})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestGetByID_Localized(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Code: "KZ", Name: "Казахстан",
		NameLocales: i18n.LocaleMap{"en": "Kazakhstan"},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByID(ctx, created.ID, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "Kazakhstan" || view.Code != "KZ" {
		t.Errorf("view = %+v", view)
	}
}
