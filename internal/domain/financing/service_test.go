package financing

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
)

type mockRepo struct {
	items  map[int]*Source
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Source), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Source, error) {
	src, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return src, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Source, int, error) {
	var all []*Source
	for i := 1; i < m.nextID; i++ {
		if src, ok := m.items[i]; ok {
			all = append(all, src)
		}
	}
	return all, len(all), nil
}

func (m *mockRepo) Create(_ context.Context, src *Source) error {
	src.ID = m.nextID
	m.nextID++
	m.items[src.ID] = src
	return nil
}

func (m *mockRepo) Update(_ context.Context, src *Source) error {
	m.items[src.ID] = src
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) NameTaken(_ context.Context, value string, excludeID int) (bool, error) {
	for id, src := range m.items {
		if id == excludeID {
			continue
		}
		if src.Name == value {
			return true, nil
		}
		for _, v := range src.NameLocales {
			if v == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockRepo) CodeTaken(_ context.Context, code string, excludeID int) (bool, error) {
	for id, src := range m.items {
		if id != excludeID && src.Code == code {
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

func TestCreate_RequiresCodeAndName(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), CreateRequest{Name: "ОСМС"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "OSMS", Name: "ОСМС"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{Code: "OSMS", Name: "Другое"})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreate_DuplicateLocaleValue(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Code: "OSMS", Name: "ОСМС",
		NameLocales: i18n.LocaleMap{"en": "Mandatory insurance"},
	}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{
		Code: "GOBMP", Name: "ГОБМП",
		NameLocales: i18n.LocaleMap{"en": "Mandatory insurance"},
	})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestUpdate_CodeCollision(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Code: "OSMS", Name: "ОСМС"}); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, CreateRequest{Code: "GOBMP", Name: "ГОБМП"})
	if err != nil {
		t.Fatal(err)
	}

	clash := "OSMS"
	_, err = svc.Update(ctx, second.ID, UpdateRequest{Code: &clash})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestGetByID_LocaleFallback(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Code: "OSMS", Name: "ОСМС",
		NameLocales: i18n.LocaleMap{"kk": "МӘМС"},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByID(ctx, created.ID, "kk", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "МӘМС" {
		t.Errorf("kk name = %q", view.Name)
	}

	view, err = svc.GetByID(ctx, created.ID, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "ОСМС" {
		t.Errorf("fallback name = %q", view.Name)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := newService()
	err := svc.Delete(context.Background(), 42)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
