package nationality

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
	"github.com/medreg/registry/pkg/pagination"
)

// -- Mock Repository --

type mockRepo struct {
	items  map[int]*Nationality
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int]*Nationality), nextID: 1}
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Nationality, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return n, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Nationality, int, error) {
	var all []*Nationality
	for i := 1; i < m.nextID; i++ {
		if n, ok := m.items[i]; ok {
			all = append(all, n)
		}
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockRepo) Create(_ context.Context, n *Nationality) error {
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()
	m.items[n.ID] = n
	return nil
}

func (m *mockRepo) Update(_ context.Context, n *Nationality) error {
	m.items[n.ID] = n
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) NameTaken(_ context.Context, value string, excludeID int) (bool, error) {
	for id, n := range m.items {
		if id == excludeID {
			continue
		}
		if n.Name == value {
			return true, nil
		}
		for _, v := range n.NameLocales {
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

func newService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, i18n.NewResolver("ru", []string{"kk", "en"})), repo
}

// -- Tests --

func TestCreate(t *testing.T) {
	svc, repo := newService()

	n, err := svc.Create(context.Background(), CreateRequest{
		Name:        "Казах",
		Lang:        "ru",
		NameLocales: i18n.LocaleMap{"kk": "Қазақ", "en": "Kazakh"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID == 0 {
		t.Error("id not assigned")
	}
	if len(repo.items) != 1 {
		t.Errorf("items = %d", len(repo.items))
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Name: "Казах"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, CreateRequest{Name: "Казах"})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Error("duplicate create wrote a row")
	}
}

func TestCreate_DuplicateLocaleValue(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Name:        "Казах",
		NameLocales: i18n.LocaleMap{"en": "Kazakh"},
	}); err != nil {
		t.Fatal(err)
	}
	// Default name of the new row collides with an existing locale value.
	_, err := svc.Create(ctx, CreateRequest{Name: "Kazakh"})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestCreate_RejectsNonDefaultLang(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), CreateRequest{Name: "Kazakh", Lang: "en"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsUnsupportedLocaleKey(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), CreateRequest{
		Name:        "Казах",
		NameLocales: i18n.LocaleMap{"fr": "Kazakh"},
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByID_LocaleResolution(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:        "Default",
		NameLocales: i18n.LocaleMap{"en": "English"},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByID(ctx, created.ID, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "English" {
		t.Errorf("en view = %q, want English", view.Name)
	}

	view, err = svc.GetByID(ctx, created.ID, "kk", false)
	if err != nil {
		t.Fatal(err)
	}
	if view.Name != "Default" {
		t.Errorf("kk view = %q, want Default (fallback)", view.Name)
	}
}

func TestGetByID_AllLocales(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:        "Казах",
		NameLocales: i18n.LocaleMap{"en": "Kazakh"},
	})
	if err != nil {
		t.Fatal(err)
	}
	view, err := svc.GetByID(ctx, created.ID, "ru", true)
	if err != nil {
		t.Fatal(err)
	}
	if view.NameLocales == nil {
		t.Error("full view should carry the locale map")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.GetByID(context.Background(), 99, "ru", false)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdate_ChecksChangedFieldsOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{Name: "Казах"})
	if err != nil {
		t.Fatal(err)
	}
	// Re-saving the same name must not trip the uniqueness check against
	// the row itself.
	same := "Казах"
	if _, err := svc.Update(ctx, created.ID, UpdateRequest{Name: &same}); err != nil {
		t.Fatalf("no-op rename failed: %v", err)
	}
}

func TestUpdate_DuplicateName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Name: "Казах"}); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, CreateRequest{Name: "Орыс"})
	if err != nil {
		t.Fatal(err)
	}

	clash := "Казах"
	_, err = svc.Update(ctx, second.ID, UpdateRequest{Name: &clash})
	if !apperr.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newService()
	if err := svc.Delete(context.Background(), 12); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_Pagination(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, err := svc.Create(ctx, CreateRequest{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	views, total, err := svc.List(ctx, "ru", pagination.Params{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(views) != 2 || views[0].Name != "c" {
		t.Errorf("page 2 = %+v", views)
	}
}
