package nationality

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/i18n"
	"github.com/medreg/registry/pkg/pagination"
)

type Service struct {
	repo     Repository
	resolver *i18n.Resolver
}

func NewService(repo Repository, resolver *i18n.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) GetByID(ctx context.Context, id int, locale string, includeAllLocales bool) (*View, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.view(locale, includeAllLocales), nil
}

func (s *Service) List(ctx context.Context, locale string, p pagination.Params) ([]*View, int, error) {
	items, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	views := make([]*View, len(items))
	for i, n := range items {
		views[i] = n.view(locale, false)
	}
	return views, total, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Nationality, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}
	if err := s.checkUniqueness(ctx, req.Name, req.NameLocales, 0); err != nil {
		return nil, err
	}

	n := &Nationality{Name: req.Name, NameLocales: req.NameLocales}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create nationality: %w", err)
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Nationality, error) {
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}

	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Uniqueness is checked for changed fields only.
	if req.Name != nil && *req.Name != n.Name {
		if err := s.checkUniqueness(ctx, *req.Name, nil, id); err != nil {
			return nil, err
		}
		n.Name = *req.Name
	}
	if req.NameLocales != nil {
		if err := s.checkUniqueness(ctx, "", req.NameLocales, id); err != nil {
			return nil, err
		}
		n.NameLocales = req.NameLocales
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update nationality %d: %w", id, err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) get(ctx context.Context, id int) (*Nationality, error) {
	n, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("nationality %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get nationality %d: %w", id, err)
	}
	return n, nil
}

// checkUniqueness verifies the default name and every supplied locale value
// against existing rows. Locale keys outside the configured language set are
// rejected.
func (s *Service) checkUniqueness(ctx context.Context, name string, locales i18n.LocaleMap, excludeID int) error {
	values := make([]string, 0, len(locales)+1)
	if name != "" {
		values = append(values, name)
	}
	for locale, value := range locales {
		if err := s.resolver.ValidateInput(locale); err != nil {
			return err
		}
		if value != "" {
			values = append(values, value)
		}
	}
	for _, value := range values {
		taken, err := s.repo.NameTaken(ctx, value, excludeID)
		if err != nil {
			return fmt.Errorf("check name %q: %w", value, err)
		}
		if taken {
			return apperr.AlreadyExists("nationality %q already exists", value)
		}
	}
	return nil
}
