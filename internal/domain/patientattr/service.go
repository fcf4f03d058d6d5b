package patientattr

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
	attr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return attr.view(locale, includeAllLocales), nil
}

func (s *Service) List(ctx context.Context, locale string, p pagination.Params) ([]*View, int, error) {
	items, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	views := make([]*View, len(items))
	for i, attr := range items {
		views[i] = attr.view(locale, false)
	}
	return views, total, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Attribute, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !req.DataType.Valid() {
		return nil, apperr.Validation("unknown data type %q", req.DataType)
	}
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}
	if err := s.checkNames(ctx, req.Name, req.NameLocales, 0); err != nil {
		return nil, err
	}

	attr := &Attribute{Name: req.Name, NameLocales: req.NameLocales, DataType: req.DataType}
	if err := s.repo.Create(ctx, attr); err != nil {
		return nil, fmt.Errorf("create context attribute: %w", err)
	}
	return attr, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Attribute, error) {
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}
	attr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != attr.Name {
		if err := s.checkNames(ctx, *req.Name, nil, id); err != nil {
			return nil, err
		}
		attr.Name = *req.Name
	}
	if req.NameLocales != nil {
		if err := s.checkNames(ctx, "", req.NameLocales, id); err != nil {
			return nil, err
		}
		attr.NameLocales = req.NameLocales
	}
	if req.DataType != nil {
		if !req.DataType.Valid() {
			return nil, apperr.Validation("unknown data type %q", *req.DataType)
		}
		attr.DataType = *req.DataType
	}

	if err := s.repo.Update(ctx, attr); err != nil {
		return nil, fmt.Errorf("update context attribute %d: %w", id, err)
	}
	return attr, nil
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

func (s *Service) get(ctx context.Context, id int) (*Attribute, error) {
	attr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("context attribute %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get context attribute %d: %w", id, err)
	}
	return attr, nil
}

func (s *Service) checkNames(ctx context.Context, name string, locales i18n.LocaleMap, excludeID int) error {
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
			return apperr.AlreadyExists("context attribute %q already exists", value)
		}
	}
	return nil
}
