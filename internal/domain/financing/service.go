package financing

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
	src, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return src.view(locale, includeAllLocales), nil
}

func (s *Service) List(ctx context.Context, locale string, p pagination.Params) ([]*View, int, error) {
	items, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	views := make([]*View, len(items))
	for i, src := range items {
		views[i] = src.view(locale, false)
	}
	return views, total, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Source, error) {
	if req.Name == "" || req.Code == "" {
		return nil, apperr.Validation("code and name are required")
	}
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}
	if err := s.checkCode(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	if err := s.checkNames(ctx, req.Name, req.NameLocales, 0); err != nil {
		return nil, err
	}

	src := &Source{Code: req.Code, Name: req.Name, NameLocales: req.NameLocales}
	if err := s.repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create financing source: %w", err)
	}
	return src, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Source, error) {
	if err := s.resolver.ValidateDefault(req.Lang); err != nil {
		return nil, err
	}
	src, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != src.Code {
		if err := s.checkCode(ctx, *req.Code, id); err != nil {
			return nil, err
		}
		src.Code = *req.Code
	}
	if req.Name != nil && *req.Name != src.Name {
		if err := s.checkNames(ctx, *req.Name, nil, id); err != nil {
			return nil, err
		}
		src.Name = *req.Name
	}
	if req.NameLocales != nil {
		if err := s.checkNames(ctx, "", req.NameLocales, id); err != nil {
			return nil, err
		}
		src.NameLocales = req.NameLocales
	}

	if err := s.repo.Update(ctx, src); err != nil {
		return nil, fmt.Errorf("update financing source %d: %w", id, err)
	}
	return src, nil
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

func (s *Service) get(ctx context.Context, id int) (*Source, error) {
	src, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("financing source %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get financing source %d: %w", id, err)
	}
	return src, nil
}

func (s *Service) checkCode(ctx context.Context, code string, excludeID int) error {
	taken, err := s.repo.CodeTaken(ctx, code, excludeID)
	if err != nil {
		return fmt.Errorf("check code %q: %w", code, err)
	}
	if taken {
		return apperr.AlreadyExists("financing source code %q already exists", code)
	}
	return nil
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
			return apperr.AlreadyExists("financing source %q already exists", value)
		}
	}
	return nil
}
