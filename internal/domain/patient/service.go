package patient

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/pkg/pagination"
)

var iinPattern = regexp.MustCompile(`^\d{12}$`)

func noRows(err error) bool {
	return pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows)
}

// CatalogChecker is the narrow existence check each referenced catalog
// service already provides.
type CatalogChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo          Repository
	citizenships  CatalogChecker
	nationalities CatalogChecker
	clinics       CatalogChecker
	financing     CatalogChecker
	attributes    CatalogChecker
}

func NewService(repo Repository, citizenships, nationalities, clinics, financing, attributes CatalogChecker) *Service {
	return &Service{
		repo:          repo,
		citizenships:  citizenships,
		nationalities: nationalities,
		clinics:       clinics,
		financing:     financing,
		attributes:    attributes,
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if noRows(err) {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) GetByIIN(ctx context.Context, iin string) (*Patient, error) {
	p, err := s.repo.GetByIIN(ctx, iin)
	if noRows(err) {
		return nil, apperr.NotFound("patient with IIN %s not found", iin)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient by IIN %s: %w", iin, err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, p pagination.Params) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, p.Limit, p.Offset())
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	if !iinPattern.MatchString(req.IIN) {
		return nil, apperr.Validation("IIN must be exactly 12 digits")
	}
	if req.LastName == "" || req.FirstName == "" {
		return nil, apperr.Validation("last_name and first_name are required")
	}

	taken, err := s.repo.IINTaken(ctx, req.IIN)
	if err != nil {
		return nil, fmt.Errorf("check IIN %s: %w", req.IIN, err)
	}
	if taken {
		return nil, apperr.AlreadyExists("patient with IIN %s already exists", req.IIN)
	}

	if err := s.checkRefs(ctx, req.CitizenshipID, req.NationalityID, req.AttachedClinicID,
		req.FinancingSourceIDs, req.ContextAttributeIDs); err != nil {
		return nil, err
	}

	p := &Patient{
		IIN:                 req.IIN,
		LastName:            req.LastName,
		FirstName:           req.FirstName,
		MiddleName:          req.MiddleName,
		BirthDate:           req.BirthDate,
		CitizenshipID:       req.CitizenshipID,
		NationalityID:       req.NationalityID,
		AttachedClinicID:    req.AttachedClinicID,
		FinancingSourceIDs:  req.FinancingSourceIDs,
		ContextAttributeIDs: req.ContextAttributeIDs,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		p.MiddleName = *req.MiddleName
	}
	if req.BirthDate != nil {
		p.BirthDate = *req.BirthDate
	}
	if req.CitizenshipID != nil {
		if err := s.checkRef(ctx, s.citizenships, *req.CitizenshipID, "citizenship"); err != nil {
			return nil, err
		}
		p.CitizenshipID = *req.CitizenshipID
	}
	if req.NationalityID != nil {
		if err := s.checkRef(ctx, s.nationalities, *req.NationalityID, "nationality"); err != nil {
			return nil, err
		}
		p.NationalityID = *req.NationalityID
	}
	if req.AttachedClinicID != nil {
		if err := s.checkRef(ctx, s.clinics, *req.AttachedClinicID, "medical organization"); err != nil {
			return nil, err
		}
		p.AttachedClinicID = *req.AttachedClinicID
	}
	if req.FinancingSourceIDs != nil {
		for _, fsID := range req.FinancingSourceIDs {
			if err := s.checkRef(ctx, s.financing, fsID, "financing source"); err != nil {
				return nil, err
			}
		}
		p.FinancingSourceIDs = req.FinancingSourceIDs
	}
	if req.ContextAttributeIDs != nil {
		for _, attrID := range req.ContextAttributeIDs {
			if err := s.checkRef(ctx, s.attributes, attrID, "context attribute"); err != nil {
				return nil, err
			}
		}
		p.ContextAttributeIDs = req.ContextAttributeIDs
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient %s: %w", id, err)
	}
	return p, nil
}

// ResolveIIN returns the ID of the patient holding the IIN. The asset
// modules use it for intake by IIN.
func (s *Service) ResolveIIN(ctx context.Context, iin string) (uuid.UUID, error) {
	p, err := s.GetByIIN(ctx, iin)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// GetIIN returns the IIN of the patient with the given ID.
func (s *Service) GetIIN(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.IIN, nil
}

// ReassignClinic moves the patient to another attached clinic. Used by the
// newborn transfer operation.
func (s *Service) ReassignClinic(ctx context.Context, id uuid.UUID, clinicID int) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkRef(ctx, s.clinics, clinicID, "medical organization"); err != nil {
		return err
	}
	p.AttachedClinicID = clinicID
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("reassign patient %s to clinic %d: %w", id, clinicID, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) checkRefs(ctx context.Context, citizenshipID, nationalityID, clinicID int, financingIDs, attributeIDs []int) error {
	if err := s.checkRef(ctx, s.citizenships, citizenshipID, "citizenship"); err != nil {
		return err
	}
	if err := s.checkRef(ctx, s.nationalities, nationalityID, "nationality"); err != nil {
		return err
	}
	if err := s.checkRef(ctx, s.clinics, clinicID, "medical organization"); err != nil {
		return err
	}
	for _, fsID := range financingIDs {
		if err := s.checkRef(ctx, s.financing, fsID, "financing source"); err != nil {
			return err
		}
	}
	for _, attrID := range attributeIDs {
		if err := s.checkRef(ctx, s.attributes, attrID, "context attribute"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkRef(ctx context.Context, checker CatalogChecker, id int, kind string) error {
	ok, err := checker.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s %d: %w", kind, id, err)
	}
	if !ok {
		return apperr.NotFound("%s %d not found", kind, id)
	}
	return nil
}
