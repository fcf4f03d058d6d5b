package insurance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/pkg/pagination"
)

// PatientChecker verifies that the referenced patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// FinancingChecker verifies that the referenced financing source exists.
type FinancingChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo      Repository
	patients  PatientChecker
	financing FinancingChecker
}

func NewService(repo Repository, patients PatientChecker, financing FinancingChecker) *Service {
	return &Service{repo: repo, patients: patients, financing: financing}
}

func (s *Service) GetByID(ctx context.Context, id int) (*Policy, error) {
	return s.get(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, p pagination.Params) ([]*Policy, int, error) {
	return s.repo.ListByPatient(ctx, patientID, p.Limit, p.Offset())
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Policy, error) {
	if req.PolicyNumber == "" {
		return nil, apperr.Validation("policy_number is required")
	}
	if req.Coverage.IsNegative() {
		return nil, apperr.Validation("coverage must not be negative")
	}
	if req.ValidTo.Before(req.ValidFrom) {
		return nil, apperr.Domain("valid_to %s precedes valid_from %s",
			req.ValidTo.Format("2006-01-02"), req.ValidFrom.Format("2006-01-02"))
	}
	if err := s.checkRefs(ctx, req.PatientID, req.FinancingSourceID); err != nil {
		return nil, err
	}
	if err := s.checkNumber(ctx, req.PolicyNumber, 0); err != nil {
		return nil, err
	}

	pol := &Policy{
		PatientID:         req.PatientID,
		FinancingSourceID: req.FinancingSourceID,
		PolicyNumber:      req.PolicyNumber,
		Coverage:          req.Coverage,
		ValidFrom:         req.ValidFrom,
		ValidTo:           req.ValidTo,
	}
	if err := s.repo.Create(ctx, pol); err != nil {
		return nil, fmt.Errorf("create insurance policy: %w", err)
	}
	return pol, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Policy, error) {
	pol, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PolicyNumber != nil && *req.PolicyNumber != pol.PolicyNumber {
		if err := s.checkNumber(ctx, *req.PolicyNumber, id); err != nil {
			return nil, err
		}
		pol.PolicyNumber = *req.PolicyNumber
	}
	if req.FinancingSourceID != nil && *req.FinancingSourceID != pol.FinancingSourceID {
		if err := s.checkFinancing(ctx, *req.FinancingSourceID); err != nil {
			return nil, err
		}
		pol.FinancingSourceID = *req.FinancingSourceID
	}
	if req.Coverage != nil {
		if req.Coverage.IsNegative() {
			return nil, apperr.Validation("coverage must not be negative")
		}
		pol.Coverage = *req.Coverage
	}
	if req.ValidFrom != nil {
		pol.ValidFrom = *req.ValidFrom
	}
	if req.ValidTo != nil {
		pol.ValidTo = *req.ValidTo
	}
	if pol.ValidTo.Before(pol.ValidFrom) {
		return nil, apperr.Domain("valid_to %s precedes valid_from %s",
			pol.ValidTo.Format("2006-01-02"), pol.ValidFrom.Format("2006-01-02"))
	}

	if err := s.repo.Update(ctx, pol); err != nil {
		return nil, fmt.Errorf("update insurance policy %d: %w", id, err)
	}
	return pol, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) get(ctx context.Context, id int) (*Policy, error) {
	pol, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("insurance policy %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get insurance policy %d: %w", id, err)
	}
	return pol, nil
}

func (s *Service) checkRefs(ctx context.Context, patientID uuid.UUID, financingID int) error {
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return fmt.Errorf("check patient %s: %w", patientID, err)
	}
	if !ok {
		return apperr.NotFound("patient %s not found", patientID)
	}
	return s.checkFinancing(ctx, financingID)
}

func (s *Service) checkFinancing(ctx context.Context, id int) error {
	ok, err := s.financing.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check financing source %d: %w", id, err)
	}
	if !ok {
		return apperr.NotFound("financing source %d not found", id)
	}
	return nil
}

func (s *Service) checkNumber(ctx context.Context, number string, excludeID int) error {
	taken, err := s.repo.PolicyNumberTaken(ctx, number, excludeID)
	if err != nil {
		return fmt.Errorf("check policy number %q: %w", number, err)
	}
	if taken {
		return apperr.AlreadyExists("policy %q already exists", number)
	}
	return nil
}
