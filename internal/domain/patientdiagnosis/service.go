package patientdiagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/pkg/pagination"
)

// PatientChecker verifies that the referenced patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// DiagnosisChecker verifies that the referenced diagnosis exists.
type DiagnosisChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo      Repository
	patients  PatientChecker
	diagnoses DiagnosisChecker
}

func NewService(repo Repository, patients PatientChecker, diagnoses DiagnosisChecker) *Service {
	return &Service{repo: repo, patients: patients, diagnoses: diagnoses}
}

func (s *Service) GetByID(ctx context.Context, id int) (*Record, error) {
	return s.get(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, p pagination.Params) ([]*Record, int, error) {
	return s.repo.ListByPatient(ctx, patientID, p.Limit, p.Offset())
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	if req.DiagnosedAt.IsZero() {
		return nil, apperr.Validation("diagnosed_at is required")
	}
	ok, err := s.patients.Exists(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("check patient %s: %w", req.PatientID, err)
	}
	if !ok {
		return nil, apperr.NotFound("patient %s not found", req.PatientID)
	}
	ok, err = s.diagnoses.Exists(ctx, req.DiagnosisID)
	if err != nil {
		return nil, fmt.Errorf("check diagnosis %d: %w", req.DiagnosisID, err)
	}
	if !ok {
		return nil, apperr.NotFound("diagnosis %d not found", req.DiagnosisID)
	}
	if err := s.checkTriple(ctx, req.PatientID, req.DiagnosisID, req.DiagnosedAt, 0); err != nil {
		return nil, err
	}

	rec := &Record{
		PatientID:   req.PatientID,
		DiagnosisID: req.DiagnosisID,
		DiagnosedAt: req.DiagnosedAt,
		Note:        req.Note,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create patient diagnosis: %w", err)
	}
	return rec, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Record, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiagnosedAt != nil && !req.DiagnosedAt.Equal(rec.DiagnosedAt) {
		if err := s.checkTriple(ctx, rec.PatientID, rec.DiagnosisID, *req.DiagnosedAt, id); err != nil {
			return nil, err
		}
		rec.DiagnosedAt = *req.DiagnosedAt
	}
	if req.Note != nil {
		rec.Note = *req.Note
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update patient diagnosis %d: %w", id, err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) get(ctx context.Context, id int) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient diagnosis %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient diagnosis %d: %w", id, err)
	}
	return rec, nil
}

func (s *Service) checkTriple(ctx context.Context, patientID uuid.UUID, diagnosisID int, date time.Time, excludeID int) error {
	exists, err := s.repo.TripleExists(ctx, patientID, diagnosisID, date, excludeID)
	if err != nil {
		return fmt.Errorf("check diagnosis triple: %w", err)
	}
	if exists {
		return apperr.AlreadyExists("diagnosis %d already recorded for patient %s on %s",
			diagnosisID, patientID, date.Format("2006-01-02"))
	}
	return nil
}
