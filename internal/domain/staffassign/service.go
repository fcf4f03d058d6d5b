package staffassign

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/domain/asset"
	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/pkg/pagination"
)

// PatientDirectory resolves patients for intake. The registry service
// satisfies it.
type PatientDirectory interface {
	ResolveIIN(ctx context.Context, iin string) (uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	log      zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		log:      log.With().Str("component", "staffassign").Logger(),
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, p pagination.Params) ([]*ListItem, int, error) {
	items, total, err := s.repo.List(ctx, f, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	views := make([]*ListItem, len(items))
	for i, a := range items {
		views[i] = a.listItem()
	}
	return views, total, nil
}

// Create assigns a staff member to the patient resolved by IIN.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Asset, error) {
	patientID, err := s.patients.ResolveIIN(ctx, req.PatientIIN)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, patientID, req)
}

// CreateByPatientID assigns a staff member to a known patient ID.
func (s *Service) CreateByPatientID(ctx context.Context, patientID uuid.UUID, req CreateRequest) (*Asset, error) {
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check patient %s: %w", patientID, err)
	}
	if !ok {
		return nil, apperr.NotFound("patient %s not found", patientID)
	}
	return s.create(ctx, patientID, req)
}

func (s *Service) create(ctx context.Context, patientID uuid.UUID, req CreateRequest) (*Asset, error) {
	if req.StaffName == "" {
		return nil, apperr.Validation("staff_name is required")
	}
	if req.Position == "" {
		return nil, apperr.Validation("position is required")
	}
	if req.AssignedFrom.IsZero() {
		return nil, apperr.Validation("assigned_from is required")
	}
	if err := s.checkBGAssetID(ctx, req.BGAssetID); err != nil {
		return nil, err
	}

	a := &Asset{
		Record: asset.Record{
			BGAssetID:      req.BGAssetID,
			PatientID:      patientID,
			Status:         asset.StatusRegistered,
			DeliveryStatus: asset.DeliveryReceived,
			Note:           req.Note,
		},
		StaffName:    req.StaffName,
		Position:     req.Position,
		Department:   req.Department,
		AssignedFrom: req.AssignedFrom,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create staff assignment: %w", err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Asset, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := a.UpdateStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.StaffName != nil {
		if *req.StaffName == "" {
			return nil, apperr.Validation("staff_name cannot be empty")
		}
		a.StaffName = *req.StaffName
	}
	if req.Position != nil {
		if *req.Position == "" {
			return nil, apperr.Validation("position cannot be empty")
		}
		a.Position = *req.Position
	}
	if req.Department != nil {
		a.Department = *req.Department
	}
	if req.Note != nil {
		a.Note = req.Note
	}

	a.Touch()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update staff assignment %s: %w", id, err)
	}
	return a, nil
}

// Terminate ends the assignment. The termination date must not precede the
// assignment start, and a terminated or cancelled assignment stays final.
func (s *Service) Terminate(ctx context.Context, id uuid.UUID, req TerminateRequest) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error {
		if a.TerminatedAt != nil {
			return apperr.Domain("assignment %s is already terminated", a.ID)
		}
		if a.Status == asset.StatusCancelled {
			return apperr.Domain("cancelled assignment cannot be terminated")
		}
		if req.TerminatedAt.IsZero() {
			return apperr.Validation("terminated_at is required")
		}
		if req.TerminatedAt.Before(a.AssignedFrom) {
			return apperr.Domain("terminated_at precedes assigned_from")
		}
		at := req.TerminatedAt
		a.TerminatedAt = &at
		if req.Note != nil {
			a.Note = req.Note
		}
		a.Touch()
		s.log.Info().Str("asset_id", a.ID.String()).Time("terminated_at", at).
			Msg("staff assignment terminated")
		return nil
	})
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID, note *string) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error { return a.Confirm(note) })
}

func (s *Service) Refuse(ctx context.Context, id uuid.UUID, note *string) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error { return a.Refuse(note) })
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error { return a.Cancel() })
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, mutator func(*Asset) error) (*Asset, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutator(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("persist staff assignment %s: %w", id, err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !a.Deletable() {
		return apperr.Domain("confirmed asset cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("staff assignment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get staff assignment %s: %w", id, err)
	}
	return a, nil
}

func (s *Service) checkBGAssetID(ctx context.Context, bgAssetID *string) error {
	if bgAssetID == nil || *bgAssetID == "" {
		return nil
	}
	exists, err := s.repo.BGAssetIDExists(ctx, *bgAssetID)
	if err != nil {
		return fmt.Errorf("check bg_asset_id %q: %w", *bgAssetID, err)
	}
	if exists {
		return apperr.AlreadyExists("asset with bg_asset_id %q already exists", *bgAssetID)
	}
	return nil
}
