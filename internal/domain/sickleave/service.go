package sickleave

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
		log:      log.With().Str("component", "sickleave").Logger(),
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

// Create opens a sick leave for the patient resolved by IIN.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Asset, error) {
	patientID, err := s.patients.ResolveIIN(ctx, req.PatientIIN)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, patientID, req)
}

// CreateByPatientID opens a sick leave for a known patient ID.
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
	if req.PeriodFrom.IsZero() {
		return nil, apperr.Validation("period_from is required")
	}
	if req.PeriodTo.IsZero() {
		return nil, apperr.Validation("period_to is required")
	}
	if req.PeriodTo.Before(req.PeriodFrom) {
		return nil, apperr.Domain("period_to precedes period_from")
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
			Diagnoses:      req.Diagnoses,
			Note:           req.Note,
		},
		PeriodFrom: req.PeriodFrom,
		PeriodTo:   req.PeriodTo,
		WorkPlace:  req.WorkPlace,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create sick leave asset: %w", err)
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
	if req.WorkPlace != nil {
		a.WorkPlace = *req.WorkPlace
	}
	if req.Diagnoses != nil {
		a.Diagnoses = req.Diagnoses
	}
	if req.Note != nil {
		a.Note = req.Note
	}

	a.Touch()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update sick leave asset %s: %w", id, err)
	}
	return a, nil
}

// Close ends the incapacity period. The close date becomes the new period
// end and must not precede the period start.
func (s *Service) Close(ctx context.Context, id uuid.UUID, req CloseRequest) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error {
		if a.Closed {
			return apperr.Domain("sick leave %s is already closed", a.ID)
		}
		if req.ClosedAt.IsZero() {
			return apperr.Validation("closed_at is required")
		}
		if req.ClosedAt.Before(a.PeriodFrom) {
			return apperr.Domain("closed_at precedes period_from")
		}
		a.PeriodTo = req.ClosedAt
		a.Closed = true
		a.Touch()
		s.log.Info().Str("asset_id", a.ID.String()).Time("closed_at", req.ClosedAt).
			Msg("sick leave closed")
		return nil
	})
}

// Extend moves the period end forward. An earlier or equal date is rejected,
// as is extending a closed sick leave.
func (s *Service) Extend(ctx context.Context, id uuid.UUID, req ExtendRequest) (*Asset, error) {
	return s.mutate(ctx, id, func(a *Asset) error {
		if a.Closed {
			return apperr.Domain("closed sick leave %s cannot be extended", a.ID)
		}
		if !req.PeriodTo.After(a.PeriodTo) {
			return apperr.Domain("extension date must be after the current period end")
		}
		a.PeriodTo = req.PeriodTo
		a.Touch()
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
		return nil, fmt.Errorf("persist sick leave asset %s: %w", id, err)
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
		return nil, apperr.NotFound("sick leave asset %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get sick leave asset %s: %w", id, err)
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
