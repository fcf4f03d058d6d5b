package maternity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

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
		log:      log.With().Str("component", "maternity").Logger(),
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

// Create registers a maternity stay for the patient resolved by IIN.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Asset, error) {
	patientID, err := s.patients.ResolveIIN(ctx, req.PatientIIN)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, patientID, req)
}

// CreateByPatientID registers a maternity stay for a known patient ID.
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
	if req.StayFrom.IsZero() {
		return nil, apperr.Validation("stay_from is required")
	}
	if req.StayTo != nil && req.StayTo.Before(req.StayFrom) {
		return nil, apperr.Domain("stay_to precedes stay_from")
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
		StayFrom:        req.StayFrom,
		StayTo:          req.StayTo,
		DeliveryOutcome: req.DeliveryOutcome,
		Mother:          req.Mother,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create maternity asset: %w", err)
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
	if req.DeliveryStatus != nil {
		if err := a.SetDeliveryStatus(*req.DeliveryStatus); err != nil {
			return nil, err
		}
	}
	if req.StayFrom != nil {
		a.StayFrom = *req.StayFrom
	}
	if req.StayTo != nil {
		a.StayTo = req.StayTo
	}
	if a.StayTo != nil && a.StayTo.Before(a.StayFrom) {
		return nil, apperr.Domain("stay_to precedes stay_from")
	}
	if req.DeliveryOutcome != nil {
		a.DeliveryOutcome = *req.DeliveryOutcome
	}
	if req.Diagnoses != nil {
		a.Diagnoses = req.Diagnoses
	}
	if req.Mother != nil {
		a.Mother = req.Mother
	}
	if req.Note != nil {
		a.Note = req.Note
	}

	a.Touch()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update maternity asset %s: %w", id, err)
	}
	return a, nil
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
		return nil, fmt.Errorf("persist maternity asset %s: %w", id, err)
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

// LoadFromBGFile bulk-imports journal records from a JSON file. Records with
// an already-imported bg_asset_id or an unknown patient IIN are skipped.
func (s *Service) LoadFromBGFile(ctx context.Context, path string) (*ImportResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bg file %s: %w", path, err)
	}
	var records []bgRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, apperr.Validation("malformed bg file: %v", err)
	}

	result := &ImportResult{}
	for _, rec := range records {
		exists, err := s.repo.BGAssetIDExists(ctx, rec.BGAssetID)
		if err != nil {
			return nil, fmt.Errorf("check bg_asset_id %q: %w", rec.BGAssetID, err)
		}
		if exists {
			result.SkippedDuplicate++
			continue
		}
		patientID, err := s.patients.ResolveIIN(ctx, rec.PatientIIN)
		if apperr.IsNotFound(err) {
			s.log.Warn().Str("iin", rec.PatientIIN).Str("bg_asset_id", rec.BGAssetID).
				Msg("bg import: unknown patient, record skipped")
			result.SkippedNoPatient++
			continue
		}
		if err != nil {
			return nil, err
		}

		bgID := rec.BGAssetID
		a := &Asset{
			Record: asset.Record{
				BGAssetID:      &bgID,
				PatientID:      patientID,
				Status:         asset.StatusRegistered,
				DeliveryStatus: asset.DeliveryReceived,
				Diagnoses:      rec.Diagnoses,
			},
			StayFrom:        rec.StayFrom,
			StayTo:          rec.StayTo,
			DeliveryOutcome: rec.DeliveryOutcome,
			Mother:          rec.Mother,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("import bg asset %q: %w", rec.BGAssetID, err)
		}
		result.Imported++
	}
	s.log.Info().Int("imported", result.Imported).
		Int("skipped_duplicate", result.SkippedDuplicate).
		Int("skipped_no_patient", result.SkippedNoPatient).
		Msg("bg import finished")
	return result, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("maternity asset %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get maternity asset %s: %w", id, err)
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
