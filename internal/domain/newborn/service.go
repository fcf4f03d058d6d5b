package newborn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/domain/asset"
	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/rpn"
	"github.com/medreg/registry/pkg/pagination"
)

// PatientRegistry is the slice of the patient service the newborn journal
// needs: intake resolution and the clinic reassignment behind transfers.
type PatientRegistry interface {
	ResolveIIN(ctx context.Context, iin string) (uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetIIN(ctx context.Context, id uuid.UUID) (string, error)
	ReassignClinic(ctx context.Context, id uuid.UUID, clinicID int) error
}

// ClinicChecker verifies the transfer target organization exists.
type ClinicChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo        Repository
	patients    PatientRegistry
	clinics     ClinicChecker
	attachments rpn.AttachmentLookup
	log         zerolog.Logger
}

func NewService(repo Repository, patients PatientRegistry, clinics ClinicChecker, attachments rpn.AttachmentLookup, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		clinics:     clinics,
		attachments: attachments,
		log:         log.With().Str("component", "newborn").Logger(),
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

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Asset, error) {
	patientID, err := s.patients.ResolveIIN(ctx, req.PatientIIN)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, patientID, req)
}

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
	if req.BirthDate.IsZero() {
		return nil, apperr.Validation("birth_date is required")
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
		BirthDate: req.BirthDate,
		Newborn:   req.Newborn,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create newborn asset: %w", err)
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
	if req.BirthDate != nil {
		a.BirthDate = *req.BirthDate
	}
	if req.Diagnoses != nil {
		a.Diagnoses = req.Diagnoses
	}
	if req.Newborn != nil {
		a.Newborn = req.Newborn
	}
	if req.Note != nil {
		a.Note = req.Note
	}

	a.Touch()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update newborn asset %s: %w", id, err)
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

// Transfer reassigns the linked patient to another organization and resets
// the asset's delivery status so the receiving organization processes it
// anew. The patient must hold an active attachment in the population
// registry.
func (s *Service) Transfer(ctx context.Context, id uuid.UUID, req TransferRequest) (*Asset, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == asset.StatusCancelled {
		return nil, apperr.Domain("cannot transfer a cancelled asset")
	}

	ok, err := s.clinics.Exists(ctx, req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("check organization %d: %w", req.OrganizationID, err)
	}
	if !ok {
		return nil, apperr.NotFound("medical organization %d not found", req.OrganizationID)
	}

	iin, err := s.patients.GetIIN(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	att, err := s.attachments.GetAttachment(ctx, iin)
	if err != nil {
		return nil, err
	}
	if !att.Active {
		return nil, apperr.Domain("patient %s has no active attachment", iin)
	}

	if err := s.patients.ReassignClinic(ctx, a.PatientID, req.OrganizationID); err != nil {
		return nil, err
	}
	if err := a.SetDeliveryStatus(asset.DeliveryReceived); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("persist newborn asset %s: %w", id, err)
	}
	s.log.Info().Stringer("asset_id", a.ID).Int("organization_id", req.OrganizationID).
		Msg("newborn transferred")
	return a, nil
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
		return nil, fmt.Errorf("persist newborn asset %s: %w", id, err)
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
		return nil, apperr.NotFound("newborn asset %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get newborn asset %s: %w", id, err)
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
