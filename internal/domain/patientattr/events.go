package patientattr

import (
	"context"
	"encoding/json"

	"github.com/medreg/registry/internal/platform/events"
)

const SyncModel = "patient_context_attribute"

type syncPayload struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Lang        string            `json:"lang"`
	NameLocales map[string]string `json:"name_locales"`
	DataType    DataType          `json:"data_type"`
}

func (s *Service) RegisterSync(router *events.Router) {
	router.Register(SyncModel, events.ActionCreate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		_, err := s.Create(ctx, CreateRequest{Name: p.Name, Lang: p.Lang, NameLocales: p.NameLocales, DataType: p.DataType})
		return err
	})

	router.Register(SyncModel, events.ActionUpdate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		req := UpdateRequest{Lang: p.Lang, NameLocales: p.NameLocales}
		if p.Name != "" {
			req.Name = &p.Name
		}
		if p.DataType != "" {
			req.DataType = &p.DataType
		}
		_, err := s.Update(ctx, p.ID, req)
		return err
	})

	router.Register(SyncModel, events.ActionDelete, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		return s.Delete(ctx, p.ID)
	})
}
