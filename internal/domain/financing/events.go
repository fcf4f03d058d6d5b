package financing

import (
	"context"
	"encoding/json"

	"github.com/medreg/registry/internal/platform/events"
)

const SyncModel = "financing_source"

type syncPayload struct {
	ID          int               `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Lang        string            `json:"lang"`
	NameLocales map[string]string `json:"name_locales"`
}

func (s *Service) RegisterSync(router *events.Router) {
	router.Register(SyncModel, events.ActionCreate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		_, err := s.Create(ctx, CreateRequest{Code: p.Code, Name: p.Name, Lang: p.Lang, NameLocales: p.NameLocales})
		return err
	})

	router.Register(SyncModel, events.ActionUpdate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		req := UpdateRequest{Lang: p.Lang, NameLocales: p.NameLocales}
		if p.Code != "" {
			req.Code = &p.Code
		}
		if p.Name != "" {
			req.Name = &p.Name
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
