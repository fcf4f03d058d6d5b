package medorg

import (
	"context"
	"encoding/json"

	"github.com/medreg/registry/internal/platform/events"
)

const SyncModel = "medical_organization"

type syncPayload struct {
	ID             int               `json:"id"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Lang           string            `json:"lang"`
	NameLocales    map[string]string `json:"name_locales"`
	Address        string            `json:"address"`
	AddressLocales map[string]string `json:"address_locales"`
	Type           OrganizationType  `json:"org_type"`
}

func (s *Service) RegisterSync(router *events.Router) {
	router.Register(SyncModel, events.ActionCreate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		_, err := s.Create(ctx, CreateRequest{
			Code: p.Code, Name: p.Name, Lang: p.Lang, NameLocales: p.NameLocales,
			Address: p.Address, AddressLocales: p.AddressLocales, Type: p.Type,
		})
		return err
	})

	router.Register(SyncModel, events.ActionUpdate, func(ctx context.Context, data json.RawMessage) error {
		var p syncPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		req := UpdateRequest{Lang: p.Lang, NameLocales: p.NameLocales, AddressLocales: p.AddressLocales}
		if p.Code != "" {
			req.Code = &p.Code
		}
		if p.Name != "" {
			req.Name = &p.Name
		}
		if p.Address != "" {
			req.Address = &p.Address
		}
		if p.Type != "" {
			req.Type = &p.Type
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
