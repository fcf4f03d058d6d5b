// Package events consumes catalog synchronization messages from the shared
// Kafka topic and dispatches them to per-catalog handlers.
package events

import (
	"encoding/json"
	"fmt"
)

// Action is the catalog mutation carried by an envelope.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Payload identifies the catalog model an event applies to and carries the
// model-specific body.
type Payload struct {
	Model string          `json:"model"`
	Data  json.RawMessage `json:"data"`
}

// Envelope is the shared-topic message format. Consumers filter on source,
// destination and payload model; everything else is skipped and committed.
type Envelope struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Action      Action  `json:"action"`
	Payload     Payload `json:"payload"`
}

// ParseEnvelope decodes and minimally validates an envelope.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown action %q", env.Action)
	}
	if env.Payload.Model == "" {
		return nil, fmt.Errorf("envelope missing payload.model")
	}
	return &env, nil
}
