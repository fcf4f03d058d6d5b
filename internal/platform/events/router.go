package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// ModelHandler reacts to one action for one catalog model. The data argument
// is the raw payload body; handlers decode their own schema.
type ModelHandler func(ctx context.Context, data json.RawMessage) error

// Router dispatches envelopes to handlers registered per (model, action).
// Messages for other destinations, unexpected sources or unregistered models
// are skipped.
// Handler failures are logged and committed, never retried.
type Router struct {
	destination string
	source      string
	handlers    map[string]map[Action]ModelHandler
	logger      zerolog.Logger
}

func NewRouter(destination string, logger zerolog.Logger) *Router {
	return &Router{
		destination: destination,
		handlers:    make(map[string]map[Action]ModelHandler),
		logger:      logger.With().Str("component", "events-router").Logger(),
	}
}

// ExpectSource restricts dispatch to envelopes published by the named
// service. Left unset, any source is accepted.
func (r *Router) ExpectSource(source string) {
	r.source = source
}

// Register adds a handler for one model/action pair.
func (r *Router) Register(model string, action Action, handler ModelHandler) {
	if r.handlers[model] == nil {
		r.handlers[model] = make(map[Action]ModelHandler)
	}
	r.handlers[model][action] = handler
}

// Dispatch routes a raw message. The returned error is always nil for
// business failures (logged, committed); it is reserved for future use.
func (r *Router) Dispatch(ctx context.Context, raw []byte) error {
	env, err := ParseEnvelope(raw)
	if err != nil {
		r.logger.Warn().Err(err).Msg("skipping malformed message")
		return nil
	}

	if env.Destination != "" && env.Destination != r.destination {
		return nil
	}
	if r.source != "" && env.Source != r.source {
		r.logger.Debug().Str("source", env.Source).Msg("unexpected source, skipping")
		return nil
	}

	actions, ok := r.handlers[env.Payload.Model]
	if !ok {
		r.logger.Debug().Str("model", env.Payload.Model).Msg("no handler for model, skipping")
		return nil
	}
	handler, ok := actions[env.Action]
	if !ok {
		r.logger.Debug().
			Str("model", env.Payload.Model).
			Str("action", string(env.Action)).
			Msg("no handler for action, skipping")
		return nil
	}

	if err := handler(ctx, env.Payload.Data); err != nil {
		r.logger.Error().Err(err).
			Str("source", env.Source).
			Str("model", env.Payload.Model).
			Str("action", string(env.Action)).
			Msg("catalog sync handler failed")
	}
	return nil
}
