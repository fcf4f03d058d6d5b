package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, destination, model string, action Action, data any) []byte {
	t.Helper()
	body, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(Envelope{
		Source:      "catalog-service",
		Destination: destination,
		Action:      action,
		Payload:     Payload{Model: model, Data: body},
	})
	require.NoError(t, err)
	return raw
}

func TestParseEnvelope(t *testing.T) {
	raw := envelope(t, "registry-service", "nationality", ActionCreate, map[string]any{"name": "Kazakh"})
	env, err := ParseEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, "nationality", env.Payload.Model)
	assert.Equal(t, ActionCreate, env.Action)
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"action":"UPSERT","payload":{"model":"x"}}`))
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte(`{"action":"CREATE","payload":{}}`))
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestRouter_DispatchesToHandler(t *testing.T) {
	router := NewRouter("registry-service", zerolog.New(os.Stderr))

	var got string
	router.Register("nationality", ActionCreate, func(_ context.Context, data json.RawMessage) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return err
		}
		got = body.Name
		return nil
	})

	raw := envelope(t, "registry-service", "nationality", ActionCreate, map[string]any{"name": "Kazakh"})
	require.NoError(t, router.Dispatch(context.Background(), raw))
	assert.Equal(t, "Kazakh", got)
}

func TestRouter_SkipsOtherDestination(t *testing.T) {
	router := NewRouter("registry-service", zerolog.New(os.Stderr))

	called := false
	router.Register("nationality", ActionCreate, func(context.Context, json.RawMessage) error {
		called = true
		return nil
	})

	raw := envelope(t, "billing-service", "nationality", ActionCreate, map[string]any{"name": "x"})
	require.NoError(t, router.Dispatch(context.Background(), raw))
	assert.False(t, called, "message for another destination must be skipped")
}

func TestRouter_SourceFilter(t *testing.T) {
	router := NewRouter("registry-service", zerolog.New(os.Stderr))
	router.ExpectSource("catalog-service")

	calls := 0
	router.Register("nationality", ActionCreate, func(context.Context, json.RawMessage) error {
		calls++
		return nil
	})

	// envelope() publishes as catalog-service.
	raw := envelope(t, "registry-service", "nationality", ActionCreate, map[string]any{"name": "x"})
	require.NoError(t, router.Dispatch(context.Background(), raw))
	assert.Equal(t, 1, calls)

	foreign, err := json.Marshal(Envelope{
		Source:      "billing-service",
		Destination: "registry-service",
		Action:      ActionCreate,
		Payload:     Payload{Model: "nationality", Data: json.RawMessage(`{}`)},
	})
	require.NoError(t, err)
	require.NoError(t, router.Dispatch(context.Background(), foreign))
	assert.Equal(t, 1, calls, "message from an unexpected source must be skipped")
}

func TestRouter_HandlerErrorIsSwallowed(t *testing.T) {
	router := NewRouter("registry-service", zerolog.New(os.Stderr))
	router.Register("nationality", ActionDelete, func(context.Context, json.RawMessage) error {
		return errors.New("boom")
	})

	raw := envelope(t, "registry-service", "nationality", ActionDelete, map[string]any{"id": 1})
	// Log-and-commit contract: handler failures never propagate.
	assert.NoError(t, router.Dispatch(context.Background(), raw))
}

func TestRouter_MalformedMessageCommitted(t *testing.T) {
	router := NewRouter("registry-service", zerolog.New(os.Stderr))
	assert.NoError(t, router.Dispatch(context.Background(), []byte("garbage")))
}
