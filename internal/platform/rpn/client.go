// Package rpn talks to the RPN integration service, which owns population
// registry attachment data (which clinic a person is attached to).
package rpn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/platform/apperr"
)

// Attachment is the registry's view of a person's clinic attachment.
type Attachment struct {
	IIN              string `json:"iin"`
	AttachedClinicID int    `json:"attached_clinic_id"`
	Active           bool   `json:"active"`
}

// AttachmentLookup is implemented by the HTTP client and by test stubs.
type AttachmentLookup interface {
	GetAttachment(ctx context.Context, iin string) (*Attachment, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With().Str("component", "rpn-client").Logger(),
	}
}

// GetAttachment fetches the active attachment for a person by IIN.
func (c *Client) GetAttachment(ctx context.Context, iin string) (*Attachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/attachments/"+iin, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpn attachment lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperr.NotFound("no attachment found for iin %s", iin)
	default:
		return nil, fmt.Errorf("rpn service returned status %d", resp.StatusCode)
	}

	var att Attachment
	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return nil, fmt.Errorf("decode rpn response: %w", err)
	}
	return &att, nil
}
