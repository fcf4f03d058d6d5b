package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/platform/apperr"
)

// PermissionChecker answers "may user X perform action Y" questions.
type PermissionChecker interface {
	Check(ctx context.Context, userID, permission string) error
}

// PermissionClient asks the external Auth Service for permission decisions
// over HTTP and caches positive and negative answers in Redis. A cache entry
// maps user:permission to "1"/"0" with a short TTL so revocations propagate.
type PermissionClient struct {
	baseURL string
	http    *http.Client
	cache   *redis.Client
	ttl     time.Duration
	logger  zerolog.Logger
}

func NewPermissionClient(baseURL string, cache *redis.Client, logger zerolog.Logger) *PermissionClient {
	return &PermissionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
		ttl:     30 * time.Second,
		logger:  logger.With().Str("component", "auth-client").Logger(),
	}
}

type checkRequest struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

func (c *PermissionClient) cacheKey(userID, permission string) string {
	return "perm:" + userID + ":" + permission
}

// Check returns nil when the user holds the permission and AccessDenied
// otherwise. Auth-service outages surface as errors; requests are never
// allowed by default.
func (c *PermissionClient) Check(ctx context.Context, userID, permission string) error {
	key := c.cacheKey(userID, permission)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key).Result(); err == nil {
			if cached == "1" {
				return nil
			}
			return apperr.AccessDenied("permission %q denied", permission)
		}
	}

	allowed, err := c.ask(ctx, userID, permission)
	if err != nil {
		return fmt.Errorf("permission check %q: %w", permission, err)
	}

	if c.cache != nil {
		value := "0"
		if allowed {
			value = "1"
		}
		if err := c.cache.Set(ctx, key, value, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to cache permission decision")
		}
	}

	if !allowed {
		return apperr.AccessDenied("permission %q denied", permission)
	}
	return nil
}

func (c *PermissionClient) ask(ctx context.Context, userID, permission string) (bool, error) {
	payload, err := json.Marshal(checkRequest{UserID: userID, Permission: permission})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/permissions/check", strings.NewReader(string(payload)))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var body checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode auth service response: %w", err)
	}
	return body.Allowed, nil
}
