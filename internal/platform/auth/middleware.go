package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medreg/registry/internal/platform/apperr"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// JWTMiddleware validates a bearer token signed with the shared secret and
// stores the claims on the echo context.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("user_roles", claims.Roles)
			return next(c)
		}
	}
}

// DevAuthMiddleware grants every request admin access. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", "dev-user")
			c.Set("user_roles", []string{"admin"})
			return next(c)
		}
	}
}

// RequireRole allows the request through when the caller holds at least one
// of the listed roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles, _ := c.Get("user_roles").([]string)
			for _, r := range userRoles {
				if allowed[r] {
					return next(c)
				}
			}
			return apperr.AccessDenied("requires one of roles: %s", strings.Join(roles, ", "))
		}
	}
}

// WritePermission guards mutating requests behind an external permission
// decision. Safe methods pass through without a check.
func WritePermission(checker PermissionChecker, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if err := checker.Check(c.Request().Context(), UserIDFromEcho(c), permission); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// UserIDFromEcho returns the authenticated user id, or empty.
func UserIDFromEcho(c echo.Context) string {
	uid, _ := c.Get("user_id").(string)
	return uid
}
