package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// EchoBearerAuth returns an Echo middleware that requires "Authorization: Bearer {token}".
// An empty token disables the check.
func EchoBearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}

			provided := extractToken(c.Request())
			if provided == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			return next(c)
		}
	}
}

func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
