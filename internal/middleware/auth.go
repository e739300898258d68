package middleware

import (
	"strings"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// Authenticate resolves the caller from a Bearer token. Requests without an
// Authorization header continue as anonymous; malformed or invalid tokens are rejected.
func Authenticate(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(callerKey, auth.Anonymous)
				return next(c)
			}

			// Expecting "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return apperrors.Unauthorized("invalid Authorization header format")
			}

			caller, err := tokens.Parse(parts[1])
			if err != nil {
				return apperrors.Unauthorized("invalid token")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := CallerFrom(c).Require(); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// CallerFrom returns the caller Authenticate stored, anonymous if none.
func CallerFrom(c echo.Context) auth.Caller {
	if caller, ok := c.Get(callerKey).(auth.Caller); ok {
		return caller
	}
	return auth.Anonymous
}
