package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/token"
)

// AuthCookieName is the cookie the login endpoint sets and this middleware
// reads.
const AuthCookieName = "auth-token"

// Context keys populated by Auth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Auth validates the session token and injects the caller's identity into
// context. The token is read from the auth-token cookie first, falling back
// to an Authorization bearer header.
func Auth(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, err := codec.DecodeAndValidate(raw)
			if err != nil {
				return err
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrTokenMissing
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrTokenInvalid
	}
	return parts[1], nil
}
