package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/courtside/accounts-api/internal/api/middleware"
	"github.com/courtside/accounts-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: a missing or malformed
// identity proves the middleware did not run, which is an auth failure, not a
// server bug.
func ctxIdentity(c echo.Context) (uuid.UUID, domain.Role, error) {
	id, _ := c.Get(middleware.CtxUserID).(uuid.UUID)
	role, _ := c.Get(middleware.CtxRole).(domain.Role)
	if id == uuid.Nil || !role.Valid() {
		return uuid.Nil, "", domain.ErrTokenMissing
	}
	return id, role, nil
}
