package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the caller's identity and role-shaped profile.
func (h *UserHandler) Me(c echo.Context) error {
	id, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	info, err := h.users.PersonalInfo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, renderPersonalInfo(info))
}

// UpdateMe applies partial identity and profile patches to the caller's
// account. An entirely empty patch succeeds without touching the store.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validationf("invalid payload")
	}

	in := ports.UpdateInput{User: domain.UserPatch{Username: req.Username}}
	if len(req.Profile) > 0 {
		patch, err := decodeProfilePatch(req.AccountType, req.Profile)
		if err != nil {
			return err
		}
		in.Profile = patch
	}

	if err := h.users.UpdatePersonalInfo(c.Request().Context(), id, role, in); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword re-salts and re-hashes the caller's password.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	id, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validationf("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// The store keys password updates by username; resolve the caller's own.
	info, err := h.users.PersonalInfo(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if err := h.users.UpdatePassword(c.Request().Context(), info.Username, req.NewPassword, req.ConfirmNewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an account by username. Restricted to admins by RBAC.
func (h *UserHandler) Delete(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return domain.Validationf("username is required")
	}

	id, err := h.users.DeleteByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{UserID: id})
}
