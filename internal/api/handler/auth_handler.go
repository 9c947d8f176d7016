package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/courtside/accounts-api/internal/api/metrics"
	"github.com/courtside/accounts-api/internal/api/middleware"
	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/ports"
)

type AuthHandler struct {
	users    ports.UserService
	tokenTTL time.Duration
}

func NewAuthHandler(users ports.UserService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, tokenTTL: tokenTTL}
}

// Signup creates a new account with its role-shaped profile.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validationf("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := decodeSignupProfile(req.AccountType, req.Profile)
	if err != nil {
		return err
	}

	id, err := h.users.Signup(c.Request().Context(), ports.SignupInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Profile:         profile,
	})
	if err != nil {
		return err
	}

	metrics.SignupsTotal.WithLabelValues(req.AccountType).Inc()
	return c.JSON(http.StatusCreated, signupResponse{UserID: id})
}

// Login verifies credentials and returns the session token both in the body
// and as an HttpOnly cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validationf("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	encoded, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyLoginAttempts):
			metrics.LoginsThrottledTotal.Inc()
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, loginResponse{AuthToken: encoded})
}
