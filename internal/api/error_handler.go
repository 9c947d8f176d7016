package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Message
// carries a stable machine-readable code; Reason adds human-readable detail
// for validation failures only.
type errorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Reason    string `json:"reason,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"status", "message", "request_id"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		code, msg, reason := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{
			Status:    code,
			Message:   msg,
			RequestID: requestID,
			Reason:    reason,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Known domain errors → deterministic HTTP codes.
	switch {
	// Not-found and wrong-password collapse into one message so the
	// response does not reveal which usernames exist.
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
		return http.StatusUnauthorized, "invalid_username_or_password", ""
	case errors.Is(err, domain.ErrTokenMissing), errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "login_needed", ""
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, "username_already_exists", ""
	case errors.Is(err, domain.ErrDisplayNameTaken):
		return http.StatusConflict, "business_display_name_already_exists", ""
	case errors.Is(err, domain.ErrTooManyLoginAttempts):
		return http.StatusTooManyRequests, "too_many_login_attempts", ""
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "validation_failed", verr.Reason
	}

	var serr *domain.StoreError
	if errors.As(err, &serr) {
		log.Error().
			Err(err).
			Str("op", serr.Op).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("store failure")
		return http.StatusInternalServerError, "internal_error", ""
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), ""
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal_error", ""
}
