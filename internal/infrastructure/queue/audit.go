package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/core/ports"
)

// AuditRecorder writes account events to the structured log.
type AuditRecorder struct {
	log zerolog.Logger
}

// NewAuditRecorder creates an AuditRecorder emitting to log.
func NewAuditRecorder(log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{log: log}
}

// Record logs one account event. It never fails.
func (r *AuditRecorder) Record(_ context.Context, event ports.AccountEvent) error {
	r.log.Info().
		Str("kind", event.Kind).
		Str("username", event.Username).
		Str("user_id", event.UserID.String()).
		Str("role", event.Role).
		Time("at", event.At).
		Msg("account event")
	return nil
}
