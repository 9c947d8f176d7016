package ports

import (
	"time"

	"github.com/google/uuid"
)

// Account event kinds emitted by the service.
const (
	EventSignup = "signup"
	EventLogin  = "login"
)

// AccountEvent describes a completed lifecycle action for async audit
// processing.
type AccountEvent struct {
	Kind     string
	Username string
	UserID   uuid.UUID
	Role     string
	At       time.Time
}

// EventSink accepts account events for asynchronous processing. Enqueue must
// not block the request path beyond channel-buffer capacity.
type EventSink interface {
	Enqueue(event AccountEvent)
}
