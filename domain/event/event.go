package event

import (
	"time"

	"replydesk/domain"

	"github.com/google/uuid"
)

type Type string

const (
	MessageQueuedType       Type = "MESSAGE_QUEUED"
	ResponseSentType        Type = "RESPONSE_SENT"
	TickFailedType          Type = "TICK_FAILED"
	ConnectorFallbackType   Type = "CONNECTOR_FALLBACK"
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
)

// Event is the envelope moving through the notification pipeline.
// Payload holds one of the typed structs below, keyed by Type.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

// New wraps a payload with its type and a UTC timestamp.
func New(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}

// MessageQueued is emitted by the dispatcher for every persisted message.
type MessageQueued struct {
	Message domain.Message
}

// ResponseSent is emitted after a response was delivered through a connector.
type ResponseSent struct {
	ResponseID uuid.UUID
	MessageID  uuid.UUID
	Source     domain.Source
}

// TickFailed is emitted when a full dispatcher tick errored and the loop
// is backing off.
type TickFailed struct {
	Reason string
}

// ConnectorFallback is emitted when a real connector was replaced by its
// simulator during connection.
type ConnectorFallback struct {
	Source domain.Source
	Reason string
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}
