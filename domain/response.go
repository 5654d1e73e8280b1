package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResponseKind distinguishes drafts produced by the generation
// collaborator from text typed by the operator.
type ResponseKind string

const (
	ResponseGenerated ResponseKind = "generated"
	ResponseManual    ResponseKind = "manual"
)

// Response is a reply attached to a Message. Content is mutable only
// through the edit flow; IsSent is set exactly once, after the transport
// confirmed delivery.
type Response struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	Content   string
	Kind      ResponseKind
	IsSent    bool
	SentAt    *time.Time
	CreatedAt time.Time
}
