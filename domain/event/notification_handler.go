package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"replydesk/contract"
	"replydesk/errors"
)

const previewLength = 120

// NotificationHandler turns queued-message events into operator-facing
// text and pushes it through the configured Notifier. Delivery is
// best-effort; a failed notification is logged, never retried.
type NotificationHandler struct {
	log      *slog.Logger
	notifier contract.Notifier
	timeout  time.Duration
}

func NewNotificationHandler(log *slog.Logger, notifier contract.Notifier, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{log: log, notifier: notifier, timeout: timeout}
}

func (h *NotificationHandler) Handle(event Event) {
	switch event.Type {
	case MessageQueuedType:
		payload, ok := event.Payload.(MessageQueued)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.deliver(formatQueued(payload))
	case ConnectorFallbackType:
		payload, ok := event.Payload.(ConnectorFallback)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.deliver(fmt.Sprintf("Connector %s switched to simulator: %s", payload.Source, payload.Reason))
	}
}

func (h *NotificationHandler) deliver(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.notifier.Notify(ctx, text); err != nil {
		h.log.Warn("Notification delivery failed", "error", err)
	}
}

func formatQueued(payload MessageQueued) string {
	m := payload.Message
	return fmt.Sprintf("New %s message %s from %s via %s: %s",
		m.Category, shortID(m.ID.String()), m.Sender, m.Source, preview(m.Content))
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
