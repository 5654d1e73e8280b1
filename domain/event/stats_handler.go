package event

import (
	"log/slog"

	"replydesk/errors"
	"replydesk/observability"
)

// StatsHandler keeps the observability counters in step with the event
// stream. Useful for the debug endpoint and the viewer, never for
// domain decisions.
type StatsHandler struct {
	log     *slog.Logger
	monitor *observability.Monitor
}

func NewStatsHandler(log *slog.Logger, monitor *observability.Monitor) *StatsHandler {
	return &StatsHandler{log: log, monitor: monitor}
}

func (h *StatsHandler) Handle(event Event) {
	switch event.Type {
	case MessageQueuedType:
		payload, ok := event.Payload.(MessageQueued)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.monitor.IncrIngested(payload.Message.Category)
	case ResponseSentType:
		if _, ok := event.Payload.(ResponseSent); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.monitor.IncrSent()
	case TickFailedType:
		if _, ok := event.Payload.(TickFailed); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.monitor.IncrTickError()
	case RestartedAfterPanicType:
		if _, ok := event.Payload.(WorkerRestartedAfterPanic); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.monitor.IncrRestart()
	}
}
