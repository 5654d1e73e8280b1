package workers

import (
	"context"
	"log/slog"

	"replydesk/domain/event"
)

// NotifyWorker drains the event channel and fans every event out to the
// handler chain.
//
// Best-effort only: no delivery guarantees, no ordering across
// producers, no retries. It serves notifications and observability,
// never domain logic.
type NotifyWorker struct {
	log      *slog.Logger
	events   <-chan event.Event
	handlers []event.Handler
}

func NewNotifyWorker(log *slog.Logger, events <-chan event.Event, handlers ...event.Handler) *NotifyWorker {
	return &NotifyWorker{log: log, events: events, handlers: handlers}
}

func (w *NotifyWorker) Run(ctx context.Context) error {
	w.log.Info("Starting notify worker", "handlers", len(w.handlers))

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.fanout(evt)
		}
	}
}

// fanout Every handler sees every event, in chain order.
func (w *NotifyWorker) fanout(evt event.Event) {
	for _, handler := range w.handlers {
		handler.Handle(evt)
	}
}
