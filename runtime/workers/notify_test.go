package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replydesk/domain/event"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []event.Type
}

func (h *recordingHandler) Handle(e event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e.Type)
}

func (h *recordingHandler) Seen() []event.Type {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.Type(nil), h.seen...)
}

func TestNotify_EveryHandlerSeesEveryEvent(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	events := make(chan event.Event, 4)
	first := &recordingHandler{}
	second := &recordingHandler{}
	w := NewNotifyWorker(log, events, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- w.Run(ctx) }()

	events <- event.New(event.MessageQueuedType, event.MessageQueued{})
	events <- event.New(event.TickFailedType, event.TickFailed{Reason: "boom"})

	req.Eventually(func() bool { return len(second.Seen()) == 2 }, time.Second, 10*time.Millisecond)
	req.Equal([]event.Type{event.MessageQueuedType, event.TickFailedType}, first.Seen())
	req.Equal([]event.Type{event.MessageQueuedType, event.TickFailedType}, second.Seen())

	cancel()
	req.NoError(<-finished)
}

func TestNotify_StopsWhenChannelCloses(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	events := make(chan event.Event, 1)
	w := NewNotifyWorker(log, events)

	finished := make(chan error, 1)
	go func() { finished <- w.Run(context.Background()) }()

	close(events)

	select {
	case err := <-finished:
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("Notify worker should stop when its channel closes")
	}
}
