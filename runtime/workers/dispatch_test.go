package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"replydesk/classify"
	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/mocks"
)

func TestDispatch_TickStoresClassifiedAndEmits(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	repo := mocks.NewMockIMessageRepository(ctrl)

	classifier, err := classify.NewClassifier()
	req.NoError(err)

	batch := []domain.RawMessage{
		{Source: domain.SourceGmail, Sender: "client@corp.com", Content: "Invoice for the project, please review the contract", ReceivedAt: time.Now().UTC()},
		{Source: domain.SourceTelegram, Sender: "flaky", Content: "this one will not fit on disk", ReceivedAt: time.Now().UTC()},
		{Source: domain.SourceSlack, Sender: "teammate", Content: "need help, the deploy issue is back", ReceivedAt: time.Now().UTC()},
	}
	registry.EXPECT().GetAllMessages(gomock.Any()).Return(batch).Times(1)
	registry.EXPECT().GetAllMessages(gomock.Any()).Return(nil).AnyTimes()

	// One message failing to persist must not sink the rest of the batch
	var stored atomic.Int32
	repo.EXPECT().
		Store(gomock.Any()).
		DoAndReturn(func(m domain.Message) error {
			if m.Sender == "flaky" {
				return fmt.Errorf("disk full")
			}
			stored.Add(1)
			return nil
		}).
		Times(3)

	flushed := make(chan struct{})
	repo.EXPECT().Flush().DoAndReturn(func() error {
		close(flushed)
		return nil
	}).Times(1)

	events := make(chan event.Event, 16)
	w := NewDispatchWorker(log, registry, classifier, repo, events, 20*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- w.Run(ctx) }()

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: the batch never got flushed")
	}
	cancel()
	req.ErrorIs(<-finished, context.Canceled)

	req.EqualValues(2, stored.Load())

	var queued []domain.Message
drain:
	for {
		select {
		case evt := <-events:
			if payload, ok := evt.Payload.(event.MessageQueued); ok {
				queued = append(queued, payload.Message)
			}
		default:
			break drain
		}
	}

	// Only persisted messages produce events
	req.Len(queued, 2)
	senders := lo.Map(queued, func(m domain.Message, _ int) string { return m.Sender })
	req.NotContains(senders, "flaky")

	bySender := lo.KeyBy(queued, func(m domain.Message) string { return m.Sender })
	gmail := bySender["client@corp.com"]
	req.NotEqual(uuid.Nil, gmail.ID)
	req.Equal(domain.StatusPending, gmail.Status)
	req.Equal(domain.CategoryBusiness, gmail.Category)
	req.Equal(domain.CategorySupport, bySender["teammate"].Category)
}

func TestDispatch_FlushFailureBacksOffAndResumes(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	repo := mocks.NewMockIMessageRepository(ctrl)

	classifier, err := classify.NewClassifier()
	req.NoError(err)

	batch := []domain.RawMessage{
		{Source: domain.SourceGmail, Sender: "someone", Content: "hello there", ReceivedAt: time.Now().UTC()},
	}
	registry.EXPECT().GetAllMessages(gomock.Any()).Return(batch).AnyTimes()
	repo.EXPECT().Store(gomock.Any()).Return(nil).AnyTimes()

	var flushes atomic.Int32
	repo.EXPECT().Flush().DoAndReturn(func() error {
		if flushes.Add(1) == 1 {
			return fmt.Errorf("segment write failed")
		}
		return nil
	}).AnyTimes()

	events := make(chan event.Event, 64)
	w := NewDispatchWorker(log, registry, classifier, repo, events, 20*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- w.Run(ctx) }()

	// Then the failed tick is reported...
	deadline := time.After(2 * time.Second)
	sawTickFailed := false
	for !sawTickFailed {
		select {
		case evt := <-events:
			sawTickFailed = evt.Type == event.TickFailedType
		case <-deadline:
			req.Fail("Timeout: no tick failure reported")
		}
	}

	// ...and the loop resumes on the normal cadence afterwards
	req.Eventually(func() bool { return flushes.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	req.ErrorIs(<-finished, context.Canceled)
}
