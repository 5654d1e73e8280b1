package runtime_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"replydesk/classify"
	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/logs"
	"replydesk/mocks"
	"replydesk/observability"
	"replydesk/repositories"
	"replydesk/runtime"
	"replydesk/runtime/workers"
)

type recordingNotifier struct {
	mu    sync.Mutex
	once  sync.Once
	done  chan struct{}
	texts []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{})}
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	n.texts = append(n.texts, text)
	n.mu.Unlock()
	n.once.Do(func() { close(n.done) })
	return nil
}

func (n *recordingNotifier) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	search, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	events := make(chan event.Event, 64)
	monitor := observability.NewMonitor(log)
	messages := repositories.NewMessageRepository(db, search, log, lo.ToPtr(100), 10)

	classifier, err := classify.NewClassifier()
	req.NoError(err)

	// Given two raw messages waiting at the providers
	batch := []domain.RawMessage{
		{
			Source:     domain.SourceLinkedin,
			Sender:     "recruiter@corp.com",
			Content:    "Let's schedule a call about the project budget",
			ReceivedAt: time.Now().UTC(),
		},
		{
			Source:     domain.SourceTelegram,
			Sender:     "mom",
			Content:    "Dinner this weekend?",
			ReceivedAt: time.Now().UTC(),
		},
	}

	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().GetAllMessages(gomock.Any()).Return(batch).Times(1)
	registry.EXPECT().GetAllMessages(gomock.Any()).Return(nil).AnyTimes()

	notifier := newRecordingNotifier()
	supervisor := workers.NewSupervisor(log, 200*time.Millisecond, events)
	orchestrator := runtime.NewOrchestrator(log, supervisor, registry, classifier,
		messages, monitor, events, runtime.Intervals{
			Poll:             50 * time.Millisecond,
			Backoff:          100 * time.Millisecond,
			Metric:           time.Minute,
			NotifyTimeout:    time.Second,
			LatencyThreshold: time.Minute,
		})
	orchestrator.Add(notifier)

	// When the fleet runs
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		req.NoError(orchestrator.Start(ctx))
	}()

	// Clean everything at the end of the test
	t.Cleanup(func() {
		orchestrator.Stop()
		<-stopped
		req.NoError(search.Close())
		req.NoError(db.Close())
	})

	// Then the operator hears about it, eventually
	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: no notification reached the operator")
	}

	// And both messages land in the queue, classified
	req.Eventually(func() bool {
		pending, listErr := messages.ListByStatus(domain.StatusPending)
		return listErr == nil && len(pending) == 2
	}, 2*time.Second, 20*time.Millisecond)

	pending, err := messages.ListByStatus(domain.StatusPending)
	req.NoError(err)
	bySender := lo.KeyBy(pending, func(m domain.Message) string { return m.Sender })
	req.Equal(domain.CategoryBusiness, bySender["recruiter@corp.com"].Category)
	req.Equal(domain.CategoryPersonal, bySender["mom"].Category)

	req.Eventually(func() bool {
		return monitor.Snapshot().Ingested == 2
	}, 2*time.Second, 20*time.Millisecond)
	req.NotEmpty(notifier.Texts())
}
