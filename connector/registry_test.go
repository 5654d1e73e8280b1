package connector

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/errors"
	"replydesk/logs"

	"github.com/stretchr/testify/require"
)

// stubConnector is a scriptable Connector for registry tests.
type stubConnector struct {
	source         domain.Source
	mode           domain.ConnectorMode
	connectErr     error
	panicOnConnect bool
	batch          []domain.RawMessage
	fetchErr       error
	sendErr        error

	mu        sync.Mutex
	connected bool
	sent      []string
}

func (s *stubConnector) Source() domain.Source { return s.source }

func (s *stubConnector) Connect(context.Context) error {
	if s.panicOnConnect {
		panic("boom")
	}
	if s.connectErr != nil {
		return s.connectErr
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *stubConnector) FetchMessages(context.Context) ([]domain.RawMessage, error) {
	return s.batch, s.fetchErr
}

func (s *stubConnector) SendMessage(_ context.Context, recipient, content string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	s.sent = append(s.sent, recipient+":"+content)
	s.mu.Unlock()
	return nil
}

func (s *stubConnector) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *stubConnector) State() domain.ConnectorStatus {
	return domain.ConnectorStatus{Source: s.source, Mode: s.mode, Connected: s.IsConnected()}
}

func testLog() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelError)
}

func TestRegistry_ConnectAllIsolatesFailures(t *testing.T) {
	req := require.New(t)

	failing := &stubConnector{source: domain.SourceLinkedin, mode: domain.ModeReal, panicOnConnect: true}
	healthy := &stubConnector{source: domain.SourceTelegram, mode: domain.ModeReal}
	fallback := func(source domain.Source) Connector {
		return &stubConnector{source: source, mode: domain.ModeSimulated}
	}

	events := make(chan event.Event, 4)
	registry := NewRegistry(testLog(), map[domain.Source]Connector{
		domain.SourceLinkedin: failing,
		domain.SourceTelegram: healthy,
	}, fallback, events)

	registry.ConnectAll(context.Background())

	// The healthy source connected despite its neighbour panicking
	req.True(healthy.IsConnected())

	// The panicking real variant was replaced by a connected simulator
	status := registry.Status()
	req.Equal(domain.ModeSimulated, status[domain.SourceLinkedin].Mode)
	req.True(status[domain.SourceLinkedin].Connected)

	received := <-events
	req.Equal(event.ConnectorFallbackType, received.Type)
	payload, ok := received.Payload.(event.ConnectorFallback)
	req.True(ok)
	req.Equal(domain.SourceLinkedin, payload.Source)
}

func TestRegistry_AuthFailureTriggersSubstitution(t *testing.T) {
	req := require.New(t)

	real := &stubConnector{source: domain.SourceGmail, mode: domain.ModeReal, connectErr: errors.ErrAuthentication}
	fallback := func(source domain.Source) Connector {
		return &stubConnector{source: source, mode: domain.ModeSimulated}
	}
	registry := NewRegistry(testLog(), map[domain.Source]Connector{domain.SourceGmail: real}, fallback, nil)

	registry.ConnectAll(context.Background())

	status := registry.Status()[domain.SourceGmail]
	req.Equal(domain.ModeSimulated, status.Mode)
	req.True(status.Connected)
}

func TestRegistry_GetAllMessagesSkipsDisconnectedAndTagsSource(t *testing.T) {
	req := require.New(t)

	connected := &stubConnector{
		source:    domain.SourceTelegram,
		connected: true,
		batch: []domain.RawMessage{
			{Sender: "aunt.julia", Content: "dinner?", ReceivedAt: time.Now()},
			{Sender: "mark", Content: "invoice", ReceivedAt: time.Now()},
		},
	}
	disconnected := &stubConnector{
		source: domain.SourceGmail,
		batch:  []domain.RawMessage{{Sender: "ghost", Content: "should never surface"}},
	}
	broken := &stubConnector{source: domain.SourceSlack, connected: true, fetchErr: errors.ErrTransientProvider}

	registry := NewRegistry(testLog(), map[domain.Source]Connector{
		domain.SourceTelegram: connected,
		domain.SourceGmail:    disconnected,
		domain.SourceSlack:    broken,
	}, nil, nil)

	merged := registry.GetAllMessages(context.Background())
	req.Len(merged, 2)
	for _, raw := range merged {
		req.Equal(domain.SourceTelegram, raw.Source)
	}
}

func TestRegistry_SendMessageValidatesSource(t *testing.T) {
	req := require.New(t)

	offline := &stubConnector{source: domain.SourceGmail}
	online := &stubConnector{source: domain.SourceTelegram, connected: true}
	registry := NewRegistry(testLog(), map[domain.Source]Connector{
		domain.SourceGmail:    offline,
		domain.SourceTelegram: online,
	}, nil, nil)

	req.ErrorIs(registry.SendMessage(context.Background(), "pigeon", "bob", "hi"), errors.ErrUnknownSource)
	req.ErrorIs(registry.SendMessage(context.Background(), domain.SourceGmail, "bob", "hi"), errors.ErrSourceDisconnected)

	req.NoError(registry.SendMessage(context.Background(), domain.SourceTelegram, "bob", "hi"))
	req.Equal([]string{"bob:hi"}, online.sent)
}

func TestBuildRegistry_TwoTierPolicy(t *testing.T) {
	req := require.New(t)

	registry := BuildRegistry(testLog(), Credentials{
		TelegramToken: "secret",
		SimulatorSeed: 7,
	}, nil)

	status := registry.Status()
	req.Len(status, len(domain.KnownSources()))
	req.Equal(domain.ModeReal, status[domain.SourceTelegram].Mode)
	for _, source := range []domain.Source{domain.SourceGmail, domain.SourceLinkedin, domain.SourceFacebook, domain.SourceInstagram, domain.SourceSlack} {
		req.Equal(domain.ModeSimulated, status[source].Mode, "source=%s,", source)
	}
}

func TestBuildRegistry_RPMOverride(t *testing.T) {
	req := require.New(t)

	registry := BuildRegistry(testLog(), Credentials{
		TelegramToken: "secret",
		SimulatorSeed: 7,
		RPMOverride:   5,
	}, nil)

	// Real variant and simulators alike start on the overridden budget
	for source, status := range registry.Status() {
		req.Equal(5, status.Budget, "source=%s,", source)
	}
}
