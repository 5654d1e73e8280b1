package connector

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/errors"
)

// Credentials carries the per-source secrets the factory decides with.
// A missing secret means the real variant cannot be built and the
// simulator is installed from the start.
type Credentials struct {
	TelegramToken  string
	GmailToken     string
	LinkedinToken  string
	FacebookToken  string
	InstagramToken string
	SlackToken     string
	SlackChannel   string

	// Sources restricts the fleet; empty means every known source.
	Sources []domain.Source
	// SimulatorSeed pins simulator randomness, zero picks a fresh seed.
	SimulatorSeed int64
	// RPMOverride replaces every per-source request budget when positive.
	RPMOverride int
}

// Registry owns one connector per configured source. When a real variant
// cannot connect, the registry swaps in a simulator and records the
// substitution, so callers keep a working fleet either way.
type Registry struct {
	log      *slog.Logger
	events   chan<- event.Event
	fallback func(source domain.Source) Connector

	mu         sync.RWMutex
	connectors map[domain.Source]Connector
}

func NewRegistry(log *slog.Logger, connectors map[domain.Source]Connector, fallback func(domain.Source) Connector, events chan<- event.Event) *Registry {
	return &Registry{
		log:        log,
		events:     events,
		fallback:   fallback,
		connectors: connectors,
	}
}

// BuildRegistry applies the two-tier policy: a real variant per source
// that has credentials, a simulator for the rest. The second tier runs
// later, in ConnectAll, when a real variant fails its probe.
func BuildRegistry(log *slog.Logger, creds Credentials, events chan<- event.Event) *Registry {
	seed := creds.SimulatorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fallback := func(source domain.Source) Connector {
		return overrideBudget(NewSimulator(log, source, seedFor(seed, source)), creds.RPMOverride)
	}

	sources := creds.Sources
	if len(sources) == 0 {
		sources = domain.KnownSources()
	}

	connectors := make(map[domain.Source]Connector, len(sources))
	for _, source := range sources {
		real, err := buildReal(log, creds, source)
		if err != nil {
			log.Warn("starting with simulator", "source", source, "reason", err)
			connectors[source] = fallback(source)
			continue
		}
		connectors[source] = overrideBudget(real, creds.RPMOverride)
	}
	return NewRegistry(log, connectors, fallback, events)
}

// overrideBudget applies the global RPM override to a freshly built
// connector. Budgets never change once traffic has started.
func overrideBudget(conn Connector, rpm int) Connector {
	if rpm > 0 {
		if holder, ok := conn.(interface{ setBudget(int) }); ok {
			holder.setBudget(rpm)
		}
	}
	return conn
}

func buildReal(log *slog.Logger, creds Credentials, source domain.Source) (Connector, error) {
	switch source {
	case domain.SourceTelegram:
		if creds.TelegramToken == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewTelegramConnector(log, creds.TelegramToken), nil
	case domain.SourceGmail:
		if creds.GmailToken == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewGmailConnector(log, creds.GmailToken), nil
	case domain.SourceLinkedin:
		if creds.LinkedinToken == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewLinkedinConnector(log, creds.LinkedinToken), nil
	case domain.SourceFacebook:
		if creds.FacebookToken == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewFacebookConnector(log, creds.FacebookToken), nil
	case domain.SourceInstagram:
		if creds.InstagramToken == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewInstagramConnector(log, creds.InstagramToken), nil
	case domain.SourceSlack:
		if creds.SlackToken == "" || creds.SlackChannel == "" {
			return nil, errors.ErrMissingCredentials
		}
		return NewSlackConnector(log, creds.SlackToken, creds.SlackChannel), nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSource, source)
	}
}

func budgetFor(source domain.Source) int {
	switch source {
	case domain.SourceTelegram:
		return telegramBudget
	case domain.SourceGmail:
		return gmailBudget
	case domain.SourceLinkedin:
		return linkedinBudget
	case domain.SourceFacebook:
		return facebookBudget
	case domain.SourceInstagram:
		return instagramBudget
	case domain.SourceSlack:
		return slackBudget
	default:
		return telegramBudget
	}
}

func seedFor(base int64, source domain.Source) int64 {
	h := fnv.New64a()
	h.Write([]byte(source))
	return base ^ int64(h.Sum64())
}

// ConnectAll probes every source in parallel. Each source records its
// own outcome; one failure or panic never blocks the others.
func (r *Registry) ConnectAll(ctx context.Context) {
	var wg sync.WaitGroup
	for source, conn := range r.snapshot() {
		wg.Add(1)
		go func(source domain.Source, conn Connector) {
			defer wg.Done()
			r.connectOne(ctx, source, conn)
		}(source, conn)
	}
	wg.Wait()
}

func (r *Registry) connectOne(ctx context.Context, source domain.Source, conn Connector) {
	defer func() {
		if cause := recover(); cause != nil {
			r.log.Error("connector panicked on connect", "source", source, "cause", cause)
			r.substitute(ctx, source, fmt.Sprintf("panic: %v", cause))
		}
	}()

	err := conn.Connect(ctx)
	if err == nil {
		r.log.Info("source connected", "source", source, "mode", conn.State().Mode)
		return
	}

	r.log.Warn("source failed to connect", "source", source, "error", err)
	if conn.State().Mode == domain.ModeReal {
		r.substitute(ctx, source, err.Error())
	}
}

// substitute installs a freshly connected simulator in place of a real
// variant that could not come up.
func (r *Registry) substitute(ctx context.Context, source domain.Source, reason string) {
	sim := r.fallback(source)
	if err := sim.Connect(ctx); err != nil {
		r.log.Error("simulator failed to connect", "source", source, "error", err)
		return
	}

	r.mu.Lock()
	r.connectors[source] = sim
	r.mu.Unlock()

	r.emit(event.New(event.ConnectorFallbackType, event.ConnectorFallback{Source: source, Reason: reason}))
	r.log.Info("simulator installed", "source", source, "reason", reason)
}

// GetAllMessages fetches from every currently connected source and merges
// the batches, tagged per source. A failing source is logged and skipped.
func (r *Registry) GetAllMessages(ctx context.Context) []domain.RawMessage {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		merged []domain.RawMessage
	)

	for source, conn := range r.snapshot() {
		if !conn.IsConnected() {
			continue
		}
		wg.Add(1)
		go func(source domain.Source, conn Connector) {
			defer wg.Done()
			defer func() {
				if cause := recover(); cause != nil {
					r.log.Error("connector panicked on fetch", "source", source, "cause", cause)
				}
			}()

			batch, err := conn.FetchMessages(ctx)
			if err != nil {
				r.log.Warn("fetch failed", "source", source, "error", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, raw := range batch {
				raw.Source = source
				merged = append(merged, raw)
			}
		}(source, conn)
	}

	wg.Wait()
	return merged
}

// SendMessage validates the source before delegating. Unknown or
// disconnected sources are reported failures, never panics.
func (r *Registry) SendMessage(ctx context.Context, source domain.Source, recipient, content string) error {
	r.mu.RLock()
	conn, ok := r.connectors[source]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownSource, source)
	}
	if !conn.IsConnected() {
		return fmt.Errorf("%w: %s", errors.ErrSourceDisconnected, source)
	}
	return conn.SendMessage(ctx, recipient, content)
}

func (r *Registry) Status() map[domain.Source]domain.ConnectorStatus {
	statuses := make(map[domain.Source]domain.ConnectorStatus)
	for source, conn := range r.snapshot() {
		statuses[source] = conn.State()
	}
	return statuses
}

func (r *Registry) snapshot() map[domain.Source]Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectors := make(map[domain.Source]Connector, len(r.connectors))
	for source, conn := range r.connectors {
		connectors[source] = conn
	}
	return connectors
}

func (r *Registry) emit(e event.Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- e:
	default:
		r.log.Warn("event channel full, dropping", "type", e.Type)
	}
}
