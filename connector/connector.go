// Package connector holds one adapter per external message source, a
// randomized simulator that can stand in for any of them, and the registry
// that owns the whole fleet.
package connector

import (
	"context"
	"sync"

	"replydesk/domain"
	"replydesk/errors"
)

// Connector is the uniform contract over one external source. All variants
// behave identically from the caller's point of view, real or simulated.
type Connector interface {
	Source() domain.Source
	// Connect is idempotent. A credentials rejection is recorded and
	// returned on every later call without touching the network again.
	Connect(ctx context.Context) error
	FetchMessages(ctx context.Context) ([]domain.RawMessage, error)
	SendMessage(ctx context.Context, recipient, content string) error
	IsConnected() bool
	State() domain.ConnectorStatus
}

// state carries the bookkeeping every variant shares: connected flag,
// cached auth failure, last error and the per-source rate limiter.
type state struct {
	source  domain.Source
	mode    domain.ConnectorMode
	limiter *rateLimiter

	mu          sync.Mutex
	connected   bool
	authFailure error
	lastError   string
	requests    uint64
}

func newState(source domain.Source, mode domain.ConnectorMode, budget int) state {
	return state{source: source, mode: mode, limiter: newRateLimiter(budget)}
}

// setBudget swaps the limiter for a different budget. Build time only,
// before any traffic flows.
func (s *state) setBudget(budget int) {
	s.limiter = newRateLimiter(budget)
}

func (s *state) Source() domain.Source {
	return s.source
}

func (s *state) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *state) State() domain.ConnectorStatus {
	budget, limitedUntil := s.limiter.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ConnectorStatus{
		Source:       s.source,
		Mode:         s.mode,
		Connected:    s.connected,
		LastError:    s.lastError,
		Requests:     s.requests,
		Budget:       budget,
		LimitedUntil: limitedUntil,
	}
}

// cachedFailure returns the permanent auth failure recorded by an earlier
// Connect, if any. See Connector.Connect.
func (s *state) cachedFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authFailure
}

// recordConnect stores the outcome of a connect probe. Auth rejections are
// kept for the process lifetime, transient failures are not, so a later
// ConnectAll may try again.
func (s *state) recordConnect(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.connected = true
		s.lastError = ""
		return nil
	}

	s.connected = false
	s.lastError = err.Error()
	if errors.Is(err, errors.ErrAuthentication) {
		s.authFailure = err
	}
	return err
}

// begin gates one fetch or send: the source must be connected and the
// rate limiter must have budget left. Retries of the same operation do
// not pass through here again.
func (s *state) begin() error {
	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()

	if !connected {
		return errors.ErrSourceDisconnected
	}
	if err := s.limiter.Allow(); err != nil {
		return err
	}

	s.mu.Lock()
	s.requests++
	s.mu.Unlock()
	return nil
}

func (s *state) finish(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}
