package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// State is where an operator's session sits between commands.
type State string

const (
	StateIdle           State = "idle"
	StateAwaitingManual State = "awaiting_manual_response"
	StateAwaitingEdit   State = "awaiting_edit_feedback"
)

// Session is the ephemeral per-operator conversation state. At most one
// outstanding request: a new manual or edit request silently replaces
// the previous one.
type Session struct {
	Operator   string
	State      State
	MessageID  uuid.UUID // set while awaiting a manual response
	ResponseID uuid.UUID // set while awaiting edit feedback
	Token      string    // signed session token, empty before login
}

// SessionStore keeps sessions in memory, one per operator. Nothing here
// survives a restart, which is fine for state that only bridges two
// consecutive console lines.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Get returns a copy of the operator's session, a fresh idle one if the
// operator was never seen.
func (s *SessionStore) Get(operator string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[operator]
	if !ok {
		return Session{Operator: operator, State: StateIdle}
	}
	return session
}

// Update applies a mutation to the operator's session under the lock.
func (s *SessionStore) Update(operator string, apply func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[operator]
	if !ok {
		session = Session{Operator: operator, State: StateIdle}
	}
	apply(&session)
	s.sessions[operator] = session
}

// ClearPending drops any outstanding manual or edit request, keeping the
// operator logged in.
func (s *SessionStore) ClearPending(operator string) {
	s.Update(operator, func(session *Session) {
		session.State = StateIdle
		session.MessageID = uuid.Nil
		session.ResponseID = uuid.Nil
	})
}
