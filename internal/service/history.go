package service

import (
	"sync"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// ConversationStore keeps a bounded, ordered question/answer history per
// session. Session identifiers are opaque strings supplied by the caller;
// unknown sessions behave as fresh, empty sessions.
type ConversationStore struct {
	mu          sync.Mutex
	sessions    map[string][]domain.ConversationTurn
	maxTurns    int
	idleTimeout time.Duration
	now         func() time.Time
}

// NewConversationStore creates a store capping each session at maxTurns and
// sweeping sessions idle longer than idleTimeout.
func NewConversationStore(maxTurns int, idleTimeout time.Duration) *ConversationStore {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &ConversationStore{
		sessions:    make(map[string][]domain.ConversationTurn),
		maxTurns:    maxTurns,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Append records a completed turn, evicting the oldest turn first when the
// session is at capacity (history is bounded to keep prompt size stable).
func (s *ConversationStore) Append(sessionID string, turn domain.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepIdleLocked()

	turns := s.sessions[sessionID]
	if len(turns) >= s.maxTurns {
		turns = turns[len(turns)-s.maxTurns+1:]
	}
	s.sessions[sessionID] = append(turns, turn)
}

// History returns the session's turns, most recent last. The returned slice
// is a copy; callers can hold it across the rest of a query safely.
func (s *ConversationStore) History(sessionID string) []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Clear drops a session's history. Clearing an unknown session is a no-op.
func (s *ConversationStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// sweepIdleLocked removes sessions whose latest turn is older than the idle
// timeout. Caller must hold mu.
func (s *ConversationStore) sweepIdleLocked() {
	if s.idleTimeout <= 0 {
		return
	}
	cutoff := s.now().Add(-s.idleTimeout)
	for id, turns := range s.sessions {
		if len(turns) > 0 && turns[len(turns)-1].At.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
