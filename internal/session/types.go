package session

import (
	"time"

	"github.com/m3rciful/pqbot/internal/catalog"
)

// State identifies a step of the conversation.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateAwaitingSearchQuery waits for the text to search the catalog with.
	StateAwaitingSearchQuery State = "awaiting_search_query"
	// StateAwaitingSelection waits for the 1-based number of a search result.
	StateAwaitingSelection State = "awaiting_selection"
	// StateAwaitingFreeText waits for a free-text request to be logged.
	StateAwaitingFreeText State = "awaiting_free_text"
)

func (s State) String() string { return string(s) }

// Session is the conversation state of one user. The zero value is an idle session.
//
// Fields are unexported so that pending results only ever exist while the
// session awaits a selection.
type Session struct {
	state     State
	pending   []catalog.Document
	updatedAt time.Time
}

// Idle returns a session with no active conversation.
func Idle() Session { return Session{state: StateIdle} }

// AwaitingQuery returns a session waiting for search text.
func AwaitingQuery() Session { return Session{state: StateAwaitingSearchQuery} }

// AwaitingText returns a session waiting for a free-text request.
func AwaitingText() Session { return Session{state: StateAwaitingFreeText} }

// Selecting returns a session holding search results to choose from.
// Without results there is nothing to select, so the session is idle.
func Selecting(results []catalog.Document) Session {
	if len(results) == 0 {
		return Idle()
	}
	pending := make([]catalog.Document, len(results))
	copy(pending, results)
	return Session{state: StateAwaitingSelection, pending: pending}
}

// State reports the current conversation step.
func (s Session) State() State {
	if s.state == "" {
		return StateIdle
	}
	return s.state
}

// IsIdle reports whether no conversation is in progress.
func (s Session) IsIdle() bool { return s.State() == StateIdle }

// Pending returns a copy of the stored search results.
func (s Session) Pending() []catalog.Document {
	if len(s.pending) == 0 {
		return nil
	}
	out := make([]catalog.Document, len(s.pending))
	copy(out, s.pending)
	return out
}

// PendingCount reports how many search results are stored.
func (s Session) PendingCount() int { return len(s.pending) }

// Result returns the n-th stored result, counting from 1.
func (s Session) Result(n int) (catalog.Document, bool) {
	if n < 1 || n > len(s.pending) {
		return catalog.Document{}, false
	}
	return s.pending[n-1], true
}

// UpdatedAt reports when the session was last committed to a store.
func (s Session) UpdatedAt() time.Time { return s.updatedAt }

// normalize drops pending results outside of the selection step and turns an
// empty selection into an idle session.
func (s Session) normalize() Session {
	switch s.State() {
	case StateAwaitingSelection:
		if len(s.pending) == 0 {
			return Session{state: StateIdle, updatedAt: s.updatedAt}
		}
	default:
		s.pending = nil
	}
	s.state = s.State()
	return s
}
