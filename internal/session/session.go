// Package session keeps per-conversation history in memory. Sessions
// are capped at a fixed number of exchanges; the oldest are dropped
// first.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Exchange is one completed query/answer pair.
type Exchange struct {
	Query  string
	Answer string
}

// Store holds conversation history keyed by session id. It is safe
// for concurrent use.
type Store struct {
	mu           sync.Mutex
	maxExchanges int
	sessions     map[string][]Exchange
}

// NewStore creates a Store keeping at most maxExchanges per session.
func NewStore(maxExchanges int) (*Store, error) {
	if maxExchanges <= 0 {
		return nil, fmt.Errorf("max exchanges must be positive, got %d", maxExchanges)
	}
	return &Store{
		maxExchanges: maxExchanges,
		sessions:     make(map[string][]Exchange),
	}, nil
}

// NewSessionID returns a fresh session id. The session materializes on
// the first AddExchange; ids are never tracked separately.
func (s *Store) NewSessionID() string {
	return uuid.NewString()
}

// History returns a copy of the session's exchanges, oldest first.
// Unknown ids yield an empty history.
func (s *Store) History(id string) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	exchanges := s.sessions[id]
	if len(exchanges) == 0 {
		return nil
	}
	out := make([]Exchange, len(exchanges))
	copy(out, exchanges)
	return out
}

// FormattedHistory renders the session's exchanges for inclusion in a
// prompt. Empty sessions yield the empty string.
func (s *Store) FormattedHistory(id string) string {
	exchanges := s.History(id)
	if len(exchanges) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "User: %s\nAssistant: %s", e.Query, e.Answer)
	}
	return b.String()
}

// AddExchange appends a completed exchange, evicting the oldest once
// the session exceeds its cap.
func (s *Store) AddExchange(id, query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exchanges := append(s.sessions[id], Exchange{Query: query, Answer: answer})
	if over := len(exchanges) - s.maxExchanges; over > 0 {
		exchanges = exchanges[over:]
	}
	s.sessions[id] = exchanges
}

// Clear removes a session entirely.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
