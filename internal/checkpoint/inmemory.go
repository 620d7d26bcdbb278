// Package checkpoint persists dialogue state snapshots keyed by session id.
// Backends share last-write-wins semantics; the dialogue executor serializes
// turns per session, so a store never sees concurrent writes for one key.
package checkpoint

import (
	"context"
	"sync"

	"github.com/aicupid/backend/internal/dialogue"
)

// InMemoryStore is a simple in-process checkpoint store for local/dev use.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]dialogue.State
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]dialogue.State)}
}

func (s *InMemoryStore) Load(_ context.Context, sessionID string) (dialogue.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return dialogue.State{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *InMemoryStore) Save(_ context.Context, sessionID string, state dialogue.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state.Clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
