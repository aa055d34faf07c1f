// Package runtime owns the relay's live state: identities, rooms, and
// the session coordinator that mutates them. It contains no transport
// or UI logic.
package runtime

import (
	"math/rand"
	"strings"
	"sync"

	"chat-relay/domain"
)

// IdentityStore maps live connections to their display names.
// Registration always succeeds; last write wins for a connection.
type IdentityStore struct {
	mu    sync.RWMutex
	names map[string]string
	rnd   *rand.Rand
}

// NewIdentityStore builds a store drawing default names with rnd.
// The source is injected so tests can assert deterministic picks.
func NewIdentityStore(rnd *rand.Rand) *IdentityStore {
	return &IdentityStore{
		names: make(map[string]string),
		rnd:   rnd,
	}
}

// Register stores the display name for a connection and returns it.
// An empty or blank requested name draws one from the curated pool.
func (s *IdentityStore) Register(connectionID, requestedName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(requestedName)
	if name == "" {
		name = domain.PickName(s.rnd.Intn)
	}
	s.names[connectionID] = name
	return name
}

func (s *IdentityStore) Get(connectionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[connectionID]
	return name, ok
}

// Remove deletes the mapping; no-op if absent.
func (s *IdentityStore) Remove(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, connectionID)
}

// RandomName draws from the pool without registering anything.
// Backs the /random-username endpoint.
func (s *IdentityStore) RandomName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.PickName(s.rnd.Intn)
}
