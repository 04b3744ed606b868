// Package apisession tracks the rendering clients connected to the engine
// API. Session IDs are issued server-side; a client presents its ID on every
// request and is evicted after going quiet for the TTL.
package apisession

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// cleanupInterval is how often Get() triggers lazy eviction of expired entries.
const cleanupInterval = 100

type entry[T any] struct {
	value      *T
	lastAccess time.Time
}

// Store is a typed, thread-safe registry of client sessions. IDs are minted
// by Issue; presenting an unknown or expired ID yields a miss, which the API
// layer answers by telling the client to re-register.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[T]
	ttl      time.Duration
	newFn    func() *T
	getCalls int
}

// New creates a Store that evicts sessions inactive longer than ttl.
// newFn initialises the state attached to each issued session.
func New[T any](ttl time.Duration, newFn func() *T) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		newFn:   newFn,
	}
}

// Issue registers a new client and returns its server-assigned session ID
// alongside the freshly-initialised state.
func (s *Store[T]) Issue() (string, *T) {
	id := uuid.NewString()
	e := &entry[T]{value: s.newFn(), lastAccess: time.Now()}

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return id, e.value
}

// Get returns the state for a previously issued session and refreshes its
// last-access timestamp. Unknown or expired IDs report ok=false.
func (s *Store[T]) Get(id string) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = time.Now()
	return e.value, true
}

// Drop removes a session immediately (client disconnect).
func (s *Store[T]) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts all sessions inactive longer than the TTL.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store[T]) cleanupLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of active sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
