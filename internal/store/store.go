// Package store holds the process-wide mapping from issued result ids to the
// metadata needed for later content fetches.
package store

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
)

// Record is the server-retained subset of a search hit. Records are immutable
// once stored.
type Record struct {
	Title   string
	Snippet string
	URL     string
}

// Store maps opaque ids to Records. It is append-only for the lifetime of the
// process: no eviction, no TTL, nothing survives a restart. The unbounded
// growth is a known tradeoff; sessions are expected to be short-lived relative
// to available memory.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

func New() *Store {
	return &Store{records: make(map[string]Record)}
}

// Put stores a record under a freshly generated id and returns the id. Ids are
// never reused or reassigned.
func (s *Store) Put(r Record) string {
	id := newID()
	s.mu.Lock()
	s.records[id] = r
	s.mu.Unlock()
	return id
}

// Get returns the record stored under id, if any.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	return r, ok
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// newID returns a random 32-char hex identifier.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
