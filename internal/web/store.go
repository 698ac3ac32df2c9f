package web

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"calsched/internal/model"
)

// Store is the in-memory event pool the API serves from. It stands in
// for the external persistence collaborator; the engine packages never
// touch it.
type Store struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{events: make(map[string]model.Event)}
}

// Put stores ev, minting a UUID when the caller supplied no ID, and
// returns the stored value.
func (s *Store) Put(ev model.Event) model.Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.events[ev.ID] = ev
	s.mu.Unlock()
	return ev
}

// Get returns the event with the given ID.
func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	ev, ok := s.events[id]
	s.mu.RUnlock()
	return ev, ok
}

// List returns all events ordered by start time, then ID for stability.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes the event with the given ID, reporting whether it
// existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.events[id]
	delete(s.events, id)
	s.mu.Unlock()
	return ok
}
