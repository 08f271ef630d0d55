// internal/room/store.go
package room

import (
	"sync"

	"github.com/samber/lo"
)

// Store holds live rooms. The registry is its only writer; an alternative
// backing store can be swapped in without touching game rules.
type Store interface {
	Get(id string) (*Room, bool)
	Put(r *Room)
	Delete(id string)
	// List returns every room in creation order.
	List() []*Room
}

// MemoryStore is the process-local Store.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	order []string // room ids, oldest first
}

// NewMemoryStore initializes and returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*Room),
	}
}

func (s *MemoryStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Put adds r, or replaces the room with the same id keeping its position.
func (s *MemoryStore) Put(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.rooms[r.ID] = r
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[id]; !exists {
		return
	}
	delete(s.rooms, id)
	s.order = lo.Without(s.order, id)
}

func (s *MemoryStore) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.order, func(id string, _ int) *Room { return s.rooms[id] })
}
