package rooms

import (
	"fmt"
	"sync"
	"time"
)

const staleTTL = 1 * time.Hour

// Store is the keyed collection of live rooms. It is the only owner of
// Room records; connection handlers reach rooms through it, never through
// package-level state.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	s := &Store{rooms: make(map[string]*Room)}
	go s.sweepStale()
	return s
}

// Create allocates a room under a fresh collision-checked key.
func (s *Store) Create() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique key
	for i := 0; i < 10; i++ {
		key, err := GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generating room key: %w", err)
		}
		if _, exists := s.rooms[key]; exists {
			continue
		}
		room := newRoom(key)
		s.rooms[key] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room key after 10 attempts")
}

func (s *Store) Get(key string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[key]
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, key)
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// FindByConnID returns the rooms this connection participates in. Used on
// disconnect, where no room key accompanies the event.
func (s *Store) FindByConnID(connID string) []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Room
	for _, r := range s.rooms {
		if r.HasParticipant(connID) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, room := range s.rooms {
			if now.Sub(room.CreatedAt) > staleTTL {
				delete(s.rooms, key)
			}
		}
		s.mu.Unlock()
	}
}
