package rooms

import (
	"context"
	"sync"
)

// in-process Repository used when no database is configured
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	rooms map[string]Room
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]Room)}
}

func (r *MemoryRepository) List(_ context.Context) ([]Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}

	return rooms, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &room, nil
}

func (r *MemoryRepository) Create(_ context.Context, room *Room) error {
	if err := prepare(room); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return ErrDuplicateID
	}

	r.rooms[room.ID] = *room
	r.order = append(r.order, room.ID)

	return nil
}
