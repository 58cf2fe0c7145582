package conversations

import (
	"context"
	"slices"
	"sync"
)

// in-process Repository used when no database is configured
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string][]Conversation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string][]Conversation)}
}

func (r *MemoryRepository) Insert(_ context.Context, conv *Conversation) error {
	stored := Conversation{
		RoomID:    conv.RoomID,
		Timestamp: conv.Timestamp,
		Messages:  slices.Clone(conv.Messages),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[conv.RoomID] = append(r.rooms[conv.RoomID], stored)

	return nil
}

func (r *MemoryRepository) LastBefore(_ context.Context, roomID string, before int64) (*Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Conversation

	for i := range r.rooms[roomID] {
		conv := &r.rooms[roomID][i]

		if conv.Timestamp >= before {
			continue
		}

		if best == nil || conv.Timestamp > best.Timestamp {
			best = conv
		}
	}

	if best == nil {
		return nil, ErrNotFound
	}

	return &Conversation{
		RoomID:    best.RoomID,
		Timestamp: best.Timestamp,
		Messages:  slices.Clone(best.Messages),
	}, nil
}

// returns how many blocks are stored for roomID
func (r *MemoryRepository) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
