package buffer

import (
	"context"
	"slices"
	"sync"

	"codeberg.org/roomchat/server/roomchat/conversations"
)

// in-process Buffer used when no redis is configured
type MemoryBuffer struct {
	mu    sync.Mutex
	rooms map[string][]conversations.Message
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{rooms: make(map[string][]conversations.Message)}
}

func (b *MemoryBuffer) Ensure(_ context.Context, roomID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.rooms[roomID]; !exists {
		b.rooms[roomID] = []conversations.Message{}
	}

	return nil
}

func (b *MemoryBuffer) Append(_ context.Context, roomID string, msg conversations.Message) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rooms[roomID] = append(b.rooms[roomID], msg)

	return len(b.rooms[roomID]), nil
}

func (b *MemoryBuffer) Take(_ context.Context, roomID string) ([]conversations.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	messages := b.rooms[roomID]
	b.rooms[roomID] = []conversations.Message{}

	if messages == nil {
		return []conversations.Message{}, nil
	}

	return messages, nil
}

func (b *MemoryBuffer) Peek(_ context.Context, roomID string) ([]conversations.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	messages := slices.Clone(b.rooms[roomID])
	if messages == nil {
		return []conversations.Message{}, nil
	}

	return messages, nil
}

func (b *MemoryBuffer) Rooms(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rooms := make([]string, 0, len(b.rooms))
	for roomID := range b.rooms {
		rooms = append(rooms, roomID)
	}

	slices.Sort(rooms)

	return rooms, nil
}
