package chat

import (
	"context"

	"codeberg.org/roomchat/server/internal/history"
	"codeberg.org/roomchat/server/roomchat/conversations"
	"codeberg.org/roomchat/server/roomchat/rooms"
)

// the buffer operations the room endpoints use
type RoomBuffer interface {
	Ensure(ctx context.Context, roomID string) error
	Peek(ctx context.Context, roomID string) ([]conversations.Message, error)
}

type Deps struct {
	Rooms     rooms.Repository
	Buffer    RoomBuffer
	Paginator *history.Paginator
}

// a room together with the messages not yet archived
type RoomResponse struct {
	rooms.Room
	Messages []conversations.Message `json:"messages"`
}
