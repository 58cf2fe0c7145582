package buffer

import (
	"context"
	"time"

	"codeberg.org/roomchat/server/roomchat/conversations"
)

const (
	// messages per archived conversation unless configured otherwise
	DefaultBlockSize = 10

	// pending blocks the persistence worker holds before spilling to goroutines
	persistQueueSize = 256

	// upper bound on a single conversation insert
	persistTimeout = 10 * time.Second
)

// redis key patterns
const (
	// list of JSON messages waiting for the next block
	keyRoomMessages = "room:%s:messages"

	// set of room IDs that own a buffer
	keyKnownRooms = "rooms:buffered"
)

type Message = conversations.Message

// per-room ordered messages awaiting persistence
type Buffer interface {
	// creates an empty buffer for roomID if it has none
	Ensure(ctx context.Context, roomID string) error

	// appends msg and returns the buffer length afterwards
	Append(ctx context.Context, roomID string, msg conversations.Message) (int, error)

	// atomically removes and returns the whole buffer
	Take(ctx context.Context, roomID string) ([]conversations.Message, error)

	// returns a copy of the buffer without removing anything. never nil
	Peek(ctx context.Context, roomID string) ([]conversations.Message, error)

	// returns every room that owns a buffer
	Rooms(ctx context.Context) ([]string, error)
}
