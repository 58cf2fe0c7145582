package conversations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("conversation not found")

// one chat line as it travels over the broker and sits in a block
type Message struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// an immutable block of consecutive messages for one room.
// timestamp is epoch milliseconds taken when the block was flushed
type Conversation struct {
	RoomID    string    `json:"room_id"`
	Timestamp int64     `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// durable storage for archived blocks
type Repository interface {
	// stores a new block
	Insert(ctx context.Context, conv *Conversation) error

	// returns the block for roomID with the greatest timestamp strictly below before
	LastBefore(ctx context.Context, roomID string, before int64) (*Conversation, error)
}

// postgres implementation of Repository
type PostgresRepository struct {
	db *pgxpool.Pool
}
