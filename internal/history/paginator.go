package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"codeberg.org/roomchat/server/roomchat/conversations"
)

var (
	ErrNoConversation = errors.New("no conversation before cursor")
	ErrInvalidCursor  = errors.New("before must be an epoch timestamp in milliseconds")
)

// walks archived conversations backwards in time, one block per call
type Paginator struct {
	repo conversations.Repository
}

func NewPaginator(repo conversations.Repository) *Paginator {
	return &Paginator{repo: repo}
}

// returns the newest conversation for roomID strictly older than before.
// a nil before has no upper bound and returns the newest block, which may be
// stamped slightly ahead of the wall clock after a burst of flushes.
// feed the returned timestamp back in to get the previous block
func (p *Paginator) LastConversation(ctx context.Context, roomID string, before *time.Time) (*conversations.Conversation, error) {
	cursor := int64(math.MaxInt64)
	if before != nil {
		cursor = before.UnixMilli()
	}

	return p.LastConversationBefore(ctx, roomID, cursor)
}

// same as LastConversation with the cursor already in epoch milliseconds
func (p *Paginator) LastConversationBefore(ctx context.Context, roomID string, beforeMillis int64) (*conversations.Conversation, error) {
	conv, err := p.repo.LastBefore(ctx, roomID, beforeMillis)
	if errors.Is(err, conversations.ErrNotFound) {
		return nil, ErrNoConversation
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	return conv, nil
}

// parses a ?before= query value. empty means "latest" and yields nil
func ParseBefore(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || millis < 0 {
		return nil, ErrInvalidCursor
	}

	cursor := time.UnixMilli(millis)
	return &cursor, nil
}
