package buffer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/conversations"
)

// folds room buffers into conversations once they reach the block size.
// the flush decision is synchronous, the insert happens on a background worker
type Archiver struct {
	buffer    Buffer
	repo      conversations.Repository
	blockSize int
	now       func() time.Time

	queue   chan *conversations.Conversation
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
	started bool

	// last timestamp handed out per room, keeps blocks strictly ordered
	lastStamp map[string]int64

	onPersisted func(*conversations.Conversation)
	onFailed    func(*conversations.Conversation, error)
}

type ArchiverOption func(*Archiver)

// overrides the clock used for conversation timestamps
func WithClock(now func() time.Time) ArchiverOption {
	return func(a *Archiver) {
		a.now = now
	}
}

// called after a block has been stored
func OnPersisted(fn func(*conversations.Conversation)) ArchiverOption {
	return func(a *Archiver) {
		a.onPersisted = fn
	}
}

// called after a block failed to store. the block is not retried
func OnFailed(fn func(*conversations.Conversation, error)) ArchiverOption {
	return func(a *Archiver) {
		a.onFailed = fn
	}
}

func NewArchiver(buffer Buffer, repo conversations.Repository, blockSize int, opts ...ArchiverOption) *Archiver {
	if blockSize < 1 {
		blockSize = DefaultBlockSize
	}

	a := &Archiver{
		buffer:    buffer,
		repo:      repo,
		blockSize: blockSize,
		now:       time.Now,
		queue:     make(chan *conversations.Conversation, persistQueueSize),
		lastStamp: make(map[string]int64),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Archiver) BlockSize() int {
	return a.blockSize
}

// begins the persistence worker
func (a *Archiver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started || a.stopped {
		return
	}

	a.started = true
	a.wg.Add(1)
	go a.run()

	logger.Info("conversation archiver started", "block_size", a.blockSize)
}

// waits for every queued block to be written, then stops the worker
func (a *Archiver) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}

	a.stopped = true
	close(a.queue)
	started := a.started
	a.mu.Unlock()

	// drain anything queued before Start was ever called
	if !started {
		for conv := range a.queue {
			a.persist(conv)
		}
	}

	a.wg.Wait()
	logger.Info("conversation archiver stopped")
}

func (a *Archiver) run() {
	defer a.wg.Done()

	for conv := range a.queue {
		a.persist(conv)
	}
}

// appends msg to the room buffer and flushes when the block is full.
// returns the flushed conversation, or nil when the buffer is still filling
func (a *Archiver) Append(ctx context.Context, roomID string, msg conversations.Message) (*conversations.Conversation, error) {
	length, err := a.buffer.Append(ctx, roomID, msg)
	if err != nil {
		return nil, err
	}

	if length < a.blockSize {
		return nil, nil
	}

	return a.Flush(ctx, roomID)
}

// snapshots and resets the room buffer, then schedules the block for storage.
// returns nil when the buffer was empty
func (a *Archiver) Flush(ctx context.Context, roomID string) (*conversations.Conversation, error) {
	messages, err := a.buffer.Take(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot room buffer: %w", err)
	}

	if len(messages) == 0 {
		return nil, nil
	}

	conv := &conversations.Conversation{
		RoomID:    roomID,
		Timestamp: a.nextTimestamp(roomID),
		Messages:  messages,
	}

	a.enqueue(conv)

	logger.Debug("room buffer flushed",
		"room_id", roomID,
		"message_count", len(messages),
		"timestamp", conv.Timestamp,
	)

	return conv, nil
}

// flushes every non-empty buffer, used on shutdown
func (a *Archiver) FlushAll(ctx context.Context) error {
	rooms, err := a.buffer.Rooms(ctx)
	if err != nil {
		return err
	}

	var errs []error

	for _, roomID := range rooms {
		if _, err := a.Flush(ctx, roomID); err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", roomID, err))
		}
	}

	return errors.Join(errs...)
}

func (a *Archiver) nextTimestamp(roomID string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp := a.now().UnixMilli()
	if last, ok := a.lastStamp[roomID]; ok && stamp <= last {
		stamp = last + 1
	}

	a.lastStamp[roomID] = stamp

	return stamp
}

func (a *Archiver) enqueue(conv *conversations.Conversation) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		// shutting down, write inline so the block is not lost
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.persist(conv)
		}()
		return
	}

	select {
	case a.queue <- conv:
	default:
		logger.Warn("archiver queue full, persisting out of band",
			"room_id", conv.RoomID,
			"message_count", len(conv.Messages),
		)

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.persist(conv)
		}()
	}
}

func (a *Archiver) persist(conv *conversations.Conversation) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := a.repo.Insert(ctx, conv); err != nil {
		logger.ErrorErr(err, "failed to persist conversation",
			"room_id", conv.RoomID,
			"message_count", len(conv.Messages),
			"timestamp", conv.Timestamp,
		)

		if a.onFailed != nil {
			a.onFailed(conv, err)
		}

		return
	}

	logger.Debug("conversation persisted",
		"room_id", conv.RoomID,
		"timestamp", conv.Timestamp,
	)

	if a.onPersisted != nil {
		a.onPersisted(conv)
	}
}
