package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/conversations"
)

// redis-backed Buffer. buffered messages survive a server restart
type RedisBuffer struct {
	client *redis.Client
}

// connects to redisURL and verifies the connection
func NewRedisBuffer(redisURL string) (*RedisBuffer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on failed connect
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return NewRedisBufferFromClient(client), nil
}

// wraps an existing client
func NewRedisBufferFromClient(client *redis.Client) *RedisBuffer {
	return &RedisBuffer{client: client}
}

func (b *RedisBuffer) Close() error {
	return b.client.Close()
}

// returns the underlying client, shared with the login rate limiter
func (b *RedisBuffer) Client() *redis.Client {
	return b.client
}

func (b *RedisBuffer) Ensure(ctx context.Context, roomID string) error {
	if err := b.client.SAdd(ctx, keyKnownRooms, roomID).Err(); err != nil {
		return fmt.Errorf("failed to register room buffer in redis: %w", err)
	}

	return nil
}

func (b *RedisBuffer) Append(ctx context.Context, roomID string, msg conversations.Message) (int, error) {
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := b.client.Pipeline()
	length := pipe.RPush(ctx, roomKey(roomID), msgJSON)
	pipe.SAdd(ctx, keyKnownRooms, roomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to append message to redis: %w", err)
	}

	return int(length.Val()), nil
}

func (b *RedisBuffer) Take(ctx context.Context, roomID string) ([]conversations.Message, error) {
	key := roomKey(roomID)

	// MULTI/EXEC so nothing appended between the read and the delete is lost
	pipe := b.client.TxPipeline()
	values := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to take messages from redis: %w", err)
	}

	return decodeMessages(roomID, values.Val()), nil
}

func (b *RedisBuffer) Peek(ctx context.Context, roomID string) ([]conversations.Message, error) {
	values, err := b.client.LRange(ctx, roomKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages from redis: %w", err)
	}

	return decodeMessages(roomID, values), nil
}

func (b *RedisBuffer) Rooms(ctx context.Context) ([]string, error) {
	rooms, err := b.client.SMembers(ctx, keyKnownRooms).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list buffered rooms: %w", err)
	}

	return rooms, nil
}

func roomKey(roomID string) string {
	return fmt.Sprintf(keyRoomMessages, roomID)
}

func decodeMessages(roomID string, values []string) []conversations.Message {
	messages := make([]conversations.Message, 0, len(values))

	for _, value := range values {
		var msg conversations.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			logger.ErrorErr(err, "failed to unmarshal buffered message", "room_id", roomID)
			continue
		}

		messages = append(messages, msg)
	}

	return messages
}
