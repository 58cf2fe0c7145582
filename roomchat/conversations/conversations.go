package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// creates the conversations table if it doesn't exist
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createTableSQL)
	return err
}

func (r *PostgresRepository) Insert(ctx context.Context, conv *Conversation) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation messages: %w", err)
	}

	// sent as text so the simple protocol doesn't encode it as bytea
	if _, err := r.db.Exec(ctx, queryInsert, conv.RoomID, conv.Timestamp, string(messages)); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	return nil
}

func (r *PostgresRepository) LastBefore(ctx context.Context, roomID string, before int64) (*Conversation, error) {
	var (
		conv     Conversation
		messages []byte
	)

	err := r.db.QueryRow(ctx, queryLastBefore, roomID, before).Scan(
		&conv.RoomID,
		&conv.Timestamp,
		&messages,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	if err := json.Unmarshal(messages, &conv.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversation messages: %w", err)
	}

	return &conv, nil
}
