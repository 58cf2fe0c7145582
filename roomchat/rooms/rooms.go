package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres unique_violation
const uniqueViolation = "23505"

func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// creates the chatrooms table if it doesn't exist
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createTableSQL)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.Query(ctx, queryList)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}

	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Image); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}

		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Room, error) {
	var room Room

	err := r.db.QueryRow(ctx, queryGet, id).Scan(&room.ID, &room.Name, &room.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return &room, nil
}

func (r *PostgresRepository) Create(ctx context.Context, room *Room) error {
	if err := prepare(room); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, queryCreate, room.ID, room.Name, room.Image)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateID
	}

	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// validates room and fills in a fresh id when needed
func prepare(room *Room) error {
	room.Name = strings.TrimSpace(room.Name)
	if room.Name == "" {
		return ErrNameMissing
	}

	if room.ID == "" {
		room.ID = uuid.NewString()
	}

	return nil
}
