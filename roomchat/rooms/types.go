package rooms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("room not found")
	ErrNameMissing = errors.New("room name is required")
	ErrDuplicateID = errors.New("room id already exists")
)

// a chat room. the id is serialized as _id, which is what browser clients read
type Room struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// contains data for creating a room
type CreateRoomRequest struct {
	Name  string `json:"name" form:"name"`
	Image string `json:"image" form:"image"`
}

type Repository interface {
	List(ctx context.Context) ([]Room, error)
	Get(ctx context.Context, id string) (*Room, error)

	// stores room, assigning a new id when room.ID is empty
	Create(ctx context.Context, room *Room) error
}

// postgres implementation of Repository
type PostgresRepository struct {
	db *pgxpool.Pool
}
