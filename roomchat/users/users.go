package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres unique_violation
const uniqueViolation = "23505"

func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// creates the users table if it doesn't exist
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createTableSQL)
	return err
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User

	err := r.db.QueryRow(ctx, queryFindByUsername, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	var user User

	err := r.db.QueryRow(ctx, queryCreate, username, passwordHash).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrUsernameTaken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}
