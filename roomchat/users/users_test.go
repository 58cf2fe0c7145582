package users

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRepositoryTests(t *testing.T, repo Repository) {
	ctx := context.Background()
	username := "alice-" + uuid.NewString()[:8]

	created, err := repo.Create(ctx, username, "$2a$04$hash")
	require.NoError(t, err)
	assert.Equal(t, username, created.Username)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$hash", found.PasswordHash)

	_, err = repo.Create(ctx, username, "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = repo.FindByUsername(ctx, "nobody-"+uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTests(t, NewMemoryRepository())
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Initialize(ctx))

	runRepositoryTests(t, repo)
}
