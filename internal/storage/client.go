package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/conversations"
	"codeberg.org/roomchat/server/roomchat/rooms"
	"codeberg.org/roomchat/server/roomchat/users"
)

// the repositories the server and chatctl work against
type Client struct {
	pool *pgxpool.Pool

	Users         users.Repository
	Rooms         rooms.Repository
	Conversations conversations.Repository
}

// connects to postgres and makes sure the schema exists.
// an empty connString gives in-memory repositories
func NewClient(ctx context.Context, connString string) (*Client, error) {
	if connString == "" {
		return NewMemoryClient(), nil
	}

	pool, err := openPool(ctx, connString)
	if err != nil {
		return nil, err
	}

	userRepo := users.NewRepository(pool)
	roomRepo := rooms.NewRepository(pool)
	conversationRepo := conversations.NewRepository(pool)

	for _, initialize := range []func(context.Context) error{
		userRepo.Initialize,
		roomRepo.Initialize,
		conversationRepo.Initialize,
	} {
		if err := initialize(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	logger.Info("connected to database")

	return &Client{
		pool:          pool,
		Users:         userRepo,
		Rooms:         roomRepo,
		Conversations: conversationRepo,
	}, nil
}

// in-memory repositories, used when no database is configured and in tests
func NewMemoryClient() *Client {
	return &Client{
		Users:         users.NewMemoryRepository(),
		Rooms:         rooms.NewMemoryRepository(),
		Conversations: conversations.NewMemoryRepository(),
	}
}

// reports whether the client is backed by postgres
func (c *Client) Durable() bool {
	return c.pool != nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func openPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode can't hold prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
