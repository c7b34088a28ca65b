package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx connection pool used by the Postgres storage driver.
type DB struct {
	pool *pgxpool.Pool
}

// Option tunes the pool before it is opened.
type Option func(*pgxpool.Config)

// WithMaxConns caps the number of pooled connections. Values below 1 keep the pgx default.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// New opens a pool for databaseURL and verifies it with a ping.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	for _, opt := range opts {
		opt(poolCfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// EnsureSchema creates the formats table and its unique value index if missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return EnsurePostgresSchema(ctx, db.pool)
}

// Close releases every pooled connection.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping reports whether the database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool exposes the pool to the Postgres format repository.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
