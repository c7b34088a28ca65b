package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema creates the formats table. The unique index on value backs
// up the duplicate check done before every write.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS formats (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    value TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_by VARCHAR(255),
    updated_by VARCHAR(255),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_formats_value ON formats (value);
`

// SQLiteSchema is the SQLite equivalent of PostgresSchema.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS formats (
    id TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_by TEXT,
    updated_by TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_formats_value ON formats (value);
`

// EnsurePostgresSchema applies PostgresSchema. It is safe to run repeatedly.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("applying postgres schema: %w", err)
	}
	return nil
}

// EnsureSQLiteSchema applies SQLiteSchema. It is safe to run repeatedly.
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("applying sqlite schema: %w", err)
	}
	return nil
}
