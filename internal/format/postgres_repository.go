package format

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Repository backed by the given connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// allColumns is the ordered list of columns scanned from the formats table.
const allColumns = `id, value, active, created_by, created_at, updated_by, updated_at`

// scanFormat scans a single Format from a row.
func scanFormat(row pgx.Row) (*Format, error) {
	var f Format
	err := row.Scan(&f.ID, &f.Value, &f.Active, &f.CreatedBy, &f.CreatedAt, &f.UpdatedBy, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning format row: %w", err)
	}
	return &f, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Save inserts a new format record.
func (r *PostgresRepository) Save(ctx context.Context, f *Format) error {
	query := `
		INSERT INTO formats (value, active, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_by, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, f.Value, f.Active, ActorFromContext(ctx)).
		Scan(&f.ID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateValue
		}
		return fmt.Errorf("inserting format: %w", err)
	}

	return nil
}

// FindByID retrieves a single format by its UUID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Format, error) {
	query := `SELECT ` + allColumns + ` FROM formats WHERE id = $1`
	return scanFormat(r.pool.QueryRow(ctx, query, id))
}

// FindWhere retrieves formats whose value equals p.ValueEquals, excluding p.IDNotEquals.
func (r *PostgresRepository) FindWhere(ctx context.Context, p Predicate) ([]Format, error) {
	query := `SELECT ` + allColumns + ` FROM formats WHERE value = $1`
	args := []any{p.ValueEquals}
	if p.IDNotEquals != nil {
		query += ` AND id <> $2`
		args = append(args, *p.IDNotEquals)
	}
	return r.query(ctx, query, args...)
}

// FindAll retrieves all formats ordered by creation time.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]Format, error) {
	return r.query(ctx, `SELECT `+allColumns+` FROM formats ORDER BY created_at ASC`)
}

// UpdateByID writes value and active onto a format and reports the rows affected.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id uuid.UUID, fields UpdateFields) (int64, error) {
	query := `
		UPDATE formats
		SET value = $1, active = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4`

	result, err := r.pool.Exec(ctx, query, fields.Value, fields.Active, ActorFromContext(ctx), id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateValue
		}
		return 0, fmt.Errorf("updating format: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Format, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying formats: %w", err)
	}
	defer rows.Close()

	var formats []Format
	for rows.Next() {
		var f Format
		if err := rows.Scan(&f.ID, &f.Value, &f.Active, &f.CreatedBy, &f.CreatedAt, &f.UpdatedBy, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning format row: %w", err)
		}
		formats = append(formats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating format rows: %w", err)
	}

	if formats == nil {
		formats = []Format{}
	}

	return formats, nil
}
