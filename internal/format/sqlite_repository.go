package format

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository on a database/sql handle opened with
// the modernc.org/sqlite driver. Timestamps are stored as RFC 3339 text.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new Repository backed by the given SQLite handle.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const sqliteColumns = `id, value, active, created_by, created_at, updated_by, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFormat(row rowScanner) (*Format, error) {
	var (
		f                    Format
		id                   string
		createdBy, updatedBy sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &f.Value, &f.Active, &createdBy, &createdAt, &updatedBy, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if f.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing format id %q: %w", id, err)
	}
	if f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if f.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if createdBy.Valid {
		f.CreatedBy = &createdBy.String
	}
	if updatedBy.Valid {
		f.UpdatedBy = &updatedBy.String
	}
	return &f, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Save inserts a new format record with a freshly generated UUID.
func (r *SQLiteRepository) Save(ctx context.Context, f *Format) error {
	id := uuid.New()
	now := r.now()
	actor := ActorFromContext(ctx)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO formats (id, value, active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), f.Value, f.Active, actor,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateValue
		}
		return fmt.Errorf("inserting format: %w", err)
	}

	f.ID = id
	f.CreatedBy = actor
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

// FindByID retrieves a single format by its UUID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*Format, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM formats WHERE id = ?`, id.String())
	f, err := scanSQLiteFormat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning format row: %w", err)
	}
	return f, nil
}

// FindWhere retrieves formats whose value equals p.ValueEquals, excluding p.IDNotEquals.
func (r *SQLiteRepository) FindWhere(ctx context.Context, p Predicate) ([]Format, error) {
	query := `SELECT ` + sqliteColumns + ` FROM formats WHERE value = ?`
	args := []any{p.ValueEquals}
	if p.IDNotEquals != nil {
		query += ` AND id <> ?`
		args = append(args, p.IDNotEquals.String())
	}
	return r.query(ctx, query, args...)
}

// FindAll retrieves all formats in insertion order.
func (r *SQLiteRepository) FindAll(ctx context.Context) ([]Format, error) {
	return r.query(ctx, `SELECT `+sqliteColumns+` FROM formats ORDER BY rowid ASC`)
}

// UpdateByID writes value and active onto a format and reports the rows affected.
func (r *SQLiteRepository) UpdateByID(ctx context.Context, id uuid.UUID, fields UpdateFields) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE formats
		SET value = ?, active = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		fields.Value, fields.Active, ActorFromContext(ctx), r.now().Format(time.RFC3339Nano), id.String(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return 0, ErrDuplicateValue
		}
		return 0, fmt.Errorf("updating format: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Format, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying formats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	formats := []Format{}
	for rows.Next() {
		f, err := scanSQLiteFormat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning format row: %w", err)
		}
		formats = append(formats, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating format rows: %w", err)
	}
	return formats, nil
}
