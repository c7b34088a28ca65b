package format

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a format record is not found.
var ErrNotFound = errors.New("format not found")

// ErrDuplicateValue is returned when another format already holds the same value.
var ErrDuplicateValue = errors.New("format already exists")

// Repository is the storage gateway used by the Service.
type Repository interface {
	// FindByID returns the record with id, or ErrNotFound when there is none.
	FindByID(ctx context.Context, id uuid.UUID) (*Format, error)
	// FindWhere returns every record matching p. No match is an empty slice, not an error.
	FindWhere(ctx context.Context, p Predicate) ([]Format, error)
	// FindAll returns every record in creation order.
	FindAll(ctx context.Context) ([]Format, error)
	// Save inserts f and fills in its ID and audit fields.
	Save(ctx context.Context, f *Format) error
	// UpdateByID writes fields onto the record and returns the number of rows affected.
	UpdateByID(ctx context.Context, id uuid.UUID, fields UpdateFields) (int64, error)
}
