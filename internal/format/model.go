package format

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxValueLength is the longest value accepted when no limit is configured.
const DefaultMaxValueLength = 255

// Format represents a row in the formats table.
type Format struct {
	ID        uuid.UUID
	Value     string
	Active    bool
	CreatedBy *string
	CreatedAt time.Time
	UpdatedBy *string
	UpdatedAt time.Time
}

// Payload is the candidate content of a create or update request.
// Nil fields were absent from the request.
type Payload struct {
	Value  *string
	Active *bool
}

// Predicate selects records for the duplicate check.
// IDNotEquals, when set, excludes that record from the result.
type Predicate struct {
	ValueEquals string
	IDNotEquals *uuid.UUID
}

// UpdateFields holds the columns written by an update.
type UpdateFields struct {
	Value  string
	Active bool
}
