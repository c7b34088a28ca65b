package format

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DuplicateChecker looks for records that would collide with a candidate value.
type DuplicateChecker struct {
	repo Repository
}

// NewDuplicateChecker creates a DuplicateChecker reading from repo.
func NewDuplicateChecker(repo Repository) *DuplicateChecker {
	return &DuplicateChecker{repo: repo}
}

// FindConflicting returns every record whose value equals value, skipping
// excludeID when it is non-nil. A non-empty result is a conflict.
func (c *DuplicateChecker) FindConflicting(ctx context.Context, value string, excludeID *uuid.UUID) ([]Format, error) {
	found, err := c.repo.FindWhere(ctx, Predicate{ValueEquals: value, IDNotEquals: excludeID})
	if err != nil {
		return nil, fmt.Errorf("finding conflicting formats: %w", err)
	}
	return found, nil
}
