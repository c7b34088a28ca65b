package format

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a process-local Repository. It enforces value
// uniqueness under its lock, like the unique index of the SQL gateways.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Format
	order   []uuid.UUID
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[uuid.UUID]Format),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts a copy of f.
func (r *MemoryRepository) Save(ctx context.Context, f *Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holdsValue(f.Value, nil) {
		return ErrDuplicateValue
	}

	now := r.now()
	f.ID = uuid.New()
	f.CreatedBy = ActorFromContext(ctx)
	f.CreatedAt = now
	f.UpdatedAt = now

	r.records[f.ID] = *f
	r.order = append(r.order, f.ID)
	return nil
}

// FindByID returns a copy of the record with the given id.
func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// FindWhere returns the records matching p in insertion order.
func (r *MemoryRepository) FindWhere(_ context.Context, p Predicate) ([]Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := []Format{}
	for _, id := range r.order {
		f := r.records[id]
		if f.Value != p.ValueEquals {
			continue
		}
		if p.IDNotEquals != nil && f.ID == *p.IDNotEquals {
			continue
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// FindAll returns every record in insertion order.
func (r *MemoryRepository) FindAll(_ context.Context) ([]Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.order))
	for _, id := range r.order {
		formats = append(formats, r.records[id])
	}
	return formats, nil
}

// UpdateByID writes fields onto the record. Returns 0 when the id is unknown.
func (r *MemoryRepository) UpdateByID(ctx context.Context, id uuid.UUID, fields UpdateFields) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.records[id]
	if !ok {
		return 0, nil
	}
	if r.holdsValue(fields.Value, &id) {
		return 0, ErrDuplicateValue
	}

	f.Value = fields.Value
	f.Active = fields.Active
	f.UpdatedBy = ActorFromContext(ctx)
	f.UpdatedAt = r.now()
	r.records[id] = f
	return 1, nil
}

// holdsValue reports whether a record other than exclude has value. Callers hold mu.
func (r *MemoryRepository) holdsValue(value string, exclude *uuid.UUID) bool {
	for id, f := range r.records {
		if f.Value == value && (exclude == nil || id != *exclude) {
			return true
		}
	}
	return false
}
