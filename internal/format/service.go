package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrInvalidInput is returned when a required argument or payload is missing or malformed.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError is returned when a payload fails Validate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string { return "Format is invalid" }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Observer is notified of the outcome of every Service operation.
type Observer interface {
	ObserveOperation(operation string, err error)
}

// Option configures a Service.
type Option func(*Service)

// WithMaxValueLength overrides DefaultMaxValueLength.
func WithMaxValueLength(n int) Option {
	return func(s *Service) {
		s.maxValueLength = n
	}
}

// WithObserver registers an Observer for operation outcomes.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// Service implements the format lifecycle: validation, duplicate detection
// and persistence for create, read and update.
type Service struct {
	repo           Repository
	checker        *DuplicateChecker
	maxValueLength int
	observer       Observer
}

// NewService creates a new format Service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		checker:        NewDuplicateChecker(repo),
		maxValueLength: DefaultMaxValueLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates p, rejects a value already in use and persists a new record.
func (s *Service) Create(ctx context.Context, p *Payload) (f *Format, err error) {
	defer s.observe("create", &err)

	if errs := Validate(p, s.maxValueLength); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	found, err := s.checker.FindConflicting(ctx, *p.Value, nil)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return nil, ErrDuplicateValue
	}

	f = &Format{Value: *p.Value, Active: *p.Active}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("saving format: %w", err)
	}

	slog.Info("format created", "id", f.ID, "value", f.Value)
	return f, nil
}

// FindAll returns every stored format.
func (s *Service) FindAll(ctx context.Context) (formats []Format, err error) {
	defer s.observe("find_all", &err)

	formats, err = s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing formats: %w", err)
	}
	if formats == nil {
		formats = []Format{}
	}
	return formats, nil
}

// FindOne returns the format with the given id.
func (s *Service) FindOne(ctx context.Context, id string) (f *Format, err error) {
	defer s.observe("find_one", &err)

	if id == "" {
		return nil, ErrInvalidInput
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	f, err = s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Update replaces the value and active flag of an existing format. The record
// itself is excluded from the duplicate check. The returned record is the
// in-memory copy with the changes applied.
func (s *Service) Update(ctx context.Context, id string, p *Payload) (f *Format, err error) {
	defer s.observe("update", &err)

	if id == "" || p == nil {
		return nil, ErrInvalidInput
	}

	if errs := Validate(p, s.maxValueLength); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	f, err = s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	found, err := s.checker.FindConflicting(ctx, *p.Value, &uid)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return nil, ErrDuplicateValue
	}

	f.Value = *p.Value
	f.Active = *p.Active

	affected, err := s.repo.UpdateByID(ctx, uid, UpdateFields{Value: f.Value, Active: f.Active})
	if err != nil {
		return nil, fmt.Errorf("updating format: %w", err)
	}
	if affected <= 0 {
		return nil, ErrNotFound
	}

	slog.Info("format updated", "id", f.ID, "value", f.Value, "active", f.Active)
	return f, nil
}

// load fetches a record, treating a nil record from the gateway as ErrNotFound.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*Format, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching format: %w", err)
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *Service) observe(operation string, err *error) {
	if s.observer != nil {
		s.observer.ObserveOperation(operation, *err)
	}
}
