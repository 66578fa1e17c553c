// internal/subscription/repository.go
//
// Postgres persistence for accepted signups.
//
// Context
// -------
// `Insert` is the only write path.  It stamps a fresh UUID and the current
// UTC time, then runs one parameterised INSERT.  There is no transaction
// beyond the statement itself and no retry: a failure is wrapped in
// *StorageError and handed back to the intake handler, which answers 500.
//
// If the caller's context is cancelled mid-flight the row may or may not
// have been committed.  Nothing here guards against that.
//
// Notes
// -----
//   - The clock and ID source are injectable for tests.
//   - Errors carry the driver error but never the DSN.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yanizio/newsletter/internal/metrics"
	"github.com/yanizio/newsletter/internal/subscriber"
)

const tracerName = "github.com/yanizio/newsletter/internal/subscription"

const insertSQL = `
	INSERT INTO subscriptions (id, email, name, subscribed_at)
	VALUES ($1, $2, $3, $4)`

const byEmailSQL = `
	SELECT id, email, name, subscribed_at
	FROM   subscriptions
	WHERE  email = $1
	ORDER  BY subscribed_at`

// StorageError wraps any failure from the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "subscription store: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err came from the Repository.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Repository writes subscriptions through a pooled *sqlx.DB.
type Repository struct {
	db     *sqlx.DB
	clock  func() time.Time
	newID  func() uuid.UUID
	log    *zap.Logger
	tracer trace.Tracer
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock sets the timestamp source.
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator sets the row ID source.
func WithIDGenerator(fn func() uuid.UUID) RepositoryOption {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithRepositoryLogger sets the logger.  Default is a no-op logger.
func WithRepositoryLogger(l *zap.Logger) RepositoryOption {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRepository constructs a Repository over db.
func NewRepository(db *sqlx.DB, opts ...RepositoryOption) *Repository {
	r := &Repository{
		db:     db,
		clock:  time.Now,
		newID:  uuid.New,
		log:    zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Insert persists s as a new row.  s is read, never retained.
func (r *Repository) Insert(ctx context.Context, s subscriber.NewSubscriber) error {
	ctx, span := r.tracer.Start(ctx, "saving new subscriber to the database")
	defer span.End()

	id := r.newID()
	at := r.clock().UTC()

	start := time.Now()
	_, err := r.db.ExecContext(ctx, insertSQL, id, s.Email.String(), s.Name.String(), at)
	metrics.InsertDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InsertErrorsTotal.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		r.log.Error("failed to execute query", zap.Error(err))
		return &StorageError{Op: "insert", Err: err}
	}

	span.SetAttributes(attribute.String("subscription.id", id.String()))
	r.log.Debug("subscriber saved", zap.Stringer("id", id))
	return nil
}

// ByEmail lists every row stored for email, oldest first.  Read-only helper
// for operators and tests; the intake path never calls it.
func (r *Repository) ByEmail(ctx context.Context, email string) ([]Record, error) {
	var rows []Record
	if err := r.db.SelectContext(ctx, &rows, byEmailSQL, email); err != nil {
		return nil, &StorageError{Op: "select by email", Err: fmt.Errorf("email lookup: %w", err)}
	}
	return rows, nil
}
