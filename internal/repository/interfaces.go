package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pokerledger/tracker/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// SessionStore is durable keyed storage of raw sessions. Derived figures
// are never stored; callers derive them on read.
type SessionStore interface {
	// List returns every stored session in store order.
	List(ctx context.Context) ([]domain.Session, error)

	// Get returns a session by ID, or nil when it does not exist.
	Get(ctx context.Context, id int64) (*domain.Session, error)

	// Create inserts s. It assigns ID, SessionNo (max for the played date
	// plus one, serialized per date) and the timestamps back onto s.
	Create(ctx context.Context, s *domain.Session) error

	// Delete removes a session by ID. It reports whether a row was removed;
	// a missing ID is not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the session write).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns the oldest unpublished events.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
