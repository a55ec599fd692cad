// Package storage provides durable alert storage interfaces and the
// SQLite implementation.
package storage

import (
	"context"
	"errors"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// ErrDuplicateID is returned when an insert collides with an existing
// alert id.
var ErrDuplicateID = errors.New("alert id already exists")

// QueryFilter narrows an alert query. Zero-valued fields are not
// applied; Limit <= 0 falls back to DefaultQueryLimit.
type QueryFilter struct {
	Severity models.Severity
	Status   models.Status
	Source   string
	Limit    int
}

// DefaultQueryLimit caps unbounded queries.
const DefaultQueryLimit = 100

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Alerts returns the alert repository.
	Alerts() AlertRepository
}

// AlertRepository defines operations over persisted alerts.
type AlertRepository interface {
	// Create inserts a new alert; ErrDuplicateID if the id exists.
	Create(ctx context.Context, alert *models.Alert) error
	// Update rewrites only the mutable fields (status, duplicate_count,
	// last_seen, acknowledged_at, resolved_at, acknowledged_by,
	// metadata). Content fields are immutable after creation.
	Update(ctx context.Context, alert *models.Alert) error
	// GetByID returns the alert or nil when not found.
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	// Query returns alerts matching the filter, most recent first.
	Query(ctx context.Context, filter QueryFilter) ([]*models.Alert, error)
	// CleanupOld deletes resolved alerts whose resolved_at is older
	// than the retention window and returns the number removed.
	CleanupOld(ctx context.Context, retentionDays int) (int64, error)
}
