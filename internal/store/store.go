package store

import (
	"context"

	"github.com/oseda-dev/oseda/internal/models"
)

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Project string
	Kind    models.EventKind
	Status  models.EventStatus
	Limit   int
}

// Store defines the persistence interface for oseda's check and deploy history.
type Store interface {
	RecordEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error)
	LastEvent(ctx context.Context, project string, kind models.EventKind) (*models.Event, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
