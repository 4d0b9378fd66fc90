package schedule

import (
	"context"
)

// Store persists what a workspace holds in memory. Editor saves stay local and
// synchronous; the service writes through to the store afterwards.
type Store interface {
	LoadEvents(ctx context.Context, ownerID string) ([]Event, error)
	UpsertEvent(ctx context.Context, ownerID string, e Event) error
	DeleteEvent(ctx context.Context, ownerID string, id EventID) error

	// LoadWorkHours reports false when the owner never saved any.
	LoadWorkHours(ctx context.Context, ownerID string) (WorkHours, bool, error)
	SaveWorkHours(ctx context.Context, ownerID string, wh WorkHours) error

	Catalog(ctx context.Context) (Catalog, error)
}
