package ports

import (
	"context"

	"timelapse/internal/domain/world"
)

// PortalRepository persists the portal catalog. SaveAll is insert-or-ignore:
// a portal id already on record is left untouched, so re-ingesting an
// overlapping feed window never overwrites first-seen metadata.
type PortalRepository interface {
	SaveAll(ctx context.Context, portals []world.Portal) error
	ListAll(ctx context.Context) ([]world.Portal, error)
}

// ActionRepository persists normalized actions. SaveAll is insert-or-ignore
// keyed on Action.ID, making repeated ingestion over overlapping windows
// idempotent.
type ActionRepository interface {
	SaveAll(ctx context.Context, actions []world.Action) error
	ListOrderedByTime(ctx context.Context, fromMs, toMs int64) ([]world.Action, error)
	Count(ctx context.Context) (int64, error)
}
