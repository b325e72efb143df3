package providers

import (
	"context"

	"github.com/slotscout/slotscout/internal/domain/entities"
)

// SnapshotStore persists the ranked result of an aggregation pass and can
// serve it back as a cache. The store is an external collaborator; the
// engine treats it as opaque.
type SnapshotStore interface {
	Write(ctx context.Context, locations []entities.Location) error
	Read(ctx context.Context) ([]entities.Location, error)
}
