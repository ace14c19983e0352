package ports

import (
	"context"
	"errors"

	"route-collection-service/internal/domain"
)

// ErrSnapshotNotFound is returned by Load for unknown snapshot names.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is a boundary for persisting route collection exports.
// The stored payload is exactly the manager's export data; no separate
// persistence format exists.
type SnapshotRepository interface {
	// Save stores the routes under name, replacing any previous snapshot
	// with that name.
	Save(ctx context.Context, name string, routes []*domain.Route) error
	// Load returns the routes stored under name.
	Load(ctx context.Context, name string) ([]*domain.Route, error)
	// List returns all snapshot names in save order.
	List(ctx context.Context) ([]string, error)
}
