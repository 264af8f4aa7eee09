// Package store is the persistence gateway for shop configurations. The
// engine treats a save as an opaque, all-or-nothing key-value write of one
// complete configuration snapshot; there is no field-level persistence.
package store

import (
	"context"
	"errors"

	"github.com/shopforge/shopforge/internal/draft"
)

// ErrNotFound indicates a requested shop configuration is missing.
var ErrNotFound = errors.New("shop config not found")

// Gateway persists complete configuration snapshots keyed by shop id.
type Gateway interface {
	Save(ctx context.Context, snap draft.Snapshot) error
	Load(ctx context.Context, shopID string) (draft.Snapshot, error)
	Close() error
}
