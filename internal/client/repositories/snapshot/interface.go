// Package snapshot persists the client cache between runs.
package snapshot

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// Repository saves and loads a whole cache snapshot.
type Repository interface {
	// Save replaces the stored snapshot with s atomically.
	Save(ctx context.Context, s models.Snapshot) error

	// Load returns the stored snapshot. An empty store yields an empty
	// snapshot with a nil LastSync.
	Load(ctx context.Context) (models.Snapshot, error)
}
