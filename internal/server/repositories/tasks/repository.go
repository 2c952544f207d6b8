// Package tasks declares the task store contract and its PostgreSQL
// implementation. Every operation is scoped by owner: a task that exists
// under another owner is indistinguishable from a missing one.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Repository is the task store.
type Repository interface {
	// ListByOwner returns the owner's tasks, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)

	// GetByID returns common.ErrorNotFound when the task is absent or foreign.
	GetByID(ctx context.Context, id, ownerID string) (*models.Task, error)

	// Create stores task and fills in its ID.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// Update overwrites the mutable fields of (id, ownerID) and stamps
	// updatedAt. Zero matched rows yield common.ErrorNotFound.
	Update(ctx context.Context, id, ownerID string, f models.TaskFields, updatedAt time.Time) (*models.Task, error)

	// Delete removes (id, ownerID); zero matched rows yield common.ErrorNotFound.
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteCompleted removes the owner's completed tasks and reports how many.
	DeleteCompleted(ctx context.Context, ownerID string) (int64, error)
}
