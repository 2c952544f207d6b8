// Package events dispatches task lifecycle notifications to downstream
// consumers. The server never depends on delivery: publish failures are
// logged by callers and dropped.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TaskCreated    = "todo.created"
	TaskUpdated    = "todo.updated"
	TaskDeleted    = "todo.deleted"
	TasksCleared   = "todos.cleared"
	TasksSynced    = "todos.synced"
	SnapshotExport = "todos.exported"
)

// Event is one notification. Attrs carries type specific details such as
// the number of tasks touched by a sync.
type Event struct {
	Type    string         `json:"type"`
	OwnerID string         `json:"owner_id"`
	TaskID  string         `json:"task_id,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	At      time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
