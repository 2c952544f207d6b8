// Package models defines the client-side view of a task list.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Task is a locally cached to-do item.
//
// LocalID identifies the row in the local cache and never leaves the
// client. ID is the server identifier and stays empty until the task has
// been acknowledged by the server (a create response or a reconcile).
type Task struct {
	LocalID   string
	ID        string
	Text      string
	Completed bool
	DueDate   *time.Time
	Priority  common.Priority
	CreatedAt time.Time
	UpdatedAt time.Time

	// Pending marks an optimistic change the server has not confirmed.
	Pending bool
}

// Overdue reports whether t is incomplete and its due date lies before now.
func (t *Task) Overdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter accepts all, active and completed. An empty string is FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", common.ErrorValidation, s)
	}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Stats summarizes a task list.
type Stats struct {
	Total     int
	Active    int
	Completed int
	Overdue   int
}

// Snapshot is the serializable state of a cache.
type Snapshot struct {
	Tasks    []Task
	LastSync *time.Time
}

// TaskEdit is a partial local edit. Nil fields are left untouched.
type TaskEdit struct {
	Text         *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *common.Priority
}

// Apply returns t with the edit applied.
func (e TaskEdit) Apply(t Task) Task {
	if e.Text != nil {
		t.Text = *e.Text
	}
	if e.Completed != nil {
		t.Completed = *e.Completed
	}
	if e.ClearDueDate {
		t.DueDate = nil
	} else if e.DueDate != nil {
		d := *e.DueDate
		t.DueDate = &d
	}
	if e.Priority != nil {
		t.Priority = *e.Priority
	}
	return t
}
