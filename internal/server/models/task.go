// Package models holds the server-side domain records.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Task is a stored to-do item. OwnerID is set at creation and never changes.
type Task struct {
	ID        string
	OwnerID   string
	Text      string
	Completed bool
	DueDate   *time.Time
	Priority  common.Priority
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskFields are the only task fields a client may overwrite.
type TaskFields struct {
	Text      string
	Completed bool
	DueDate   *time.Time
	Priority  common.Priority
}

// Fields returns the mutable part of t.
func (t *Task) Fields() TaskFields {
	return TaskFields{Text: t.Text, Completed: t.Completed, DueDate: t.DueDate, Priority: t.Priority}
}

// TaskPatch is a partial update. Nil pointers leave the field untouched;
// ClearDueDate removes the due date.
type TaskPatch struct {
	Text         *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *common.Priority
}

// Apply returns f with the patch applied.
func (p TaskPatch) Apply(f TaskFields) TaskFields {
	if p.Text != nil {
		f.Text = *p.Text
	}
	if p.Completed != nil {
		f.Completed = *p.Completed
	}
	if p.ClearDueDate {
		f.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		f.DueDate = &d
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	return f
}

// ClientTask is one entry of the list a client submits for reconciliation.
// ID is empty for tasks the store has never seen. DueDate is kept as sent
// (blank for none) and only parsed for tasks the reconcile writes.
type ClientTask struct {
	ID        string
	Text      string
	Completed bool
	DueDate   string
	Priority  common.Priority
	UpdatedAt time.Time
}

// Fields returns the mutable part of c with the due date parsed.
func (c ClientTask) Fields() (TaskFields, error) {
	f := TaskFields{Text: c.Text, Completed: c.Completed, Priority: c.Priority}
	if strings.TrimSpace(c.DueDate) != "" {
		d, err := common.ParseDueDate(c.DueDate)
		if err != nil {
			return TaskFields{}, err
		}
		f.DueDate = &d
	}
	return f, nil
}
