// Package wire converts between domain records and the rpc message types.
// Both transports and the export snapshot share these conversions.
package wire

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

func Task(t *models.Task) rpc.Task {
	return rpc.Task{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		DueDate:   t.DueDate,
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Tasks never returns nil so that an empty list encodes as [].
func Tasks(list []models.Task) []rpc.Task {
	out := make([]rpc.Task, 0, len(list))
	for i := range list {
		out = append(out, Task(&list[i]))
	}
	return out
}

// DueDate parses an optional due date. Nil and blank mean no due date.
func DueDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := common.ParseDueDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateFields converts a create request. Text and priority are validated
// by the service.
func CreateFields(r *rpc.CreateTodoRequest) (models.TaskFields, error) {
	due, err := DueDate(r.DueDate)
	if err != nil {
		return models.TaskFields{}, err
	}
	return models.TaskFields{Text: r.Text, DueDate: due, Priority: common.Priority(r.Priority)}, nil
}

// Patch converts a partial update. An empty dueDate clears the due date.
func Patch(r *rpc.UpdateTodoRequest) (models.TaskPatch, error) {
	p := models.TaskPatch{Text: r.Text, Completed: r.Completed}
	if r.DueDate != nil {
		if strings.TrimSpace(*r.DueDate) == "" {
			p.ClearDueDate = true
		} else {
			d, err := common.ParseDueDate(*r.DueDate)
			if err != nil {
				return models.TaskPatch{}, err
			}
			p.DueDate = &d
		}
	}
	if r.Priority != nil {
		pr := common.Priority(*r.Priority)
		p.Priority = &pr
	}
	return p, nil
}

// ClientTasks converts the submitted sync list. Nothing is validated here:
// the reconcile checks only the tasks it is going to write.
func ClientTasks(in []rpc.SyncTask) []models.ClientTask {
	out := make([]models.ClientTask, 0, len(in))
	for _, t := range in {
		ct := models.ClientTask{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  common.Priority(t.Priority),
			UpdatedAt: t.UpdatedAt,
		}
		if t.DueDate != nil {
			ct.DueDate = *t.DueDate
		}
		out = append(out, ct)
	}
	return out
}

// LastSync converts epoch milliseconds. Nil and non-positive values mean
// the client never synced.
func LastSync(ms *int64) *time.Time {
	if ms == nil || *ms <= 0 {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func User(u *models.User) rpc.UserInfo {
	return rpc.UserInfo{ID: u.ID, Email: u.Email, Name: u.Name}
}
