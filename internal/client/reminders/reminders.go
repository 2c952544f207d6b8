// Package reminders turns due dates in the cache into notifications.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Kind classifies a reminder.
type Kind string

const (
	KindOverdue Kind = "overdue"
	KindDueHour Kind = "due_hour"
	KindDueDay  Kind = "due_day"
)

const (
	TitleOverdue = "Task Overdue!"
	TitleDueSoon = "Task Due Soon!"
)

// Reminder is one notification about one task.
type Reminder struct {
	Kind  Kind
	Title string
	Body  string
	Task  models.Task
}

// Notifier delivers reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Source lists the tasks to check. *cache.Cache satisfies it.
type Source interface {
	Tasks() []models.Task
}

// Due returns the reminders for tasks at now. Completed tasks and tasks
// without a due date produce none. A task yields at most one reminder:
// overdue, else due within an hour, else due within a day.
func Due(tasks []models.Task, now time.Time) []Reminder {
	var out []Reminder
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		switch {
		case due.Before(now):
			out = append(out, Reminder{
				Kind:  KindOverdue,
				Title: TitleOverdue,
				Body:  fmt.Sprintf("\"%s\" is overdue!", t.Text),
				Task:  t,
			})
		case !due.After(now.Add(time.Hour)):
			out = append(out, dueSoon(KindDueHour, t, due))
		case !due.After(now.Add(24 * time.Hour)):
			out = append(out, dueSoon(KindDueDay, t, due))
		}
	}
	return out
}

func dueSoon(k Kind, t models.Task, due time.Time) Reminder {
	return Reminder{
		Kind:  k,
		Title: TitleDueSoon,
		Body:  fmt.Sprintf("\"%s\" is due on %s", t.Text, due.UTC().Format(common.DateLayout)),
		Task:  t,
	}
}

type sentKey struct {
	localID string
	kind    Kind
	due     int64
}

// Scheduler checks a Source periodically and notifies each task at most once
// per kind. Changing a due date makes the task eligible again.
type Scheduler struct {
	source   Source
	notifier Notifier
	now      func() time.Time

	mu   sync.Mutex
	sent map[sentKey]struct{}
}

func NewScheduler(src Source, n Notifier) *Scheduler {
	return &Scheduler{source: src, notifier: n, now: time.Now, sent: map[sentKey]struct{}{}}
}

// Check sends the reminders that are due and not sent yet. It returns how
// many were delivered.
func (s *Scheduler) Check(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		n    int
		errs []error
	)
	for _, r := range Due(s.source.Tasks(), s.now()) {
		k := sentKey{localID: r.Task.LocalID, kind: r.Kind, due: r.Task.DueDate.UnixMilli()}
		if _, ok := s.sent[k]; ok {
			continue
		}
		if err := s.notifier.Notify(ctx, r); err != nil {
			errs = append(errs, err)
			continue
		}
		s.sent[k] = struct{}{}
		n++
	}
	return n, errors.Join(errs...)
}

// Run checks immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, onErr func(error)) {
	report := func(err error) {
		if err != nil && onErr != nil {
			onErr(err)
		}
	}

	_, err := s.Check(ctx)
	report(err)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := s.Check(ctx)
			report(err)
		}
	}
}

// WriterNotifier prints reminders as single lines.
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Notify(_ context.Context, r Reminder) error {
	_, err := fmt.Fprintf(w.W, "[%s] %s\n", r.Title, r.Body)
	return err
}
