package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// taskAt resolves a 1-based position in the full list.
func (a *App) taskAt(arg string) (models.Task, error) {
	tasks := a.tasks.Tasks()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(tasks) {
		return models.Task{}, fmt.Errorf("%w: no task number %q", common.ErrorValidation, arg)
	}
	return tasks[n-1], nil
}

func usage(format string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrorValidation, format)
}

// keptLocally turns a transport failure on a change that is still in the
// cache into a notice, since the next sync carries it.
func (a *App) keptLocally(t models.Task, err error) error {
	if err != nil && t.Pending && errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable: saved locally, will be sent on the next sync")
		return nil
	}
	return err
}

// printTasks prints list numbered by position in the full list, so the
// numbers shown by filters and searches can be used with other commands.
func (a *App) printTasks(list []models.Task) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}

	pos := make(map[string]int)
	for i, t := range a.tasks.Tasks() {
		pos[t.LocalID] = i + 1
	}
	now := a.now()
	for _, t := range list {
		fmt.Fprintln(a.out, formatTask(pos[t.LocalID], t, now))
	}
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := common.ParseDueDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Add creates a task. With arguments they form the text; without, the text,
// due date and priority are prompted for.
func (a *App) Add(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	var (
		due      *time.Time
		priority = common.PriorityMedium
	)

	if len(args) == 0 {
		var err error
		if text, err = getSimpleText(a.reader, "Enter task text", a.out); err != nil {
			return err
		}
		s, err := getSimpleText(a.reader, "Enter due date (YYYY-MM-DD, empty for none)", a.out)
		if err != nil {
			return err
		}
		if due, err = parseDue(s); err != nil {
			return err
		}
		s, err = getSimpleText(a.reader, "Enter priority (low, medium, high; empty for medium)", a.out)
		if err != nil {
			return err
		}
		if priority, err = common.ParsePriority(s); err != nil {
			return err
		}
	}

	t, err := a.todos.Add(ctx, text, due, priority)
	if err = a.keptLocally(t, err); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added: %s\n", t.Text)
	return nil
}

// List prints all tasks or those matching a filter (all, active, completed).
func (a *App) List(ctx context.Context, args []string) error {
	f := models.FilterAll
	if len(args) > 0 {
		var err error
		if f, err = models.ParseFilter(args[0]); err != nil {
			return err
		}
	}
	a.printTasks(a.tasks.Filter(f))
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	a.printTasks(a.tasks.Search(strings.Join(args, " ")))
	return nil
}

func (a *App) Overdue(ctx context.Context) error {
	a.printTasks(a.tasks.Overdue(a.now()))
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	fmt.Fprintln(a.out, formatStats(a.tasks.Stats(a.now()), a.tasks.LastSync()))
	return nil
}

func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("toggle <n>")
	}
	t, err := a.taskAt(args[0])
	if err != nil {
		return err
	}
	t, err = a.todos.Toggle(ctx, t.LocalID)
	if err = a.keptLocally(t, err); err != nil {
		return err
	}
	state := "active"
	if t.Completed {
		state = "completed"
	}
	fmt.Fprintf(a.out, "%s: %s\n", t.Text, state)
	return nil
}

// Edit replaces the text of a task, prompting for it when not given.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("edit <n> [text]")
	}
	t, err := a.taskAt(args[0])
	if err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	if text == "" {
		text, err = getSimpleText(a.reader, fmt.Sprintf("Enter new text for %q", t.Text), a.out)
		if err != nil {
			return err
		}
	}
	return a.edit(ctx, t, models.TaskEdit{Text: &text})
}

func (a *App) SetPriority(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("priority <n> <low|medium|high>")
	}
	t, err := a.taskAt(args[0])
	if err != nil {
		return err
	}
	p, err := common.ParsePriority(args[1])
	if err != nil {
		return err
	}
	return a.edit(ctx, t, models.TaskEdit{Priority: &p})
}

// SetDue sets the due date of a task; "none" clears it.
func (a *App) SetDue(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("due <n> <YYYY-MM-DD|none>")
	}
	t, err := a.taskAt(args[0])
	if err != nil {
		return err
	}

	var e models.TaskEdit
	if strings.EqualFold(args[1], "none") {
		e.ClearDueDate = true
	} else {
		due, err := common.ParseDueDate(args[1])
		if err != nil {
			return err
		}
		e.DueDate = &due
	}
	return a.edit(ctx, t, e)
}

func (a *App) edit(ctx context.Context, t models.Task, e models.TaskEdit) error {
	t, err := a.todos.Edit(ctx, t.LocalID, e)
	if err = a.keptLocally(t, err); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated:", formatTask(a.position(t.LocalID), t, a.now()))
	return nil
}

func (a *App) position(localID string) int {
	for i, t := range a.tasks.Tasks() {
		if t.LocalID == localID {
			return i + 1
		}
	}
	return 0
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <n>")
	}
	t, err := a.taskAt(args[0])
	if err != nil {
		return err
	}
	if err := a.todos.Delete(ctx, t.LocalID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted: %s\n", t.Text)
	return nil
}

func (a *App) ClearCompleted(ctx context.Context) error {
	n, err := a.todos.ClearCompleted(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d completed task(s)\n", n)
	return nil
}

// Move changes the position of a task in the local list. The server keeps
// its own order, so the next sync may undo it.
func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("move <from> <to>")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage("move <from> <to>")
	}
	if err := a.todos.Reorder(ctx, from-1, to-1); err != nil {
		return err
	}
	a.printTasks(a.tasks.Tasks())
	return nil
}
