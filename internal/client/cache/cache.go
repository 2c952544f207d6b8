// Package cache holds the client's in-memory task list.
//
// A Cache is an explicit object owned by the caller; nothing here is global.
// All methods are safe for concurrent use. Returned tasks are copies, so
// callers may keep or modify them freely.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/google/uuid"
)

// Removed is a task taken out of the list together with its former index.
type Removed struct {
	Task  models.Task
	Index int
}

// Cache is a mutex-guarded, ordered task list with the time of the last
// successful reconcile.
//
// Every local change bumps a revision counter. Replace uses it to tell
// changes made while a reconcile was in flight from the state that was sent.
type Cache struct {
	mu       sync.RWMutex
	tasks    []models.Task
	lastSync *time.Time

	rev      uint64
	touched  map[string]uint64 // local id -> rev of its last change
	deleted  map[string]uint64 // server id -> rev of its local removal
	creating map[string]uint64 // local id -> rev when its create was sent

	now   func() time.Time
	newID func() string
}

// New returns an empty cache. A nil now uses time.Now.
func New(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		touched:  make(map[string]uint64),
		deleted:  make(map[string]uint64),
		creating: make(map[string]uint64),
		now:      now,
		newID:    func() string { return uuid.NewString() },
	}
}

func (c *Cache) touch(localID string) uint64 {
	c.rev++
	c.touched[localID] = c.rev
	return c.rev
}

func (c *Cache) forget(t models.Task) {
	delete(c.touched, t.LocalID)
	delete(c.creating, t.LocalID)
	if t.ID != "" {
		c.rev++
		c.deleted[t.ID] = c.rev
	}
}

func (c *Cache) index(localID string) int {
	for i := range c.tasks {
		if c.tasks[i].LocalID == localID {
			return i
		}
	}
	return -1
}

func notFound(localID string) error {
	return fmt.Errorf("%w: task %s", common.ErrorNotFound, localID)
}

func normalizeText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: text is required", common.ErrorValidation)
	}
	return s, nil
}

// Add appends a new pending task stamped with the current time.
func (c *Cache) Add(text string, due *time.Time, p common.Priority) (models.Task, error) {
	return c.add(text, due, p, false)
}

// AddCreating is Add for a task whose create request is about to be sent.
// Until Confirm, Remove or Release is called for it the task is left out of
// Outgoing, so a concurrent reconcile cannot insert it a second time.
func (c *Cache) AddCreating(text string, due *time.Time, p common.Priority) (models.Task, error) {
	return c.add(text, due, p, true)
}

func (c *Cache) add(text string, due *time.Time, p common.Priority, creating bool) (models.Task, error) {
	text, err := normalizeText(text)
	if err != nil {
		return models.Task{}, err
	}
	if p == "" {
		p = common.PriorityMedium
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	t := models.Task{
		LocalID:   c.newID(),
		Text:      text,
		Priority:  p,
		CreatedAt: now,
		UpdatedAt: now,
		Pending:   true,
	}
	if due != nil {
		d := *due
		t.DueDate = &d
	}
	c.tasks = append(c.tasks, t)
	rev := c.touch(t.LocalID)
	if creating {
		c.creating[t.LocalID] = rev
	}
	return t.Clone(), nil
}

// Release ends the create started by AddCreating without a server copy. The
// task stays pending and the next reconcile carries it.
func (c *Cache) Release(localID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.creating, localID)
}

// Toggle flips the completion state. It returns the task before and after.
func (c *Cache) Toggle(localID string) (before, after models.Task, err error) {
	return c.update(localID, func(t models.Task) models.Task {
		t.Completed = !t.Completed
		return t
	})
}

// Edit applies e, stamps updatedAt and marks the task pending.
// It returns the task before and after the edit.
func (c *Cache) Edit(localID string, e models.TaskEdit) (before, after models.Task, err error) {
	if e.Text != nil {
		text, err := normalizeText(*e.Text)
		if err != nil {
			return models.Task{}, models.Task{}, err
		}
		e.Text = &text
	}
	return c.update(localID, e.Apply)
}

func (c *Cache) update(localID string, fn func(models.Task) models.Task) (before, after models.Task, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(localID)
	if i < 0 {
		return models.Task{}, models.Task{}, notFound(localID)
	}

	before = c.tasks[i].Clone()
	after = fn(before.Clone())
	after.UpdatedAt = c.now()
	after.Pending = true
	c.tasks[i] = after
	c.touch(localID)
	return before, after.Clone(), nil
}

// Delete removes the task and reports where it was.
func (c *Cache) Delete(localID string) (Removed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(localID)
	if i < 0 {
		return Removed{}, notFound(localID)
	}
	r := Removed{Task: c.tasks[i].Clone(), Index: i}
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	c.forget(r.Task)
	return r, nil
}

// ClearCompleted removes every completed task. The result is ordered by
// former index.
func (c *Cache) ClearCompleted() []Removed {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []Removed
	kept := c.tasks[:0]
	for i, t := range c.tasks {
		if t.Completed {
			removed = append(removed, Removed{Task: t, Index: i})
			c.forget(t)
			continue
		}
		kept = append(kept, t)
	}
	c.tasks = kept
	return removed
}

// RestoreAt puts removed tasks back at their former positions. Indexes past
// the end append. Items must be ordered by Index, as Delete and
// ClearCompleted return them.
func (c *Cache) RestoreAt(items ...Removed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range items {
		if c.index(r.Task.LocalID) >= 0 {
			continue
		}
		i := r.Index
		if i < 0 {
			i = 0
		}
		if i > len(c.tasks) {
			i = len(c.tasks)
		}
		c.tasks = append(c.tasks, models.Task{})
		copy(c.tasks[i+1:], c.tasks[i:])
		c.tasks[i] = r.Task
		if r.Task.ID != "" {
			delete(c.deleted, r.Task.ID)
		}
		c.touch(r.Task.LocalID)
	}
}

// Reorder moves the task at position from to position to. The order is
// local only.
func (c *Cache) Reorder(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: position out of range", common.ErrorValidation)
	}
	if from == to {
		return nil
	}
	t := c.tasks[from]
	c.tasks = append(c.tasks[:from], c.tasks[from+1:]...)
	c.tasks = append(c.tasks[:to], append([]models.Task{t}, c.tasks[to:]...)...)
	return nil
}

// Confirm swaps the local copy for the server's version of the task and
// clears its pending flag. The local id is kept.
//
// A task edited locally while its create was in flight only takes the
// server id and creation time; it stays pending so the edit is sent later.
func (c *Cache) Confirm(localID string, server models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	started, creating := c.creating[localID]
	delete(c.creating, localID)

	i := c.index(localID)
	if i < 0 {
		return
	}
	if creating && c.touched[localID] > started {
		c.tasks[i].ID = server.ID
		c.tasks[i].CreatedAt = server.CreatedAt
		c.touch(localID)
		return
	}
	server = server.Clone()
	server.LocalID = localID
	server.Pending = false
	c.tasks[i] = server
	c.touch(localID)
}

// Revert replaces the task with its earlier copy.
func (c *Cache) Revert(before models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(before.LocalID); i >= 0 {
		c.tasks[i] = before.Clone()
		c.touch(before.LocalID)
	}
}

// Remove drops the task if present.
func (c *Cache) Remove(localID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(localID); i >= 0 {
		t := c.tasks[i]
		c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		c.forget(t)
	}
}

// Outgoing returns the list to send to a reconcile together with the
// current revision, which the matching Replace call takes back. Tasks whose
// create request is still in flight are left out.
func (c *Cache) Outgoing() ([]models.Task, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if _, ok := c.creating[t.LocalID]; ok {
			continue
		}
		out = append(out, t.Clone())
	}
	return out, c.rev
}

// Replace installs the server list returned by a reconcile whose payload
// was taken from Outgoing at revision since, and records syncedAt as the
// last sync time.
//
// Local changes made after since were made while the reconcile was in
// flight. Changed tasks and tasks still being created survive and take
// precedence over their server counterparts; tasks deleted locally in the
// meantime are not brought back.
func (c *Cache) Replace(server []models.Task, since uint64, syncedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := func(t models.Task) bool {
		if _, ok := c.creating[t.LocalID]; ok {
			return true
		}
		return c.touched[t.LocalID] > since
	}

	localByID := make(map[string]string, len(c.tasks))
	newer := make(map[string]models.Task)
	for _, t := range c.tasks {
		if t.ID != "" {
			localByID[t.ID] = t.LocalID
			if changed(t) {
				newer[t.ID] = t
			}
		}
	}

	next := make([]models.Task, 0, len(server))
	seen := make(map[string]bool, len(server))
	for _, s := range server {
		seen[s.ID] = true
		if c.deleted[s.ID] > since {
			continue
		}
		if t, ok := newer[s.ID]; ok {
			next = append(next, t)
			continue
		}
		s = s.Clone()
		s.Pending = false
		if id, ok := localByID[s.ID]; ok {
			s.LocalID = id
		} else {
			s.LocalID = c.newID()
		}
		next = append(next, s)
	}
	for _, t := range c.tasks {
		if changed(t) && (t.ID == "" || !seen[t.ID]) {
			next = append(next, t)
		}
	}

	c.tasks = next
	for id, rev := range c.touched {
		if _, ok := c.creating[id]; !ok && rev <= since {
			delete(c.touched, id)
		}
	}
	for id, rev := range c.deleted {
		if rev <= since {
			delete(c.deleted, id)
		}
	}
	at := syncedAt
	c.lastSync = &at
}

// Get returns the task with the given local id.
func (c *Cache) Get(localID string) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.index(localID)
	if i < 0 {
		return models.Task{}, false
	}
	return c.tasks[i].Clone(), true
}

func (c *Cache) collect(keep func(*models.Task) bool) []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Task, 0, len(c.tasks))
	for i := range c.tasks {
		if keep(&c.tasks[i]) {
			out = append(out, c.tasks[i].Clone())
		}
	}
	return out
}

// Tasks returns the whole list in display order.
func (c *Cache) Tasks() []models.Task {
	return c.collect(func(*models.Task) bool { return true })
}

// Search returns tasks whose text contains query, ignoring case.
func (c *Cache) Search(query string) []models.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	return c.collect(func(t *models.Task) bool {
		return strings.Contains(strings.ToLower(t.Text), q)
	})
}

// Filter returns tasks matching f.
func (c *Cache) Filter(f models.Filter) []models.Task {
	return c.collect(f.Match)
}

// Overdue returns incomplete tasks due before now.
func (c *Cache) Overdue(now time.Time) []models.Task {
	return c.collect(func(t *models.Task) bool { return t.Overdue(now) })
}

// Stats counts tasks by state.
func (c *Cache) Stats(now time.Time) models.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s models.Stats
	for i := range c.tasks {
		t := &c.tasks[i]
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
		if t.Overdue(now) {
			s.Overdue++
		}
	}
	return s
}

// LastSync returns the time of the last successful reconcile, or nil.
func (c *Cache) LastSync() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastSync == nil {
		return nil
	}
	at := *c.lastSync
	return &at
}

// Snapshot returns a deep copy of the cache state.
func (c *Cache) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := models.Snapshot{Tasks: make([]models.Task, 0, len(c.tasks))}
	for _, t := range c.tasks {
		s.Tasks = append(s.Tasks, t.Clone())
	}
	if c.lastSync != nil {
		at := *c.lastSync
		s.LastSync = &at
	}
	return s
}

// Restore replaces the cache state with s.
func (c *Cache) Restore(s models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tasks = make([]models.Task, 0, len(s.Tasks))
	c.touched = make(map[string]uint64)
	c.deleted = make(map[string]uint64)
	c.creating = make(map[string]uint64)
	for _, t := range s.Tasks {
		if t.LocalID == "" {
			t.LocalID = c.newID()
		}
		c.tasks = append(c.tasks, t.Clone())
	}
	c.lastSync = nil
	if s.LastSync != nil {
		at := *s.LastSync
		c.lastSync = &at
	}
}

// Reset empties the cache, as after a logout.
func (c *Cache) Reset() {
	c.Restore(models.Snapshot{})
}
