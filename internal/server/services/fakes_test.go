package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/gophtodo/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/gophtodo/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memTasks is an owner-scoped task store that counts writes and can be
// told to fail a given operation.
type memTasks struct {
	mu     sync.Mutex
	rows   map[string]models.Task
	seq    int
	fail   map[string]error
	writes int
	lists  int

	// afterList runs once a list has been read, outside the lock.
	afterList func(ctx context.Context)
}

func newMemTasks(seed ...models.Task) *memTasks {
	m := &memTasks{rows: map[string]models.Task{}, fail: map[string]error{}}
	for _, t := range seed {
		m.rows[t.ID] = t
	}
	return m
}

func (m *memTasks) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	out, err := m.listByOwner(ctx, ownerID)
	if err == nil && m.afterList != nil {
		m.afterList(ctx)
	}
	return out, err
}

func (m *memTasks) listByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if err := m.fail["list"]; err != nil {
		return nil, err
	}
	out := []models.Task{}
	for _, t := range m.rows {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memTasks) GetByID(_ context.Context, id, ownerID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["get"]; err != nil {
		return nil, err
	}
	t, ok := m.rows[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (m *memTasks) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["create"]; err != nil {
		return nil, err
	}
	m.seq++
	m.writes++
	t := *task
	t.ID = fmt.Sprintf("t%03d", m.seq)
	m.rows[t.ID] = t
	return &t, nil
}

func (m *memTasks) Update(_ context.Context, id, ownerID string, f models.TaskFields, updatedAt time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["update"]; err != nil {
		return nil, err
	}
	t, ok := m.rows[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	m.writes++
	t.Text, t.Completed, t.DueDate, t.Priority = f.Text, f.Completed, f.DueDate, f.Priority
	t.UpdatedAt = updatedAt
	m.rows[id] = t
	return &t, nil
}

func (m *memTasks) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["delete"]; err != nil {
		return err
	}
	t, ok := m.rows[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	m.writes++
	delete(m.rows, id)
	return nil
}

func (m *memTasks) DeleteCompleted(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["delete_completed"]; err != nil {
		return 0, err
	}
	var n int64
	for id, t := range m.rows {
		if t.OwnerID == ownerID && t.Completed {
			delete(m.rows, id)
			n++
		}
	}
	m.writes += int(n)
	return n, nil
}

func (m *memTasks) get(id string) (models.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	return t, ok
}

func (m *memTasks) count(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.rows {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	getErr  error
	created int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.created++
	c := *u
	c.ID = fmt.Sprintf("u%d", f.created)
	c.CreatedAt = time.Now()
	f.byEmail[c.Email] = &c
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefresh struct {
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	purged    int64
	created   []string
}

func (f *fakeRefresh) Create(_ context.Context, userID, token string, _ time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefresh) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findOut == nil {
		return nil, common.ErrorNotFound
	}
	return f.findOut, nil
}

func (f *fakeRefresh) Delete(context.Context, string) error { return f.delErr }

func (f *fakeRefresh) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.purged, nil
}

type fakeRepoManager struct {
	users   *fakeUsers
	refresh *fakeRefresh
	tasks   *memTasks
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.refresh }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository                     { return m.tasks }

// memCache is a TaskListCache that records invalidations.
type memCache struct {
	mu          sync.Mutex
	lists       map[string][]models.Task
	invalidated []string
	getErr      error
}

func newMemCache() *memCache {
	return &memCache{lists: map[string][]models.Task{}}
}

func (c *memCache) Get(_ context.Context, ownerID string) ([]models.Task, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	l, ok := c.lists[ownerID]
	return l, ok, nil
}

func (c *memCache) Set(_ context.Context, ownerID string, tasks []models.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[ownerID] = tasks
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, ownerID)
	c.invalidated = append(c.invalidated, ownerID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errStore = errors.New("connection reset")

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
