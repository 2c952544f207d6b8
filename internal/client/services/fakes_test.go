package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	CloseErr    error
	RegisterErr error
	LoginErr    error
	ResumeErr   error
	PingErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	ClearErr    error
	SyncErr     error
	ExportErr   error

	// server side state
	server  map[string]models.Task
	nextID  int
	syncRet []models.Task

	// hooks
	onRefresh func(string)
	syncHook  func()

	// captured arguments
	LastRegisterEmail string
	LastLoginEmail    string
	LastResumeToken   string
	LastUpdateID      string
	LastUpdate        models.TaskEdit
	LastDeleteID      string
	LastSyncLast      *time.Time
	LastSyncTasks     []models.Task
	Calls             []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{server: map[string]models.Task{}}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, email, password, name string) error {
	f.record("register")
	f.LastRegisterEmail = email
	return f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) error {
	f.record("login")
	f.LastLoginEmail = email
	if f.LoginErr != nil {
		return f.LoginErr
	}
	if f.onRefresh != nil {
		f.onRefresh("R-" + email)
	}
	return nil
}

func (f *fakeClient) Resume(ctx context.Context, token string) error {
	f.record("resume")
	f.LastResumeToken = token
	if f.ResumeErr != nil {
		return f.ResumeErr
	}
	if f.onRefresh != nil {
		f.onRefresh(token + "+")
	}
	return nil
}

func (f *fakeClient) Logout() {
	f.record("logout")
	if f.onRefresh != nil {
		f.onRefresh("")
	}
}

func (f *fakeClient) OnRefreshToken(fn func(string)) { f.onRefresh = fn }

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) ListTodos(ctx context.Context) ([]models.Task, error) {
	out := make([]models.Task, 0, len(f.server))
	for _, t := range f.server {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeClient) CreateTodo(ctx context.Context, t models.Task) (models.Task, error) {
	f.record("create")
	if f.CreateErr != nil {
		return models.Task{}, f.CreateErr
	}
	f.nextID++
	t.ID = fmt.Sprintf("s%d", f.nextID)
	t.LocalID = ""
	t.Pending = false
	t.UpdatedAt = t.UpdatedAt.Add(time.Millisecond)
	f.server[t.ID] = t
	return t, nil
}

func (f *fakeClient) UpdateTodo(ctx context.Context, id string, e models.TaskEdit) (models.Task, error) {
	f.record("update")
	f.LastUpdateID = id
	f.LastUpdate = e
	if f.UpdateErr != nil {
		return models.Task{}, f.UpdateErr
	}
	t, ok := f.server[id]
	if !ok {
		return models.Task{}, client.ErrNotFound
	}
	t = e.Apply(t)
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	f.server[id] = t
	return t, nil
}

func (f *fakeClient) DeleteTodo(ctx context.Context, id string) error {
	f.record("delete")
	f.LastDeleteID = id
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.server[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.server, id)
	return nil
}

func (f *fakeClient) ClearCompleted(ctx context.Context) (int64, error) {
	f.record("clear")
	if f.ClearErr != nil {
		return 0, f.ClearErr
	}
	var n int64
	for id, t := range f.server {
		if t.Completed {
			delete(f.server, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeClient) Sync(ctx context.Context, lastSync *time.Time, tasks []models.Task) ([]models.Task, error) {
	f.record("sync")
	f.mu.Lock()
	f.LastSyncLast = lastSync
	f.LastSyncTasks = tasks
	hook := f.syncHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.SyncErr != nil {
		return nil, f.SyncErr
	}
	return f.syncRet, nil
}

func (f *fakeClient) Export(ctx context.Context) (string, error) {
	return "https://example.com/export.json", f.ExportErr
}

// ---- snapshot repository ----

type memSnapshots struct {
	mu      sync.Mutex
	saved   *models.Snapshot
	saves   int
	saveErr error
	loadErr error
}

func (m *memSnapshots) Save(ctx context.Context, s models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = &s
	return nil
}

func (m *memSnapshots) Load(ctx context.Context) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return models.Snapshot{}, m.loadErr
	}
	if m.saved == nil {
		return models.Snapshot{}, nil
	}
	return *m.saved, nil
}

func (m *memSnapshots) last() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return models.Snapshot{}
	}
	return *m.saved
}
