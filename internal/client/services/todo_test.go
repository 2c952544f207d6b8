package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/cache"
	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todoFixture struct {
	svc   *TodoService
	cache *cache.Cache
	fc    *fakeClient
	repo  *memSnapshots
}

func newTodoFixture() *todoFixture {
	f := &todoFixture{
		cache: cache.New(func() time.Time { return t0 }),
		fc:    newFakeClient(),
		repo:  &memSnapshots{},
	}
	f.svc = NewTodoService(f.fc, f.cache, f.repo)
	return f
}

// added creates a task the server has acknowledged.
func (f *todoFixture) added(t *testing.T, text string) models.Task {
	t.Helper()
	task, err := f.svc.Add(context.Background(), text, nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	return task
}

func TestAdd_ConfirmedByServer(t *testing.T) {
	f := newTodoFixture()
	due := t0.Add(24 * time.Hour)

	task, err := f.svc.Add(context.Background(), "buy milk", &due, common.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "s1", task.ID)
	assert.False(t, task.Pending)
	assert.NotEmpty(t, task.LocalID)
	assert.Equal(t, common.PriorityHigh, task.Priority)

	snap := f.repo.last()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "s1", snap.Tasks[0].ID)
	assert.Equal(t, []string{"create"}, f.fc.Calls)
}

func TestAdd_ServerUnreachableKeepsPending(t *testing.T) {
	f := newTodoFixture()
	f.fc.CreateErr = client.ErrUnavailable

	task, err := f.svc.Add(context.Background(), "offline", nil, "")
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.True(t, task.Pending)
	assert.Empty(t, task.ID)

	snap := f.repo.last()
	require.Len(t, snap.Tasks, 1)
	assert.True(t, snap.Tasks[0].Pending)
	// the next reconcile carries it
	outgoing, _ := f.cache.Outgoing()
	require.Len(t, outgoing, 1)
	assert.Equal(t, "offline", outgoing[0].Text)
}

func TestAdd_RejectedIsRolledBack(t *testing.T) {
	f := newTodoFixture()
	f.fc.CreateErr = fmt.Errorf("%w: invalid due date", client.ErrValidation)

	_, err := f.svc.Add(context.Background(), "x", nil, "")
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Empty(t, f.cache.Tasks())
	assert.Empty(t, f.repo.last().Tasks)
}

func TestAdd_LocalValidationSkipsServer(t *testing.T) {
	f := newTodoFixture()

	_, err := f.svc.Add(context.Background(), "   ", nil, "")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, f.fc.Calls)
	assert.Zero(t, f.repo.saves)
}

func TestToggle(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")

		got, err := f.svc.Toggle(context.Background(), a.LocalID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.False(t, got.Pending)
		assert.Equal(t, a.ID, f.fc.LastUpdateID)
		require.NotNil(t, f.fc.LastUpdate.Completed)
		assert.True(t, *f.fc.LastUpdate.Completed)
		assert.Nil(t, f.fc.LastUpdate.Text)
	})

	t.Run("deleted on server is rolled back", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")
		delete(f.fc.server, a.ID)

		got, err := f.svc.Toggle(context.Background(), a.LocalID)
		require.ErrorIs(t, err, client.ErrNotFound)
		assert.False(t, got.Completed)

		cached, _ := f.cache.Get(a.LocalID)
		assert.False(t, cached.Completed)
		assert.False(t, cached.Pending)
		assert.False(t, f.repo.last().Tasks[0].Completed)
	})

	t.Run("server unreachable keeps change", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")
		f.fc.UpdateErr = client.ErrUnavailable

		got, err := f.svc.Toggle(context.Background(), a.LocalID)
		require.ErrorIs(t, err, client.ErrUnavailable)
		assert.True(t, got.Completed)
		assert.True(t, got.Pending)
		assert.True(t, f.repo.last().Tasks[0].Pending)
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newTodoFixture()
		_, err := f.svc.Toggle(context.Background(), "missing")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestEdit(t *testing.T) {
	f := newTodoFixture()
	a := f.added(t, "a")
	text := "renamed"
	due := t0.Add(time.Hour)

	got, err := f.svc.Edit(context.Background(), a.LocalID, models.TaskEdit{Text: &text, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Text)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)
	assert.Equal(t, "renamed", *f.fc.LastUpdate.Text)
}

func TestEdit_UnsyncedTaskWaitsForReconcile(t *testing.T) {
	f := newTodoFixture()
	f.fc.CreateErr = client.ErrUnavailable
	a, _ := f.svc.Add(context.Background(), "a", nil, "")
	f.fc.CreateErr = nil
	f.fc.Calls = nil

	high := common.PriorityHigh
	got, err := f.svc.Edit(context.Background(), a.LocalID, models.TaskEdit{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, common.PriorityHigh, got.Priority)
	assert.True(t, got.Pending)
	assert.Empty(t, f.fc.Calls)
}

func TestDelete(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")

		require.NoError(t, f.svc.Delete(context.Background(), a.LocalID))
		assert.Empty(t, f.cache.Tasks())
		assert.Empty(t, f.fc.server)
		assert.Empty(t, f.repo.last().Tasks)
	})

	t.Run("already gone on server", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")
		delete(f.fc.server, a.ID)

		require.NoError(t, f.svc.Delete(context.Background(), a.LocalID))
		assert.Empty(t, f.cache.Tasks())
	})

	t.Run("server unreachable restores task in place", func(t *testing.T) {
		f := newTodoFixture()
		f.added(t, "a")
		b := f.added(t, "b")
		f.added(t, "c")
		f.fc.DeleteErr = client.ErrUnavailable

		err := f.svc.Delete(context.Background(), b.LocalID)
		require.ErrorIs(t, err, client.ErrUnavailable)

		tasks := f.cache.Tasks()
		require.Len(t, tasks, 3)
		assert.Equal(t, "b", tasks[1].Text)
		assert.Len(t, f.repo.last().Tasks, 3)
	})

	t.Run("unsynced task is local only", func(t *testing.T) {
		f := newTodoFixture()
		f.fc.CreateErr = client.ErrUnavailable
		a, _ := f.svc.Add(context.Background(), "a", nil, "")
		f.fc.Calls = nil

		require.NoError(t, f.svc.Delete(context.Background(), a.LocalID))
		assert.Empty(t, f.fc.Calls)
		assert.Empty(t, f.cache.Tasks())
	})
}

func TestClearCompleted(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")
		f.added(t, "b")
		_, err := f.svc.Toggle(context.Background(), a.LocalID)
		require.NoError(t, err)

		n, err := f.svc.ClearCompleted(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, f.cache.Tasks(), 1)
		assert.Len(t, f.fc.server, 1)
	})

	t.Run("rejected restores tasks", func(t *testing.T) {
		f := newTodoFixture()
		a := f.added(t, "a")
		f.added(t, "b")
		f.svc.Toggle(context.Background(), a.LocalID)
		f.fc.ClearErr = client.ErrUnauthorized

		n, err := f.svc.ClearCompleted(context.Background())
		require.ErrorIs(t, err, client.ErrUnauthorized)
		assert.Zero(t, n)
		tasks := f.cache.Tasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, "a", tasks[0].Text)
	})

	t.Run("nothing completed", func(t *testing.T) {
		f := newTodoFixture()
		f.added(t, "a")
		f.fc.Calls = nil

		n, err := f.svc.ClearCompleted(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, f.fc.Calls)
	})
}

func TestReorder_IsLocalAndSaved(t *testing.T) {
	f := newTodoFixture()
	f.added(t, "a")
	f.added(t, "b")
	f.fc.Calls = nil

	require.NoError(t, f.svc.Reorder(context.Background(), 1, 0))
	assert.Empty(t, f.fc.Calls)
	snap := f.repo.last()
	assert.Equal(t, "b", snap.Tasks[0].Text)

	err := f.svc.Reorder(context.Background(), 0, 5)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestLoadAndReset(t *testing.T) {
	f := newTodoFixture()
	f.added(t, "a")

	other := NewTodoService(f.fc, cache.New(nil), f.repo)
	require.NoError(t, other.Load(context.Background()))
	require.Len(t, other.cache.Tasks(), 1)

	require.NoError(t, other.Reset(context.Background()))
	assert.Empty(t, other.cache.Tasks())
	assert.Empty(t, f.repo.last().Tasks)

	f.repo.loadErr = errors.New("disk")
	err := other.Load(context.Background())
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestSaveFailureIsReported(t *testing.T) {
	f := newTodoFixture()
	f.repo.saveErr = errors.New("disk full")

	_, err := f.svc.Add(context.Background(), "a", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cache")
	assert.Empty(t, f.fc.Calls)
}
