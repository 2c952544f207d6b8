package wire

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTasks_EmptyIsNotNil(t *testing.T) {
	got := Tasks(nil)
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestTask_DropsOwner(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := models.Task{ID: "1", OwnerID: "u1", Text: "a", Priority: common.PriorityHigh, CreatedAt: now, UpdatedAt: now}
	want := rpc.Task{ID: "1", Text: "a", Priority: "high", CreatedAt: now, UpdatedAt: now}
	if diff := cmp.Diff(want, Task(&in)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPatch(t *testing.T) {
	p, err := Patch(&rpc.UpdateTodoRequest{DueDate: ptr("")})
	require.NoError(t, err)
	assert.True(t, p.ClearDueDate)
	assert.Nil(t, p.DueDate)

	p, err = Patch(&rpc.UpdateTodoRequest{DueDate: ptr("2024-05-06"), Priority: ptr("low"), Completed: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), *p.DueDate)
	assert.Equal(t, common.PriorityLow, *p.Priority)
	assert.True(t, *p.Completed)
	assert.False(t, p.ClearDueDate)

	_, err = Patch(&rpc.UpdateTodoRequest{DueDate: ptr("nope")})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestClientTasks(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := ClientTasks([]rpc.SyncTask{
		{ID: "a", Text: "x", Completed: true, Priority: "high", UpdatedAt: at},
		{Text: "y", DueDate: ptr("2024-02-01"), UpdatedAt: at},
		{Text: "z", DueDate: ptr("bad")},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Empty(t, got[0].DueDate)
	assert.Equal(t, "", got[1].ID)
	assert.Equal(t, "2024-02-01", got[1].DueDate)

	f, err := got[1].Fields()
	require.NoError(t, err)
	require.NotNil(t, f.DueDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *f.DueDate)

	// kept as sent; only the reconcile decides whether it matters
	assert.Equal(t, "bad", got[2].DueDate)
	_, err = got[2].Fields()
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLastSync(t *testing.T) {
	assert.Nil(t, LastSync(nil))
	assert.Nil(t, LastSync(ptr(int64(0))))

	got := LastSync(ptr(int64(1700000000123)))
	require.NotNil(t, got)
	assert.Equal(t, int64(1700000000123), got.UnixMilli())
	assert.Equal(t, time.UTC, got.Location())
}
