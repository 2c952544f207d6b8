package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var cols = []string{"id", "user_id", "text", "completed", "due_date", "priority", "created_at", "updated_at"}

func TestListByOwner_ScansAndOrders(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	q := `(?s)^SELECT\s+id,\s*user_id,.*FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id$`
	rows := sqlmock.NewRows(cols).
		AddRow("t2", "u1", "Pay rent", false, due, "high", t2, t2).
		AddRow("t1", "u1", "Buy milk", true, nil, "medium", t1, t1)
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)

	want := []models.Task{
		{ID: "t2", OwnerID: "u1", Text: "Pay rent", DueDate: &due, Priority: common.PriorityHigh, CreatedAt: t2, UpdatedAt: t2},
		{ID: "t1", OwnerID: "u1", Text: "Buy milk", Completed: true, Priority: common.PriorityMedium, CreatedAt: t1, UpdatedAt: t1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListByOwner mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+tasks`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByOwner_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+tasks`).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.ListByOwner(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`failed to select tasks: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestGetByID_ScopedByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	now := time.Now().UTC()
	mock.ExpectQuery(q).WithArgs("t1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t1", "u1", "x", false, nil, "low", now, now))
	mock.ExpectQuery(q).WithArgs("t1", "u2").WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, common.PriorityLow, got.Priority)
	assert.Nil(t, got.DueDate)

	_, err = repo.GetByID(context.Background(), "t1", "u2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_ReturnsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	q := `(?s)^INSERT\s+INTO\s+tasks\s*\(user_id,\s*text,\s*completed,\s*due_date,\s*priority,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs("u1", "Buy milk", false, sql.NullTime{}, "medium", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("new-id"))

	got, err := repo.Create(context.Background(), &models.Task{
		OwnerID: "u1", Text: "Buy milk", Priority: common.PriorityMedium, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", got.ID)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+tasks`).WillReturnError(errors.New("disk full"))

	_, err := repo.Create(context.Background(), &models.Task{OwnerID: "u1", Text: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*disk full`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestUpdate_WritesAllowListedFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	stamp := created.Add(time.Hour)
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	q := `(?s)^UPDATE\s+tasks\s+SET\s+text\s*=\s*\$3,\s*completed\s*=\s*\$4,\s*due_date\s*=\s*\$5,\s*priority\s*=\s*\$6,\s*updated_at\s*=\s*\$7\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+id,.*updated_at$`
	mock.ExpectQuery(q).
		WithArgs("t1", "u1", "Buy oat milk", true, sql.NullTime{Time: due, Valid: true}, "high", stamp).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t1", "u1", "Buy oat milk", true, due, "high", created, stamp))

	got, err := repo.Update(context.Background(), "t1", "u1",
		models.TaskFields{Text: "Buy oat milk", Completed: true, DueDate: &due, Priority: common.PriorityHigh}, stamp)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, stamp, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+tasks`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "ghost", "u1", models.TaskFields{Text: "x"}, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	t.Run("deleted", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("t1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), "t1", "u1"))
	})

	t.Run("foreign or missing", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("t1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), "t1", "u2"), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("t1", "u1").WillReturnError(errors.New("boom"))
		err := repo.Delete(context.Background(), "t1", "u1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestDeleteCompleted_ReturnsCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+completed\s*=\s*TRUE$`
	mock.ExpectExec(q).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteCompleted(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
