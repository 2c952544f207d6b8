package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
)

// SQLiteRepository stores the task list in the tasks table and the last sync
// time in metadata. Times are kept as unix milliseconds in UTC.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository over db. The schema from
// internal/client/migrations must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Save rewrites the tasks table in display order and records LastSync.
// A nil LastSync removes the stored value.
func (r *SQLiteRepository) Save(ctx context.Context, s models.Snapshot) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}

		query := `INSERT INTO tasks (local_id, position, id, text, completed, due_date, priority, created_at, updated_at, pending)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		for i, t := range s.Tasks {
			var due sql.NullInt64
			if t.DueDate != nil {
				due = sql.NullInt64{Int64: toMillis(*t.DueDate), Valid: true}
			}
			_, err := tx.ExecContext(ctx, query,
				t.LocalID, i, t.ID, t.Text, t.Completed, due, string(t.Priority),
				toMillis(t.CreatedAt), toMillis(t.UpdatedAt), t.Pending)
			if err != nil {
				return fmt.Errorf("failed to insert task %s: %w", t.LocalID, err)
			}
		}

		return metadata.NewStore(tx).SetLastSync(ctx, s.LastSync)
	})
}

// Load reads the snapshot back in display order.
func (r *SQLiteRepository) Load(ctx context.Context) (models.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT local_id, id, text, completed, due_date, priority, created_at, updated_at, pending
		FROM tasks ORDER BY position`)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	s := models.Snapshot{Tasks: []models.Task{}}
	for rows.Next() {
		var (
			t                  models.Task
			due                sql.NullInt64
			priority           string
			createdAt, updated int64
		)
		if err := rows.Scan(&t.LocalID, &t.ID, &t.Text, &t.Completed, &due, &priority, &createdAt, &updated, &t.Pending); err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to scan task: %w", err)
		}
		if due.Valid {
			d := fromMillis(due.Int64)
			t.DueDate = &d
		}
		t.Priority = common.Priority(priority)
		t.CreatedAt = fromMillis(createdAt)
		t.UpdatedAt = fromMillis(updated)
		s.Tasks = append(s.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	if s.LastSync, err = metadata.NewStore(r.db).LastSync(ctx); err != nil {
		return models.Snapshot{}, err
	}
	return s, nil
}
