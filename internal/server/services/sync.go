package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/cache"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
)

// DefaultStalenessWindow is how old a client's last sync may be before its
// local edits are ignored and it simply receives the server list.
const DefaultStalenessWindow = 30 * time.Second

// SyncService reconciles a client's cached list with the store.
//
// There is no transaction across candidates and no lock across calls: two
// overlapping reconciles for one owner interleave per record and the later
// write wins.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.TaskListCache
	events      events.Publisher
	logger      logging.Logger
	window      time.Duration
	now         Clock
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, c cache.TaskListCache, p events.Publisher, l logging.Logger, window time.Duration) *SyncService {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &SyncService{
		db:          db,
		repomanager: m,
		cache:       c,
		events:      p,
		logger:      l.With("module", "sync_service"),
		window:      window,
		now:         time.Now,
	}
}

// Reconcile applies the client's recent edits and returns the owner's full
// list.
//
// A nil lastSync, or one at least window old, makes the call read-only.
// Otherwise every client task with UpdatedAt after lastSync is a candidate:
// tasks with an ID overwrite the allow-listed fields of (ID, ownerID), tasks
// without one are inserted. Candidates whose ID is unknown or foreign match
// nothing and are skipped. A store failure aborts with ErrorStoreFailure;
// writes already issued stay applied.
func (s *SyncService) Reconcile(ctx context.Context, ownerID string, lastSync *time.Time, clientTasks []models.ClientTask) ([]models.Task, error) {
	now := s.now().UTC()
	repo := s.repomanager.Tasks(s.db)

	if s.isStale(lastSync, now) {
		list, err := repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, s.failure(ctx, "list", err)
		}
		s.logger.Debug(ctx, "stale sync, returning server list", "owner", ownerID, "count", len(list))
		return list, nil
	}

	candidates, err := s.candidates(*lastSync, clientTasks)
	if err != nil {
		return nil, err
	}

	var updated, inserted, skipped int
	for _, c := range candidates {
		if c.id == "" {
			task := &models.Task{
				OwnerID:   ownerID,
				Text:      c.fields.Text,
				Completed: c.fields.Completed,
				DueDate:   c.fields.DueDate,
				Priority:  c.fields.Priority,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := repo.Create(ctx, task); err != nil {
				return nil, s.failure(ctx, "insert", err)
			}
			inserted++
			continue
		}

		_, err := repo.Update(ctx, c.id, ownerID, c.fields, now)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			skipped++
		case err != nil:
			return nil, s.failure(ctx, "update", err)
		default:
			updated++
		}
	}

	if updated+inserted > 0 {
		if err := s.cache.Invalidate(ctx, ownerID); err != nil {
			s.logger.Warn(ctx, "list cache invalidation failed", "error", err)
		}
		publish(ctx, s.events, s.logger, events.Event{
			Type:    events.TasksSynced,
			OwnerID: ownerID,
			Attrs:   map[string]any{"updated": updated, "inserted": inserted},
			At:      now,
		})
	}

	list, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.failure(ctx, "list", err)
	}

	s.logger.Info(ctx, "sync applied", "owner", ownerID,
		"candidates", len(candidates), "updated", updated, "inserted", inserted, "skipped", skipped)
	return list, nil
}

func (s *SyncService) isStale(lastSync *time.Time, now time.Time) bool {
	if lastSync == nil || lastSync.IsZero() {
		return true
	}
	return now.Sub(*lastSync) >= s.window
}

// candidate is a validated client task selected for writing.
type candidate struct {
	id     string
	fields models.TaskFields
}

// candidates selects and validates the client tasks edited after lastSync.
// Nothing is written when any candidate is invalid; the other tasks are
// not looked at.
func (s *SyncService) candidates(lastSync time.Time, clientTasks []models.ClientTask) ([]candidate, error) {
	out := make([]candidate, 0, len(clientTasks))
	for i, c := range clientTasks {
		if !c.UpdatedAt.After(lastSync) {
			continue
		}
		f, err := c.Fields()
		if err == nil {
			f, err = normalizeFields(f)
		}
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		out = append(out, candidate{id: c.ID, fields: f})
	}
	return out, nil
}

func (s *SyncService) failure(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "sync failed", "op", op, "error", err)
	return common.ErrorStoreFailure
}
