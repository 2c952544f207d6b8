package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/cache"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"golang.org/x/sync/singleflight"
)

// TaskService implements the owner-scoped task CRUD operations. The list is
// served cache-aside; every write invalidates the owner's cached list.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Guard
	events      events.Publisher
	logger      logging.Logger
	now         Clock
	fills       singleflight.Group
}

// NewTaskService guards c unless it already is a *cache.Guard. Pass the
// Guard shared with the sync service when both write the same owners.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, c cache.TaskListCache, p events.Publisher, l logging.Logger) *TaskService {
	g, ok := c.(*cache.Guard)
	if !ok {
		g = cache.NewGuard(c)
	}
	return &TaskService{
		db:          db,
		repomanager: m,
		cache:       g,
		events:      p,
		logger:      l.With("module", "task_service"),
		now:         time.Now,
	}
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	cached, ok, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "list cache read failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	// The fill is shared by every waiter, so it must not end with the
	// caller that happened to start it.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.fills.Do(ownerID, func() (any, error) {
		gen := s.cache.Generation(ownerID)
		list, err := s.repomanager.Tasks(s.db).ListByOwner(fillCtx, ownerID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Fill(fillCtx, ownerID, gen, list); err != nil {
			s.logger.Warn(fillCtx, "list cache write failed", "error", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "list", err)
	}
	return v.([]models.Task), nil
}

// Create stores a new task owned by ownerID. Empty priority means medium.
func (s *TaskService) Create(ctx context.Context, ownerID string, f models.TaskFields) (*models.Task, error) {
	f, err := normalizeFields(f)
	if err != nil {
		return nil, err
	}
	f.Completed = false

	now := s.now().UTC()
	task := &models.Task{
		OwnerID:   ownerID,
		Text:      f.Text,
		DueDate:   f.DueDate,
		Priority:  f.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, storeError(ctx, s.logger, "create", err)
	}

	s.afterWrite(ctx, events.Event{Type: events.TaskCreated, OwnerID: ownerID, TaskID: created.ID, At: now})
	return created, nil
}

// Get returns common.ErrorNotFound for absent and foreign tasks alike.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "get", err)
	}
	return t, nil
}

// Update applies patch to the allow-listed fields of (id, ownerID).
func (s *TaskService) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	current, err := repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "update", err)
	}

	f, err := normalizeFields(patch.Apply(current.Fields()))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated, err := repo.Update(ctx, id, ownerID, f, now)
	if err != nil {
		return nil, storeError(ctx, s.logger, "update", err)
	}

	s.afterWrite(ctx, events.Event{Type: events.TaskUpdated, OwnerID: ownerID, TaskID: id, At: now})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repomanager.Tasks(s.db).Delete(ctx, id, ownerID); err != nil {
		return storeError(ctx, s.logger, "delete", err)
	}
	s.afterWrite(ctx, events.Event{Type: events.TaskDeleted, OwnerID: ownerID, TaskID: id, At: s.now().UTC()})
	return nil
}

// ClearCompleted deletes the owner's completed tasks and returns the count.
func (s *TaskService) ClearCompleted(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.repomanager.Tasks(s.db).DeleteCompleted(ctx, ownerID)
	if err != nil {
		return 0, storeError(ctx, s.logger, "clear_completed", err)
	}
	s.afterWrite(ctx, events.Event{
		Type: events.TasksCleared, OwnerID: ownerID, Attrs: map[string]any{"deleted": n}, At: s.now().UTC(),
	})
	return n, nil
}

func (s *TaskService) afterWrite(ctx context.Context, e events.Event) {
	if err := s.cache.Invalidate(ctx, e.OwnerID); err != nil {
		s.logger.Warn(ctx, "list cache invalidation failed", "error", err)
	}
	publish(ctx, s.events, s.logger, e)
}
