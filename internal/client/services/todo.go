package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/cache"
	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// TodoService applies user actions to the cache first and then to the
// server.
//
// When the server cannot be reached the change stays in the cache marked
// pending and the next reconcile carries it. When the server rejects the
// change (not found, invalid, unauthorized) the cache is rolled back. In
// both cases the error is returned. Deletions are the exception: a delete
// that cannot reach the server is rolled back too, since reconcile has no
// way to carry it.
//
// The cache is saved after every change.
type TodoService struct {
	client client.Client
	cache  *cache.Cache
	repo   snapshot.Repository
}

func NewTodoService(c client.Client, ch *cache.Cache, repo snapshot.Repository) *TodoService {
	return &TodoService{client: c, cache: ch, repo: repo}
}

// Load restores the cache from the repository.
func (s *TodoService) Load(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrLocalDataNotAvailable, err)
	}
	s.cache.Restore(snap)
	return nil
}

func (s *TodoService) save(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.cache.Snapshot()); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	return nil
}

// settle saves the cache and joins a save failure with the server error.
func (s *TodoService) settle(ctx context.Context, err error) error {
	return errors.Join(err, s.save(ctx))
}

// Add creates a task locally and on the server.
func (s *TodoService) Add(ctx context.Context, text string, due *time.Time, p common.Priority) (models.Task, error) {
	t, err := s.cache.AddCreating(text, due, p)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.save(ctx); err != nil {
		s.cache.Release(t.LocalID)
		return t, err
	}

	stored, err := s.client.CreateTodo(ctx, t)
	switch {
	case err == nil:
		s.cache.Confirm(t.LocalID, stored)
		t, _ = s.cache.Get(t.LocalID)
	case client.IsRejection(err):
		s.cache.Remove(t.LocalID)
	default:
		s.cache.Release(t.LocalID)
	}
	return t, s.settle(ctx, err)
}

// Toggle flips the completion state of a task.
func (s *TodoService) Toggle(ctx context.Context, localID string) (models.Task, error) {
	before, after, err := s.cache.Toggle(localID)
	if err != nil {
		return models.Task{}, err
	}
	return s.push(ctx, before, after, models.TaskEdit{Completed: &after.Completed})
}

// Edit changes text, priority or due date of a task.
func (s *TodoService) Edit(ctx context.Context, localID string, e models.TaskEdit) (models.Task, error) {
	before, after, err := s.cache.Edit(localID, e)
	if err != nil {
		return models.Task{}, err
	}
	return s.push(ctx, before, after, e)
}

// push sends an edit already applied to the cache. Tasks the server has not
// acknowledged yet are left for reconcile to insert.
func (s *TodoService) push(ctx context.Context, before, after models.Task, e models.TaskEdit) (models.Task, error) {
	if err := s.save(ctx); err != nil {
		return after, err
	}
	if after.ID == "" {
		return after, nil
	}

	stored, err := s.client.UpdateTodo(ctx, after.ID, e)
	switch {
	case err == nil:
		s.cache.Confirm(after.LocalID, stored)
		after, _ = s.cache.Get(after.LocalID)
	case client.IsRejection(err):
		s.cache.Revert(before)
		after = before
	}
	return after, s.settle(ctx, err)
}

// Delete removes a task. A task the server no longer has counts as deleted.
func (s *TodoService) Delete(ctx context.Context, localID string) error {
	removed, err := s.cache.Delete(localID)
	if err != nil {
		return err
	}
	if removed.Task.ID == "" {
		return s.save(ctx)
	}

	err = s.client.DeleteTodo(ctx, removed.Task.ID)
	if errors.Is(err, client.ErrNotFound) {
		err = nil
	}
	if err != nil {
		s.cache.RestoreAt(removed)
	}
	return s.settle(ctx, err)
}

// ClearCompleted removes all completed tasks and returns how many were
// removed locally.
func (s *TodoService) ClearCompleted(ctx context.Context) (int, error) {
	removed := s.cache.ClearCompleted()
	if len(removed) == 0 {
		return 0, nil
	}

	synced := false
	for _, r := range removed {
		if r.Task.ID != "" {
			synced = true
			break
		}
	}
	if !synced {
		return len(removed), s.save(ctx)
	}

	if _, err := s.client.ClearCompleted(ctx); err != nil {
		s.cache.RestoreAt(removed...)
		return 0, s.settle(ctx, err)
	}
	return len(removed), s.save(ctx)
}

// Reorder moves a task within the local list.
func (s *TodoService) Reorder(ctx context.Context, from, to int) error {
	if err := s.cache.Reorder(from, to); err != nil {
		return err
	}
	return s.save(ctx)
}

// Reset empties the cache and its stored copy, as when another account
// logs in.
func (s *TodoService) Reset(ctx context.Context) error {
	s.cache.Reset()
	return s.save(ctx)
}
