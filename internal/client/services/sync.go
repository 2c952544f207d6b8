package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/cache"
	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/snapshot"
)

var ErrSyncInProgress = errors.New("sync already in progress")

// Syncer reconciles the cache with the server. At most one reconcile per
// Syncer runs at a time.
type Syncer struct {
	client client.Client
	cache  *cache.Cache
	repo   snapshot.Repository
	now    func() time.Time

	inFlight atomic.Bool
}

func NewSyncer(c client.Client, ch *cache.Cache, repo snapshot.Repository) *Syncer {
	return &Syncer{client: c, cache: ch, repo: repo, now: time.Now}
}

// Sync sends the cache to the server and installs the returned list. The
// time the response arrived becomes the new last sync time. It returns the
// number of tasks in the cache afterwards, or ErrSyncInProgress when another
// reconcile is running.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	lastSync := s.cache.LastSync()
	tasks, rev := s.cache.Outgoing()
	server, err := s.client.Sync(ctx, lastSync, outgoing(tasks, lastSync))
	if err != nil {
		return 0, fmt.Errorf("sync error: %w", err)
	}

	s.cache.Replace(server, rev, s.now())
	if err := s.repo.Save(ctx, s.cache.Snapshot()); err != nil {
		return 0, fmt.Errorf("failed to save cache: %w", err)
	}
	return len(s.cache.Tasks()), nil
}

// outgoing restamps tasks relative to lastSync, which travels in whole
// milliseconds. The server treats a task as changed when its updatedAt is
// after lastSync, so confirmed tasks are sent as of lastSync and pending
// ones at least a millisecond after it. Server stamps and clock skew between
// devices then never decide what gets written.
func outgoing(tasks []models.Task, lastSync *time.Time) []models.Task {
	if lastSync == nil {
		return tasks
	}
	cut := lastSync.Truncate(time.Millisecond)
	for i := range tasks {
		switch {
		case !tasks[i].Pending:
			tasks[i].UpdatedAt = cut
		case !tasks[i].UpdatedAt.After(cut):
			tasks[i].UpdatedAt = cut.Add(time.Millisecond)
		}
	}
	return tasks
}

// Run reconciles every interval while active reports a session, until ctx
// is done. Failures go to onErr; skipped overlapping runs are not reported.
func (s *Syncer) Run(ctx context.Context, interval time.Duration, active func() bool, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !active() {
				continue
			}
			if _, err := s.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) && onErr != nil {
				onErr(err)
			}
		}
	}
}
