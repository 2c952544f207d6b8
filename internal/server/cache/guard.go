package cache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Guard wraps a TaskListCache with a per-owner generation so that a list
// read before a write cannot be left in the cache after that write's
// Invalidate. Every service writing an owner's tasks must share one Guard.
type Guard struct {
	TaskListCache

	mu  sync.Mutex
	gen map[string]uint64
}

func NewGuard(c TaskListCache) *Guard {
	return &Guard{TaskListCache: c, gen: map[string]uint64{}}
}

// Generation is read before loading the list that is later passed to Fill.
func (g *Guard) Generation(ownerID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[ownerID]
}

func (g *Guard) bump(ownerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[ownerID]++
}

func (g *Guard) Invalidate(ctx context.Context, ownerID string) error {
	g.bump(ownerID)
	return g.TaskListCache.Invalidate(ctx, ownerID)
}

// Fill stores tasks loaded at generation gen. Nothing is stored when an
// Invalidate ran since; one that lands during the Set drops the entry.
func (g *Guard) Fill(ctx context.Context, ownerID string, gen uint64, tasks []models.Task) error {
	if g.Generation(ownerID) != gen {
		return nil
	}
	if err := g.TaskListCache.Set(ctx, ownerID, tasks); err != nil {
		return err
	}
	if g.Generation(ownerID) != gen {
		return g.TaskListCache.Invalidate(ctx, ownerID)
	}
	return nil
}
