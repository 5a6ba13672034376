package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry is a mounted view and when it was last touched
type entry struct {
	view      *View
	touchedAt time.Time
}

// Registry keeps mounted views in memory with idle expiration. Views are
// never shared between mounts and nothing survives a restart.
type Registry struct {
	mu      sync.RWMutex
	views   map[string]*entry
	ttl     time.Duration
	fetcher Fetcher
	now     func() time.Time

	cleanupT *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRegistry creates a registry and starts its janitor. Caller must call Stop.
func NewRegistry(fetcher Fetcher, ttl time.Duration) *Registry {
	if ttl == 0 {
		ttl = 30 * time.Minute // Default 30 minutes
	}

	r := &Registry{
		views:   make(map[string]*entry),
		ttl:     ttl,
		fetcher: fetcher,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	r.cleanupT = time.NewTicker(ttl)
	r.wg.Add(1)
	go r.cleanup()

	return r
}

// cleanup periodically evicts idle views
func (r *Registry) cleanup() {
	defer r.wg.Done()
	for {
		select {
		case <-r.cleanupT.C:
			if n := r.CleanExpired(); n > 0 {
				slog.Debug("Evicted idle widget views", "count", n)
			}
		case <-r.stopCh:
			r.cleanupT.Stop()
			return
		}
	}
}

// Stop stops the janitor and closes every mounted view. Safe to call multiple times.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()

		r.mu.Lock()
		views := make([]*View, 0, len(r.views))
		for id, e := range r.views {
			views = append(views, e.view)
			delete(r.views, id)
		}
		r.mu.Unlock()

		for _, v := range views {
			v.Close()
		}
	})
}

// Mount creates a view for username and starts loading it in the
// background. The load is not bound to ctx's cancellation: it runs until
// the transport gives up, and a closed view ignores the result.
func (r *Registry) Mount(ctx context.Context, username string) (string, *View) {
	view := NewView(r.fetcher, username, r.now())
	id := uuid.NewString()

	r.mu.Lock()
	r.views[id] = &entry{view: view, touchedAt: r.now()}
	r.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	go func() {
		if err := view.Load(loadCtx); err != nil {
			slog.Debug("Widget view load failed", "id", id, "error", err)
		}
	}()

	slog.Info("Widget view mounted", "id", id, "username", username, "years", view.Years())
	return id, view
}

// Get returns a mounted view and refreshes its idle deadline
func (r *Registry) Get(id string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.views[id]
	if !exists {
		return nil, false
	}

	if r.now().Sub(e.touchedAt) > r.ttl {
		return nil, false
	}

	e.touchedAt = r.now()
	return e.view, true
}

// Unmount closes and removes a view. Returns false if the id is unknown.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	e, exists := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if !exists {
		return false
	}
	e.view.Close()
	return true
}

// CleanExpired closes and removes idle views
func (r *Registry) CleanExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, e := range r.views {
		if now.Sub(e.touchedAt) > r.ttl {
			e.view.Close()
			delete(r.views, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of mounted views
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.views)
}
