// Package lockregistry hands out exclusive locks keyed by account id.
//
// Registry creates a lock on first use and reclaims it in the background once nobody
// references it. Striped is a fixed set of locks shared by all ids. Both report an
// acquisition order so that callers taking two locks always take them in the same order.
package lockregistry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Lock is an exclusive lock handed out by Registry.
//
// Every Registry.Get takes a reference on the lock. The reference is dropped by Unlock, or by
// Release when the lock is never acquired, so a handle is meant to be used once.
type Lock struct {
	mu sync.Mutex

	// guard protects dead and every change of refs.
	guard sync.Mutex
	refs  atomic.Int64
	dead  bool
}

// Lock blocks until the lock is acquired.
func (l *Lock) Lock() {
	l.mu.Lock()
}

// Unlock releases the lock and drops the reference taken by Registry.Get.
func (l *Lock) Unlock() {
	l.mu.Unlock()
	l.Release()
}

// Release drops the reference taken by Registry.Get without touching the lock itself.
func (l *Lock) Release() {
	l.guard.Lock()
	l.refs.Add(-1)
	l.guard.Unlock()
}

// Registry maps account ids to locks.
//
// While at least one caller references the lock of an id, every Get for that id returns the
// same instance. Unreferenced locks are removed by Sweep.
type Registry struct {
	entries sync.Map // int64 -> *Lock
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Get returns the lock of id, creating it if needed. It never fails.
func (r *Registry) Get(id int64) *Lock {
	for {
		v, ok := r.entries.Load(id)
		if !ok {
			v, _ = r.entries.LoadOrStore(id, &Lock{})
		}

		l := v.(*Lock)

		l.guard.Lock()
		if l.dead {
			// Swept between Load and guard.Lock, the map no longer holds it.
			l.guard.Unlock()
			continue
		}
		l.refs.Add(1)
		l.guard.Unlock()

		return l
	}
}

// Mutex returns the lock of id and its position in the acquisition order, which is id itself.
func (r *Registry) Mutex(id int64) (sync.Locker, int64) {
	return r.Get(id), id
}

// Sweep removes every lock nobody references and returns how many were removed.
func (r *Registry) Sweep() int {
	removed := 0

	r.entries.Range(func(key, v any) bool {
		l := v.(*Lock)

		if l.refs.Load() != 0 {
			return true
		}

		l.guard.Lock()
		if l.refs.Load() == 0 && !l.dead {
			l.dead = true
			r.entries.CompareAndDelete(key, l)
			removed++
		}
		l.guard.Unlock()

		return true
	})

	return removed
}

// Len returns the number of locks currently held in the registry.
func (r *Registry) Len() int {
	n := 0

	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// Run sweeps the registry every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	l := zerolog.Ctx(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Debug().Msg("lock registry sweeper stopped")
			return
		case <-ticker.C:
			removed := r.Sweep()
			l.Debug().Int("removed", removed).Int("remaining", r.Len()).Msg("lock registry swept")
		}
	}
}
