// Package store is the local record store: an ordered in-memory copy of each
// collection kept authoritative for reads, written through to SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

var (
	// ErrPersist wraps a failed write-through. The in-memory state already
	// reflects the write when it is returned.
	ErrPersist  = errors.New("local persistence failed")
	ErrNotFound = errors.New("record not found")
)

// Repository is the durable side of a Collection.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
	SetSynced(ctx context.Context, id string, synced bool) error
	ReplaceAll(ctx context.Context, recs []T) error
}

// Pending is an unsynced record together with the revision it had when it
// was read.
type Pending[T any] struct {
	Record T
	Rev    uint64
}

// Collection is an ordered, newest-first list of records.
type Collection[T models.Syncable[T]] struct {
	name   string
	repo   Repository[T]
	logger logging.Logger

	mu    sync.RWMutex
	items []T
	revs  map[string]uint64
	seq   uint64
}

func NewCollection[T models.Syncable[T]](name string, repo Repository[T], logger logging.Logger) *Collection[T] {
	return &Collection[T]{
		name:   name,
		repo:   repo,
		logger: logger.With("collection", name),
		revs:   make(map[string]uint64),
	}
}

// Load replaces the in-memory copy with what the repository holds.
func (c *Collection[T]) Load(ctx context.Context) error {
	recs, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = recs
	c.revs = make(map[string]uint64, len(recs))
	for _, r := range recs {
		c.bump(r.Key())
	}
	return nil
}

func (c *Collection[T]) bump(id string) uint64 {
	c.seq++
	c.revs[id] = c.seq
	return c.seq
}

func (c *Collection[T]) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].Key() == id {
			return i
		}
	}
	return -1
}

// All returns a copy of the records in display order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Unsynced returns the records waiting to be pushed, in display order.
func (c *Collection[T]) Unsynced() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, r := range c.items {
		if !r.Synced() {
			out = append(out, r)
		}
	}
	return out
}

// PendingCount is the number of unsynced records right now.
func (c *Collection[T]) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, r := range c.items {
		if !r.Synced() {
			n++
		}
	}
	return n
}

// Snapshot returns the unsynced records with their current revisions.
func (c *Collection[T]) Snapshot() []Pending[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Pending[T]
	for _, r := range c.items {
		if !r.Synced() {
			out = append(out, Pending[T]{Record: r, Rev: c.revs[r.Key()]})
		}
	}
	return out
}

// Upsert replaces the record with the same id in place, or prepends rec.
func (c *Collection[T]) Upsert(ctx context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.Key()
	i := c.indexOf(id)
	var err error
	if i >= 0 {
		c.items[i] = rec
		err = c.repo.Update(ctx, rec)
	} else {
		c.items = append([]T{rec}, c.items...)
		err = c.repo.Insert(ctx, rec)
	}
	c.bump(id)

	return c.persisted(ctx, "upsert", id, err)
}

// Remove deletes the record with the given id.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	delete(c.revs, id)

	return c.persisted(ctx, "remove", id, c.repo.Delete(ctx, id))
}

// MarkSynced flags the record as synced if it is still at revision rev. It
// reports whether the flag was changed. A record edited since rev stays
// pending.
func (c *Collection[T]) MarkSynced(ctx context.Context, id string, rev uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 || c.revs[id] != rev {
		return false, nil
	}
	c.items[i] = c.items[i].WithSynced(true)

	return true, c.persisted(ctx, "mark synced", id, c.repo.SetSynced(ctx, id, true))
}

// ReplaceAll swaps the whole collection for recs.
func (c *Collection[T]) ReplaceAll(ctx context.Context, recs []T) error {
	return c.Apply(ctx, func([]T) []T { return recs })
}

// Apply computes the next contents of the collection from the current one
// and stores it, atomically with respect to other writers.
func (c *Collection[T]) Apply(ctx context.Context, fn func(current []T) []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]T(nil), fn(append([]T(nil), c.items...))...)
	c.items = next
	c.revs = make(map[string]uint64, len(next))
	for _, r := range next {
		c.bump(r.Key())
	}

	return c.persisted(ctx, "replace", "*", c.repo.ReplaceAll(ctx, next))
}

func (c *Collection[T]) persisted(ctx context.Context, op, id string, err error) error {
	if err == nil {
		return nil
	}
	c.logger.Warn(ctx, "write-through failed", "op", op, "id", id, "error", err)
	return fmt.Errorf("%s %s %s: %w: %w", op, c.name, id, ErrPersist, err)
}
