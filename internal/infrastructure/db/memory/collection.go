// Package memory is the default record store: process-local collections that
// are lost on restart.
package memory

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Collection is an insertion-ordered set of entities addressed by a string id.
// Every operation holds the collection lock, so the apply function given to
// Update observes and writes the entity without interleaving.
type Collection[T any] struct {
	mu     sync.RWMutex
	rows   []T
	idOf   func(*T) string
	setID  func(*T, string)
	nextID func() string
}

// NewCollection builds an empty collection. idOf and setID read and write the
// entity's id field; nextID is called with the lock held.
func NewCollection[T any](idOf func(*T) string, setID func(*T, string), nextID func() string) *Collection[T] {
	return &Collection[T]{idOf: idOf, setID: setID, nextID: nextID}
}

// SequentialIDs yields "1", "2", "3", ...
func SequentialIDs() func() string {
	var n int64
	return func() string {
		n++
		return strconv.FormatInt(n, 10)
	}
}

// RandomIDs yields random UUIDs.
func RandomIDs() func() string {
	return uuid.NewString
}

// Create assigns a fresh id to entity, appends it and returns the stored copy.
func (c *Collection[T]) Create(entity T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.insertLocked(entity)
}

// CreateUnless inserts entity unless an existing entity satisfies conflict.
// The check and the insert happen under one lock.
func (c *Collection[T]) CreateUnless(entity T, conflict func(*T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.rows {
		if conflict(&c.rows[i]) {
			var zero T
			return zero, false
		}
	}
	return c.insertLocked(entity), true
}

func (c *Collection[T]) insertLocked(entity T) T {
	c.setID(&entity, c.nextID())
	c.rows = append(c.rows, entity)
	return entity
}

// FindAll returns a snapshot of every entity in insertion order.
func (c *Collection[T]) FindAll() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.rows))
	copy(out, c.rows)
	return out
}

// FindByID returns the entity with the given id.
func (c *Collection[T]) FindByID(id string) (T, bool) {
	return c.Find(func(e *T) bool { return c.idOf(e) == id })
}

// Find returns the first entity matching pred.
func (c *Collection[T]) Find(pred func(*T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.rows {
		if pred(&c.rows[i]) {
			return c.rows[i], true
		}
	}
	var zero T
	return zero, false
}

// Update runs apply on a copy of the entity and stores the result. When apply
// returns an error the stored entity is left as it was. The bool reports
// whether the id exists.
func (c *Collection[T]) Update(id string, apply func(*T) error) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexLocked(id)
	if i < 0 {
		return zero, false, nil
	}

	next := c.rows[i]
	if err := apply(&next); err != nil {
		return zero, true, err
	}
	c.setID(&next, id)
	c.rows[i] = next
	return next, true, nil
}

// Delete removes the entity and keeps the order of the rest.
func (c *Collection[T]) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return true
}

// Len returns the number of stored entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

func (c *Collection[T]) indexLocked(id string) int {
	for i := range c.rows {
		if c.idOf(&c.rows[i]) == id {
			return i
		}
	}
	return -1
}
