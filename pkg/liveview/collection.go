package liveview

import (
	"sync"
)

type KeyFunc[T any] func(T) string

// Collection is the local copy of one watched collection. Rows keep the order
// given by the last Replace; merged unknown rows are appended.
type Collection[T any] struct {
	mu            sync.RWMutex
	key           KeyFunc[T]
	rows          []T
	index         map[string]int
	insertUnknown bool
	listeners     []func([]T)
	closed        bool
}

func NewCollection[T any](key KeyFunc[T]) *Collection[T] {
	return &Collection[T]{key: key, index: map[string]int{}}
}

// WithInsertUnknown makes Merge append rows whose key is not held yet.
func (c *Collection[T]) WithInsertUnknown() *Collection[T] {
	c.insertUnknown = true
	return c
}

// OnChange registers a listener called with a snapshot after every change.
func (c *Collection[T]) OnChange(fn func([]T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Collection[T]) Replace(rows []T) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	c.rows = append([]T{}, rows...)
	c.reindex()
	c.notifyLocked()
	return true
}

// Merge replaces the row having the same key. Unknown keys are ignored unless
// the collection inserts unknown rows.
func (c *Collection[T]) Merge(row T) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	key := c.key(row)
	if i, ok := c.index[key]; ok {
		c.rows[i] = row
	} else if c.insertUnknown {
		c.index[key] = len(c.rows)
		c.rows = append(c.rows, row)
	} else {
		c.mu.Unlock()
		return false
	}

	c.notifyLocked()
	return true
}

// Update mutates the row of key in place.
func (c *Collection[T]) Update(key string, mutate func(*T)) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	i, ok := c.index[key]
	if !ok {
		c.mu.Unlock()
		return false
	}

	mutate(&c.rows[i])
	c.notifyLocked()
	return true
}

func (c *Collection[T]) Remove(key string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	i, ok := c.index[key]
	if !ok {
		c.mu.Unlock()
		return false
	}

	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	c.reindex()
	c.notifyLocked()
	return true
}

func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	i, ok := c.index[key]
	if !ok {
		return zero, false
	}

	return c.rows[i], true
}

func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.rows...)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Close freezes the collection. Later changes are dropped and listeners are
// no longer called.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.listeners = nil
}

func (c *Collection[T]) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Collection[T]) reindex() {
	c.index = make(map[string]int, len(c.rows))
	for i, row := range c.rows {
		c.index[c.key(row)] = i
	}
}

// notifyLocked releases the lock before calling listeners.
func (c *Collection[T]) notifyLocked() {
	snapshot := append([]T{}, c.rows...)
	listeners := append([]func([]T){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
