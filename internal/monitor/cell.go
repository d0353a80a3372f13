package monitor

import "sync"

// Cell holds the latest value published by a single background writer.
// Readers never block on the writer's I/O, only on the short critical
// section guarding the value itself.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
}

// NewCell returns a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Store replaces the value and bumps the version.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.value = v
	c.version++
	c.mu.Unlock()
}

// Update applies fn to the value under the write lock.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	c.value = fn(c.value)
	c.version++
	c.mu.Unlock()
}

// Version counts the stores so far. Readers compare versions to detect change.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Signal is a coalescing wakeup: any number of Raise calls between two
// receives collapse into one pending request.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns an un-raised signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Raise marks the signal pending. It never blocks.
func (s *Signal) Raise() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Take consumes a pending request, reporting whether one was present.
func (s *Signal) Take() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// C exposes the channel for select loops.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}
