package fetch

import "sync"

// store keeps the latest snapshot of one data source and the error of the
// latest attempt. A failed fetch keeps the previous snapshot.
type store[T any] struct {
	mu     sync.RWMutex
	data   T
	loaded bool
	err    error
}

func (s *store[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = v
	s.loaded = true
	s.err = nil
}

func (s *store[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot returns the latest data and whether any fetch has succeeded yet
func (s *store[T]) Snapshot() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.loaded
}

// Err returns the error of the latest fetch, nil when it succeeded
func (s *store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
