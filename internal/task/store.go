/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package task

import (
	"slices"
	"sync"
)

// Store defines the persistence contract behind the Service.
// Implementations return copies; callers never share memory with the store.
type Store interface {
	// List returns tasks in insertion order. A nil filter returns all tasks.
	List(filter func(Task) bool) ([]Task, error)

	// Get returns the task with the given id or ErrNotFound.
	Get(id string) (Task, error)

	// Insert appends a task. It fails with ErrDuplicateID when the id exists.
	Insert(t Task) error

	// Replace overwrites the task with the same id, keeping its position.
	Replace(t Task) error

	// Delete removes and returns the task.
	Delete(id string) (Task, error)
}

// MemoryStore keeps tasks in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []Task
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(filter func(Task) bool) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter == nil || filter(t) {
			out = append(out, clone(t))
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return clone(s.tasks[i]), nil
}

func (s *MemoryStore) Insert(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(t.ID) >= 0 {
		return ErrDuplicateID
	}
	s.tasks = append(s.tasks, clone(t))
	return nil
}

func (s *MemoryStore) Replace(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		return ErrNotFound
	}
	s.tasks[i] = clone(t)
	return nil
}

func (s *MemoryStore) Delete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return removed, nil
}

// Len returns the number of stored tasks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// indexOf must be called with the lock held.
func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func clone(t Task) Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

var _ Store = (*MemoryStore)(nil)
