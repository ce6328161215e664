/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names the kind of mutation reported to observers.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionCompleted Action = "completed"
	ActionReopened  Action = "reopened"
	ActionDeleted   Action = "deleted"
)

// Change is delivered to observers after every successful mutation.
type Change struct {
	Action Action
	Task   Task
}

// Observer is notified of task changes. Notify must not block.
type Observer interface {
	TaskChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) TaskChanged(c Change) { f(c) }

// Service implements the task CRUD contract on top of a Store.
// Every mutating call validates its input before touching the store.
type Service struct {
	store     Store
	observers []Observer
	now       func() time.Time
	newID     func() string
}

// NewService creates a Service. Observers may be empty.
func NewService(store Store, observers ...Observer) *Service {
	return &Service{
		store:     store,
		observers: observers,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Observe registers an additional observer.
func (s *Service) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// List returns the tasks matching status, in store order.
func (s *Service) List(status Status) ([]Task, error) {
	tasks, err := s.store.List(status.Matches)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one task or ErrNotFound.
func (s *Service) Get(id string) (Task, error) {
	return s.store.Get(id)
}

// Create adds a new open task.
func (s *Service) Create(in CreateInput) (Task, error) {
	if err := in.Validate(); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	if err := s.store.Insert(t); err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}

	s.notify(ActionCreated, t)
	return t, nil
}

// Update merges the patch into the task with the given id.
// A false→true completion sets CompletedAt, true→false clears it.
// An empty patch returns the task unchanged and notifies no one.
func (s *Service) Update(id string, p Patch) (Task, error) {
	if err := p.Validate(); err != nil {
		return Task{}, err
	}

	current, err := s.store.Get(id)
	if err != nil {
		return Task{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	updated := current
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}

	action := ActionUpdated
	if p.Completed != nil {
		switch {
		case *p.Completed && !current.Completed:
			at := s.now()
			updated.CompletedAt = &at
			action = ActionCompleted
		case !*p.Completed && current.Completed:
			updated.CompletedAt = nil
			action = ActionReopened
		}
		updated.Completed = *p.Completed
	}

	if err := s.store.Replace(updated); err != nil {
		return Task{}, fmt.Errorf("replace task %s: %w", id, err)
	}

	s.notify(action, updated)
	return updated, nil
}

// Complete marks a task as done.
func (s *Service) Complete(id string) (Task, error) {
	return s.Update(id, Patch{Completed: Bool(true)})
}

// Reopen marks a task as not done.
func (s *Service) Reopen(id string) (Task, error) {
	return s.Update(id, Patch{Completed: Bool(false)})
}

// Delete removes a task and returns it.
func (s *Service) Delete(id string) (Task, error) {
	t, err := s.store.Delete(id)
	if err != nil {
		return Task{}, err
	}
	s.notify(ActionDeleted, t)
	return t, nil
}

// Seed inserts tasks without notifying observers. Empty ids get a fresh UUID
// and zero CreatedAt values are set to now.
func (s *Service) Seed(tasks []Task) error {
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = s.newID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		if t.Completed && t.CompletedAt == nil {
			at := t.CreatedAt
			t.CompletedAt = &at
		}
		if !t.Completed {
			t.CompletedAt = nil
		}
		if err := s.store.Insert(t); err != nil {
			return fmt.Errorf("seed task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Service) notify(action Action, t Task) {
	c := Change{Action: action, Task: clone(t)}
	for _, o := range s.observers {
		o.TaskChanged(c)
	}
}
