/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com

Package task holds the task model, the Store abstraction and the Service
that implements the task CRUD contract.
*/
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Task is a single to-do item.
// CompletedAt is set only while Completed is true.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Status filters List results by completion state.
type Status string

const (
	StatusAll       Status = ""
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

// ParseStatus accepts "", "open" or "completed".
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusAll:
		return StatusAll, nil
	case StatusOpen:
		return StatusOpen, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("Invalid status %q (use open or completed)", s)}
	}
}

// Matches reports whether t passes the status filter.
func (s Status) Matches(t Task) bool {
	switch s {
	case StatusOpen:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// CreateInput is the payload for Service.Create.
type CreateInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Patch carries the optional fields of an update. Nil means "leave as is".
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

var validate = validator.New()

// Validate normalizes the input and checks required fields.
func (in *CreateInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// Validate rejects patches that would blank the title.
func (p *Patch) Validate() error {
	if p.Title == nil {
		return nil
	}
	title := strings.TrimSpace(*p.Title)
	if err := validate.Var(title, "required"); err != nil {
		return &ValidationError{Field: "title", Message: "Title cannot be empty"}
	}
	p.Title = &title
	return nil
}

// Bool and String are small helpers for building patches.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }
