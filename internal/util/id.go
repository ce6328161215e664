// Package util provides shared utility functions.
package util

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/taskmate/internal/task"
)

const (
	// DefaultShortIDLength is the default number of characters for short IDs.
	DefaultShortIDLength = 8
	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// ErrAmbiguousID is returned when a prefix matches more than one task.
var ErrAmbiguousID = errors.New("ambiguous ID prefix")

// ShortID returns the first n characters of id.
// If n is 0 or negative, DefaultShortIDLength (8) is used.
//
//	ShortID("3f2b9c1e-7a44-4d1e-9c0b-2a6f1d8e5b73", 0) → "3f2b9c1e"
//	ShortID("2", 0) → "2"
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// TaskLister lists tasks. taskclient.Client and tools.Local implement it.
type TaskLister interface {
	ListTasks(ctx context.Context, status task.Status) ([]task.Task, error)
}

// ResolveTaskID resolves a task ID or prefix to a full task ID.
//
// Resolution rules:
//  1. An exact ID match wins, so "1" never resolves to "12".
//  2. If idOrPrefix prefixes exactly one task ID, return that ID.
//  3. If several match, return ErrAmbiguousID with candidates.
//  4. If none match, return task.ErrNotFound.
func ResolveTaskID(ctx context.Context, lister TaskLister, idOrPrefix string) (string, error) {
	prefix := strings.TrimSpace(idOrPrefix)
	if prefix == "" {
		return "", &task.ValidationError{Field: "id", Message: "id is required"}
	}

	tasks, err := lister.ListTasks(ctx, task.StatusAll)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}

	var candidates []string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			candidates = append(candidates, t.ID)
		}
	}
	return resolveFromCandidates(prefix, candidates)
}

func resolveFromCandidates(prefix string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("task with prefix %q: %w", prefix, task.ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d tasks: %v",
			ErrAmbiguousID, prefix, len(candidates), shown)
	}
}
