package tools

import (
	"context"
	"sync"
)

// Recorder collects the side effects of one agent turn.
type Recorder struct {
	mu       sync.Mutex
	mutated  bool
	mutating []string
}

type recorderKey struct{}

// WithRecorder attaches r to ctx so tools can report mutations.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFrom returns the Recorder on ctx, or nil.
func RecorderFrom(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

// Mutated reports whether any tool changed a task during the turn.
func (r *Recorder) Mutated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutated
}

// MutatingTools lists the tools that changed tasks, in call order.
func (r *Recorder) MutatingTools() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.mutating...)
}

func markMutated(ctx context.Context, toolName string) {
	r := RecorderFrom(ctx)
	if r == nil {
		return
	}
	r.mu.Lock()
	r.mutated = true
	r.mutating = append(r.mutating, toolName)
	r.mu.Unlock()
}
