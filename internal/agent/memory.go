package agent

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// DefaultThreadID is used when a request carries no thread id.
const DefaultThreadID = "1"

// Memory stores conversation history per thread.
type Memory interface {
	// Load returns a copy of the thread's history, empty for unknown threads.
	Load(ctx context.Context, threadID string) ([]*schema.Message, error)
	// Append adds messages to the end of the thread's history.
	Append(ctx context.Context, threadID string, msgs ...*schema.Message) error
}

// InMemoryHistory keeps a sliding window of messages per thread. Trimming
// only cuts in front of a user message, so an assistant tool call is never
// separated from its results.
type InMemoryHistory struct {
	mu      sync.RWMutex
	threads map[string][]*schema.Message
	limit   int
}

// NewInMemoryHistory returns a history bounded to limit messages per thread.
// limit <= 0 disables trimming.
func NewInMemoryHistory(limit int) *InMemoryHistory {
	return &InMemoryHistory{threads: make(map[string][]*schema.Message), limit: limit}
}

func (h *InMemoryHistory) Load(_ context.Context, threadID string) ([]*schema.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*schema.Message(nil), h.threads[threadID]...), nil
}

func (h *InMemoryHistory) Append(_ context.Context, threadID string, msgs ...*schema.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.threads[threadID] = trimHistory(append(h.threads[threadID], msgs...), h.limit)
	return nil
}

// Threads returns the number of known threads.
func (h *InMemoryHistory) Threads() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads)
}

// trimHistory drops the oldest turns until at most limit messages remain.
// When a single turn is larger than limit, that turn is kept whole.
func trimHistory(msgs []*schema.Message, limit int) []*schema.Message {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	cut := -1
	for i, m := range msgs {
		if m.Role != schema.User {
			continue
		}
		cut = i
		if len(msgs)-i <= limit {
			break
		}
	}
	if cut <= 0 {
		return msgs
	}
	return append([]*schema.Message(nil), msgs[cut:]...)
}

var _ Memory = (*InMemoryHistory)(nil)
