package policy

import (
	"log/slog"
	"sync"
)

// DefaultAuditSize is the number of decisions an AuditLog keeps.
const DefaultAuditSize = 100

// AuditLog keeps the most recent policy decisions in memory and logs denials.
type AuditLog struct {
	mu      sync.Mutex
	entries []*Decision
	max     int
}

// NewAuditLog returns a log bounded to max entries (DefaultAuditSize if <= 0).
func NewAuditLog(max int) *AuditLog {
	if max <= 0 {
		max = DefaultAuditSize
	}
	return &AuditLog{max: max}
}

// Record appends d, dropping the oldest entry when full.
func (a *AuditLog) Record(d *Decision) {
	if d == nil {
		return
	}
	if !d.IsAllowed() {
		slog.Warn("policy denied tool call",
			"decision_id", d.DecisionID,
			"thread_id", d.ThreadID,
			"violations", d.Violations)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, d)
	if over := len(a.entries) - a.max; over > 0 {
		a.entries = append([]*Decision(nil), a.entries[over:]...)
	}
}

// Recent returns up to n decisions, newest first. n <= 0 returns all.
func (a *AuditLog) Recent(n int) []*Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n <= 0 || n > len(a.entries) {
		n = len(a.entries)
	}
	out := make([]*Decision, 0, n)
	for i := len(a.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, a.entries[i])
	}
	return out
}

// Len returns the number of stored decisions.
func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
