package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditLog_BoundedNewestFirst(t *testing.T) {
	a := NewAuditLog(2)
	a.Record(&Decision{DecisionID: "a", Result: ResultAllow})
	a.Record(&Decision{DecisionID: "b", Result: ResultDeny, Violations: []string{"no"}})
	a.Record(&Decision{DecisionID: "c", Result: ResultAllow})
	a.Record(nil)

	assert.Equal(t, 2, a.Len())
	recent := a.Recent(0)
	assert.Equal(t, "c", recent[0].DecisionID)
	assert.Equal(t, "b", recent[1].DecisionID)
	assert.Len(t, a.Recent(1), 1)
}
