// Package policy evaluates Rego rules (Open Policy Agent) against the tool
// calls the chat agent is about to make.
package policy

import "time"

// Decision is the outcome of evaluating the loaded policies for one input.
type Decision struct {
	DecisionID  string    `json:"decisionId"`
	PolicyPath  string    `json:"policyPath"`           // Rego package, e.g. "taskmate.policy"
	Result      string    `json:"result"`               // "allow" or "deny"
	Violations  []string  `json:"violations,omitempty"` // deny messages
	Warnings    []string  `json:"warnings,omitempty"`   // warn messages, never block
	Input       any       `json:"input"`
	ThreadID    string    `json:"threadId,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Result values.
const (
	ResultAllow = "allow"
	ResultDeny  = "deny"
)

func (d *Decision) IsAllowed() bool { return d.Result == ResultAllow }

// ToolInput is what Rego rules see as `input` for a tool call.
type ToolInput struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	ThreadID  string         `json:"threadId"`
}
