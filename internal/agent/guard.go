package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/josephgoksu/taskmate/internal/policy"
)

// Guard decides whether a tool call may run. A non-empty reason with
// allowed=false is reported to the model as the tool result.
type Guard interface {
	CheckTool(ctx context.Context, threadID, toolName, argsJSON string) (allowed bool, reason string, err error)
}

// PolicyGuard adapts a policy.Engine to Guard.
type PolicyGuard struct {
	engine *policy.Engine
}

func NewPolicyGuard(engine *policy.Engine) *PolicyGuard {
	return &PolicyGuard{engine: engine}
}

func (g *PolicyGuard) CheckTool(ctx context.Context, threadID, toolName, argsJSON string) (bool, string, error) {
	d, err := g.engine.CheckTool(ctx, threadID, toolName, argsJSON)
	if err != nil {
		return false, "", err
	}
	if d.IsAllowed() {
		return true, "", nil
	}
	return false, strings.Join(d.Violations, "; "), nil
}

// safeTool runs the policy check and turns tool errors into result content,
// so one failing call never aborts the other calls of the same step.
type safeTool struct {
	inner tool.InvokableTool
	name  string
	guard Guard
}

func wrapTool(t tool.InvokableTool, name string, guard Guard) *safeTool {
	return &safeTool{inner: t, name: name, guard: guard}
}

func (s *safeTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return s.inner.Info(ctx)
}

func (s *safeTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	if s.guard != nil {
		allowed, reason, err := s.guard.CheckTool(ctx, ThreadIDFrom(ctx), s.name, argsJSON)
		if err != nil {
			slog.Error("policy evaluation failed", "tool", s.name, "error", err)
			return fmt.Sprintf("Error: policy evaluation failed: %v", err), nil
		}
		if !allowed {
			return "Action blocked by policy: " + reason, nil
		}
	}

	out, err := s.inner.InvokableRun(ctx, argsJSON, opts...)
	if err != nil {
		slog.Warn("tool failed", "tool", s.name, "error", err)
		return "Error: " + err.Error(), nil
	}
	return out, nil
}

var _ tool.InvokableTool = (*safeTool)(nil)
