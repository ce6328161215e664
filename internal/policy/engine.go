package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/spf13/afero"
)

// DefaultPolicyPackage is the Rego package queried for deny and warn rules.
const DefaultPolicyPackage = "taskmate.policy"

// Engine evaluates the loaded policies locally; it never calls out to an
// OPA server.
type Engine struct {
	files         []*File
	policyPackage string
	deny          *rego.PreparedEvalQuery
	warn          *rego.PreparedEvalQuery
	audit         *AuditLog
}

// EngineConfig holds configuration for creating an Engine.
type EngineConfig struct {
	// Dir holds the .rego files. Empty means no policies.
	Dir string

	// PolicyPackage defaults to DefaultPolicyPackage.
	PolicyPackage string

	// Fs defaults to the OS filesystem.
	Fs afero.Fs

	// Audit receives every decision when set.
	Audit *AuditLog
}

// NewEngine loads and compiles the policies in cfg.Dir.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	files, err := NewLoader(cfg.Fs, cfg.Dir).LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}
	return NewEngineWithFiles(ctx, cfg.PolicyPackage, files, cfg.Audit)
}

// NewEngineWithFiles compiles explicitly provided policies.
func NewEngineWithFiles(ctx context.Context, pkg string, files []*File, audit *AuditLog) (*Engine, error) {
	if pkg == "" {
		pkg = DefaultPolicyPackage
	}
	e := &Engine{files: files, policyPackage: pkg, audit: audit}
	if len(files) == 0 {
		return e, nil
	}

	var err error
	if e.deny, err = e.prepare(ctx, "deny"); err != nil {
		return nil, err
	}
	if e.warn, err = e.prepare(ctx, "warn"); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) prepare(ctx context.Context, rule string) (*rego.PreparedEvalQuery, error) {
	opts := []func(*rego.Rego){
		rego.Query(fmt.Sprintf("data.%s.%s", e.policyPackage, rule)),
	}
	for _, f := range e.files {
		opts = append(opts, rego.Module(f.Path, f.Content))
	}
	pq, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile %s rules: %w", rule, err)
	}
	return &pq, nil
}

// PolicyCount returns the number of loaded policy files.
func (e *Engine) PolicyCount() int {
	return len(e.files)
}

// Evaluate runs the deny and warn rules against input. Any string produced
// by a deny rule blocks; warn strings are only reported.
func (e *Engine) Evaluate(ctx context.Context, input any) (*Decision, error) {
	d := &Decision{
		DecisionID:  uuid.NewString(),
		PolicyPath:  e.policyPackage,
		Result:      ResultAllow,
		Input:       input,
		EvaluatedAt: time.Now().UTC(),
	}
	if len(e.files) == 0 {
		return d, nil
	}

	violations, err := querySet(ctx, e.deny, input)
	if err != nil {
		return nil, fmt.Errorf("query deny rules: %w", err)
	}
	// Warnings are optional.
	warnings, _ := querySet(ctx, e.warn, input)

	d.Violations = violations
	d.Warnings = warnings
	if len(violations) > 0 {
		d.Result = ResultDeny
	}
	return d, nil
}

// querySet evaluates a set-generating rule and returns its string members.
func querySet(ctx context.Context, pq *rego.PreparedEvalQuery, input any) ([]string, error) {
	if pq == nil {
		return nil, nil
	}
	rs, err := pq.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		if strings.Contains(err.Error(), "undefined") {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			set, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, item := range set {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out, nil
}

// CheckTool evaluates a pending tool call. argsJSON is the raw argument
// object produced by the model.
func (e *Engine) CheckTool(ctx context.Context, threadID, toolName, argsJSON string) (*Decision, error) {
	args := map[string]any{}
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			// Let the tool itself report malformed arguments.
			args = map[string]any{}
		}
	}
	d, err := e.Evaluate(ctx, ToolInput{Tool: toolName, Arguments: args, ThreadID: threadID})
	if err != nil {
		return nil, err
	}
	d.ThreadID = threadID
	if e.audit != nil {
		e.audit.Record(d)
	}
	return d, nil
}

// ValidatePolicy checks that content is valid Rego.
func ValidatePolicy(content string) error {
	_, err := rego.New(
		rego.Query("data"),
		rego.Module("validation.rego", content),
	).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}
