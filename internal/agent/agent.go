// Package agent runs the conversational task agent: a chat model bound to
// the task tools, driven through an explicit decide / invoke-tool / respond
// state machine with per-thread conversation memory.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/josephgoksu/taskmate/internal/tools"
)

// DefaultMaxIterations bounds the model calls of a single turn.
const DefaultMaxIterations = 10

var (
	// ErrMaxIterations is returned when a turn needs more model calls than allowed.
	ErrMaxIterations = errors.New("agent: iteration limit reached without a final answer")

	// ErrEmptyMessage is returned by Run for a blank user message.
	ErrEmptyMessage = errors.New("agent: message is required")
)

// Config configures an Agent.
type Config struct {
	Model         model.BaseChatModel
	Tools         []tool.InvokableTool
	Memory        Memory // defaults to an unbounded InMemoryHistory
	Guard         Guard  // optional tool-call policy
	MaxIterations int
	SystemPrompt  string // defaults to SystemPrompt
}

// ToolCall records one tool invocation made during a turn.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Result is the outcome of one turn.
type Result struct {
	Reply      string     `json:"reply"`
	ThreadID   string     `json:"threadId"`
	Iterations int        `json:"iterations"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	Mutated    bool       `json:"mutated"`
}

// Agent answers user messages, calling tools as the model requests.
type Agent struct {
	model        model.BaseChatModel
	toolInfos    []*schema.ToolInfo
	toolsNode    *compose.ToolsNode
	memory       Memory
	maxIters     int
	systemPrompt string

	threadLocks sync.Map // thread id -> *sync.Mutex
}

// New builds an Agent. The tools node is created once and shared by all turns.
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent: chat model is required")
	}
	if cfg.Memory == nil {
		cfg.Memory = NewInMemoryHistory(0)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemPrompt
	}

	infos, err := tools.Infos(ctx, cfg.Tools)
	if err != nil {
		return nil, err
	}

	baseTools := make([]tool.BaseTool, len(cfg.Tools))
	for i, t := range cfg.Tools {
		baseTools[i] = wrapTool(t, infos[i].Name, cfg.Guard)
	}

	var toolsNode *compose.ToolsNode
	if len(baseTools) > 0 {
		toolsNode, err = compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
			Tools:               baseTools,
			ExecuteSequentially: true,
			UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
				return fmt.Sprintf("Error: unknown tool %q", name), nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create tools node: %w", err)
		}
	}

	return &Agent{
		model:        cfg.Model,
		toolInfos:    infos,
		toolsNode:    toolsNode,
		memory:       cfg.Memory,
		maxIters:     cfg.MaxIterations,
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

type state int

const (
	stateDeciding state = iota
	stateInvokeTool
	stateRespondFinal
)

// Run executes one turn for threadID ("" means DefaultThreadID). Turns on
// the same thread are serialized. Messages produced before an error are
// still written to memory.
func (a *Agent) Run(ctx context.Context, threadID, message string) (res Result, err error) {
	if strings.TrimSpace(message) == "" {
		return Result{}, ErrEmptyMessage
	}
	if threadID == "" {
		threadID = DefaultThreadID
	}

	unlock := a.lockThread(threadID)
	defer unlock()

	history, err := a.memory.Load(ctx, threadID)
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	rec := &tools.Recorder{}
	ctx = tools.WithRecorder(withThreadID(ctx, threadID), rec)

	turn := []*schema.Message{schema.UserMessage(message)}
	defer func() {
		if appendErr := a.memory.Append(context.WithoutCancel(ctx), threadID, turn...); appendErr != nil && err == nil {
			err = fmt.Errorf("save history: %w", appendErr)
		}
		res.Mutated = rec.Mutated()
	}()

	res = Result{ThreadID: threadID}
	var last *schema.Message
	st := stateDeciding

	for {
		switch st {
		case stateDeciding:
			if res.Iterations >= a.maxIters {
				slog.Warn("agent iteration limit reached", "thread_id", threadID, "limit", a.maxIters)
				return res, ErrMaxIterations
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Iterations++

			msgs := make([]*schema.Message, 0, 1+len(history)+len(turn))
			msgs = append(msgs, schema.SystemMessage(a.systemPrompt))
			msgs = append(msgs, history...)
			msgs = append(msgs, turn...)

			var opts []model.Option
			if len(a.toolInfos) > 0 {
				opts = append(opts, model.WithTools(a.toolInfos))
			}
			resp, err := a.model.Generate(ctx, msgs, opts...)
			if err != nil {
				return res, fmt.Errorf("generate (iter %d): %w", res.Iterations, err)
			}
			if resp == nil {
				return res, fmt.Errorf("generate (iter %d): empty response", res.Iterations)
			}
			turn = append(turn, resp)
			last = resp

			if len(resp.ToolCalls) > 0 && a.toolsNode != nil {
				st = stateInvokeTool
			} else {
				st = stateRespondFinal
			}

		case stateInvokeTool:
			for _, tc := range last.ToolCalls {
				res.ToolCalls = append(res.ToolCalls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
				slog.Debug("tool call", "thread_id", threadID, "tool", tc.Function.Name, "args", tc.Function.Arguments)
			}
			results, err := a.toolsNode.Invoke(ctx, last)
			if err != nil {
				// Wrapped tools never fail; this is a node-level error.
				results = errorResults(last.ToolCalls, err)
			}
			turn = append(turn, results...)
			st = stateDeciding

		case stateRespondFinal:
			res.Reply = last.Content
			return res, nil
		}
	}
}

// errorResults answers every pending call with the same error so the model
// still sees one result per tool call id.
func errorResults(calls []schema.ToolCall, err error) []*schema.Message {
	out := make([]*schema.Message, 0, len(calls))
	for _, tc := range calls {
		out = append(out, schema.ToolMessage(fmt.Sprintf("Error executing tool: %v", err), tc.ID))
	}
	return out
}

func (a *Agent) lockThread(threadID string) func() {
	v, _ := a.threadLocks.LoadOrStore(threadID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type threadIDKey struct{}

func withThreadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, id)
}

// ThreadIDFrom returns the thread id of the running turn, if any.
func ThreadIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(threadIDKey{}).(string)
	return id
}
