// Package agenttest provides a scripted chat model for tests.
package agenttest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrScriptExhausted is returned once every step has been consumed.
var ErrScriptExhausted = errors.New("agenttest: no scripted response left")

// Step produces one model reply. It sees the full input of the call.
type Step func(input []*schema.Message) (*schema.Message, error)

// ScriptedModel implements model.BaseChatModel by replaying steps in order.
type ScriptedModel struct {
	mu     sync.Mutex
	steps  []Step
	calls  [][]*schema.Message
	tools  [][]*schema.ToolInfo
	repeat bool
}

// NewScriptedModel returns a model that answers with steps in order.
func NewScriptedModel(steps ...Step) *ScriptedModel {
	return &ScriptedModel{steps: steps}
}

// Looping returns a model that answers every call with step.
func Looping(step Step) *ScriptedModel {
	return &ScriptedModel{steps: []Step{step}, repeat: true}
}

func (m *ScriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, input)
	m.tools = append(m.tools, model.GetCommonOptions(&model.Options{}, opts...).Tools)

	if len(m.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	step := m.steps[0]
	if !m.repeat {
		m.steps = m.steps[1:]
	}
	return step(input)
}

func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("agenttest: streaming not supported")
}

// Calls returns the inputs of every Generate call so far.
func (m *ScriptedModel) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*schema.Message(nil), m.calls...)
}

// BoundTools returns the tool infos passed with the n-th call.
func (m *ScriptedModel) BoundTools(n int) []*schema.ToolInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.tools) {
		return nil
	}
	return m.tools[n]
}

// Reply answers with plain assistant content.
func Reply(content string) Step {
	return func([]*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage(content, nil), nil
	}
}

// Fail answers with err.
func Fail(err error) Step {
	return func([]*schema.Message) (*schema.Message, error) {
		return nil, err
	}
}

// Call is one requested tool invocation.
type Call struct {
	ID   string
	Name string
	Args string
}

// CallTools answers with an assistant message requesting the given calls.
func CallTools(calls ...Call) Step {
	return func([]*schema.Message) (*schema.Message, error) {
		tcs := make([]schema.ToolCall, len(calls))
		for i, c := range calls {
			tcs[i] = schema.ToolCall{
				ID:       c.ID,
				Type:     "function",
				Function: schema.FunctionCall{Name: c.Name, Arguments: c.Args},
			}
		}
		return schema.AssistantMessage("", tcs), nil
	}
}

// ToolResults returns the tool messages at the end of input, in order.
func ToolResults(input []*schema.Message) []*schema.Message {
	i := len(input)
	for i > 0 && input[i-1].Role == schema.Tool {
		i--
	}
	return input[i:]
}

var _ model.BaseChatModel = (*ScriptedModel)(nil)
