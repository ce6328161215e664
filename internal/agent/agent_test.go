package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskmate/internal/agent/agenttest"
	"github.com/josephgoksu/taskmate/internal/policy"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/tools"
)

func newTaskTools(t *testing.T) (*task.Service, []tool.InvokableTool) {
	t.Helper()
	svc := task.NewService(task.NewMemoryStore())
	require.NoError(t, svc.Seed(task.OnboardingTasks()))
	return svc, tools.TaskTools(tools.NewLocal(svc))
}

func newAgent(t *testing.T, m *agenttest.ScriptedModel, ts []tool.InvokableTool, opts ...func(*Config)) *Agent {
	t.Helper()
	cfg := Config{Model: m, Tools: ts, Memory: NewInMemoryHistory(200)}
	for _, o := range opts {
		o(&cfg)
	}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return a
}

func TestRun_DirectReply(t *testing.T) {
	_, ts := newTaskTools(t)
	m := agenttest.NewScriptedModel(agenttest.Reply("Hi! I can manage your tasks."))
	a := newAgent(t, m, ts)

	res, err := a.Run(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi! I can manage your tasks.", res.Reply)
	assert.Equal(t, DefaultThreadID, res.ThreadID)
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.Mutated)
	assert.Empty(t, res.ToolCalls)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, schema.System, calls[0][0].Role)
	assert.Equal(t, SystemPrompt, calls[0][0].Content)
	assert.Equal(t, "hello", calls[0][1].Content)
	assert.Len(t, m.BoundTools(0), 7)
}

func TestRun_ToolLoopMutates(t *testing.T) {
	svc, ts := newTaskTools(t)
	m := agenttest.NewScriptedModel(
		agenttest.CallTools(agenttest.Call{ID: "c1", Name: "get_tasks", Args: `{}`}),
		agenttest.CallTools(agenttest.Call{ID: "c2", Name: "complete_task", Args: `{"id":"1"}`}),
		func(input []*schema.Message) (*schema.Message, error) {
			results := agenttest.ToolResults(input)
			if len(results) != 1 || results[0].ToolCallID != "c2" {
				return nil, errors.New("expected the complete_task result")
			}
			return schema.AssistantMessage("Done, I closed the welcome task.", nil), nil
		},
	)
	a := newAgent(t, m, ts)

	res, err := a.Run(context.Background(), "t1", "hello, what can you do?")
	require.NoError(t, err)
	assert.Equal(t, "Done, I closed the welcome task.", res.Reply)
	assert.Equal(t, 3, res.Iterations)
	assert.True(t, res.Mutated)
	require.Len(t, res.ToolCalls, 2)
	assert.Equal(t, "get_tasks", res.ToolCalls[0].Name)
	assert.Equal(t, "complete_task", res.ToolCalls[1].Name)

	welcome, err := svc.Get(task.OnboardingWelcome)
	require.NoError(t, err)
	assert.True(t, welcome.Completed)
	assert.NotNil(t, welcome.CompletedAt)
}

func TestRun_MultipleCallsRunInOrder(t *testing.T) {
	svc, ts := newTaskTools(t)
	m := agenttest.NewScriptedModel(
		agenttest.CallTools(
			agenttest.Call{ID: "a", Name: "create_task", Args: `{"title":"first"}`},
			agenttest.Call{ID: "b", Name: "create_task", Args: `{"title":"second"}`},
		),
		agenttest.Reply("Created both."),
	)
	a := newAgent(t, m, ts)

	_, err := a.Run(context.Background(), "", "add first and second")
	require.NoError(t, err)

	all, err := svc.List(task.StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, "first", all[5].Title)
	assert.Equal(t, "second", all[6].Title)
}

func TestRun_ToolErrorBecomesContent(t *testing.T) {
	svc, ts := newTaskTools(t)
	var seen []*schema.Message
	m := agenttest.NewScriptedModel(
		agenttest.CallTools(
			agenttest.Call{ID: "bad", Name: "create_task", Args: `{"title":""}`},
			agenttest.Call{ID: "missing", Name: "get_task", Args: `{"id":"zzz"}`},
			agenttest.Call{ID: "ghost", Name: "no_such_tool", Args: `{}`},
		),
		func(input []*schema.Message) (*schema.Message, error) {
			seen = agenttest.ToolResults(input)
			return schema.AssistantMessage("What should the title be?", nil), nil
		},
	)
	a := newAgent(t, m, ts)

	res, err := a.Run(context.Background(), "", "add a task")
	require.NoError(t, err)
	assert.False(t, res.Mutated)

	require.Len(t, seen, 3)
	assert.Equal(t, "bad", seen[0].ToolCallID)
	assert.Contains(t, seen[0].Content, "Title is required")
	assert.Equal(t, "missing", seen[1].ToolCallID)
	assert.JSONEq(t, `{"error":"Task not found"}`, seen[1].Content)
	assert.Equal(t, "ghost", seen[2].ToolCallID)
	assert.Contains(t, seen[2].Content, "unknown tool")

	all, err := svc.List(task.StatusAll)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRun_MaxIterations(t *testing.T) {
	_, ts := newTaskTools(t)
	m := agenttest.Looping(agenttest.CallTools(agenttest.Call{ID: "x", Name: "get_tasks", Args: `{}`}))
	mem := NewInMemoryHistory(0)
	a := newAgent(t, m, ts, func(c *Config) {
		c.MaxIterations = 3
		c.Memory = mem
	})

	res, err := a.Run(context.Background(), "loop", "list forever")
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Equal(t, 3, res.Iterations)
	assert.Len(t, m.Calls(), 3)

	// user + 3 x (assistant, tool)
	history, err := mem.Load(context.Background(), "loop")
	require.NoError(t, err)
	assert.Len(t, history, 7)
}

func TestRun_ModelErrorKeepsUserMessage(t *testing.T) {
	mem := NewInMemoryHistory(0)
	m := agenttest.NewScriptedModel(agenttest.Fail(errors.New("upstream 503")))
	a := newAgent(t, m, nil, func(c *Config) { c.Memory = mem })

	_, err := a.Run(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 503")

	history, _ := mem.Load(context.Background(), DefaultThreadID)
	require.Len(t, history, 1)
	assert.Equal(t, schema.User, history[0].Role)
}

func TestRun_EmptyMessage(t *testing.T) {
	a := newAgent(t, agenttest.NewScriptedModel(), nil)
	_, err := a.Run(context.Background(), "", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRun_ThreadsAreIndependent(t *testing.T) {
	m := agenttest.Looping(func(input []*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage(input[len(input)-1].Content, nil), nil
	})
	a := newAgent(t, m, nil)
	ctx := context.Background()

	_, err := a.Run(ctx, "a", "one")
	require.NoError(t, err)
	_, err = a.Run(ctx, "b", "two")
	require.NoError(t, err)
	_, err = a.Run(ctx, "a", "three")
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 3)
	// system + one + echo + three
	assert.Len(t, calls[2], 4)
	assert.Equal(t, "one", calls[2][1].Content)
	// thread b saw only its own message
	assert.Len(t, calls[1], 2)
}

func TestRun_SameThreadSerialized(t *testing.T) {
	var mu sync.Mutex
	active, maxActive := 0, 0
	m := agenttest.Looping(func(input []*schema.Message) (*schema.Message, error) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			active--
			mu.Unlock()
		}()
		return schema.AssistantMessage("ok", nil), nil
	})
	a := newAgent(t, m, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.Run(context.Background(), "same", "hi")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

const blockDeletes = `package taskmate.policy

import rego.v1

deny contains msg if {
    input.tool == "delete_task"
    msg := "deleting tasks is disabled"
}
`

func TestRun_PolicyBlocksTool(t *testing.T) {
	svc, ts := newTaskTools(t)
	engine, err := policy.NewEngineWithFiles(context.Background(), "", []*policy.File{
		{Name: "block", Path: "block.rego", Content: blockDeletes},
	}, nil)
	require.NoError(t, err)

	var result string
	m := agenttest.NewScriptedModel(
		agenttest.CallTools(agenttest.Call{ID: "d", Name: "delete_task", Args: `{"id":"5"}`}),
		func(input []*schema.Message) (*schema.Message, error) {
			result = agenttest.ToolResults(input)[0].Content
			return schema.AssistantMessage("I can't delete tasks.", nil), nil
		},
	)
	a := newAgent(t, m, ts, func(c *Config) { c.Guard = NewPolicyGuard(engine) })

	res, err := a.Run(context.Background(), "", "delete task 5")
	require.NoError(t, err)
	assert.False(t, res.Mutated)
	assert.Equal(t, "Action blocked by policy: deleting tasks is disabled", result)

	_, err = svc.Get("5")
	assert.NoError(t, err)
}

func TestResult_JSON(t *testing.T) {
	b, err := json.Marshal(Result{Reply: "ok", ThreadID: "1", Iterations: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reply":"ok","threadId":"1","iterations":1,"mutated":false}`, string(b))
}
