package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolTurn(user string) []*schema.Message {
	return []*schema.Message{
		schema.UserMessage(user),
		schema.AssistantMessage("", []schema.ToolCall{{ID: "c", Function: schema.FunctionCall{Name: "get_tasks"}}}),
		schema.ToolMessage("[]", "c"),
		schema.AssistantMessage("no tasks", nil),
	}
}

func TestInMemoryHistory_TrimsAtUserBoundary(t *testing.T) {
	h := NewInMemoryHistory(6)
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, "t", toolTurn("one")...))
	require.NoError(t, h.Append(ctx, "t", toolTurn("two")...))

	msgs, err := h.Load(ctx, "t")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, "two", msgs[0].Content)
}

func TestInMemoryHistory_OversizedTurnKeptWhole(t *testing.T) {
	h := NewInMemoryHistory(2)
	ctx := context.Background()
	require.NoError(t, h.Append(ctx, "t", toolTurn("big")...))

	msgs, _ := h.Load(ctx, "t")
	assert.Len(t, msgs, 4)
}

func TestInMemoryHistory_LoadReturnsCopy(t *testing.T) {
	h := NewInMemoryHistory(0)
	ctx := context.Background()
	require.NoError(t, h.Append(ctx, "t", schema.UserMessage("a")))

	msgs, _ := h.Load(ctx, "t")
	msgs[0] = schema.UserMessage("changed")

	again, _ := h.Load(ctx, "t")
	require.Len(t, again, 1)
	assert.Equal(t, "a", again[0].Content)
	assert.Equal(t, 1, h.Threads())

	empty, err := h.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
