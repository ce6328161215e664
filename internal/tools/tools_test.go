package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskmate/internal/search"
	"github.com/josephgoksu/taskmate/internal/task"
)

func newLocal(t *testing.T) (*task.Service, TaskAPI) {
	t.Helper()
	svc := task.NewService(task.NewMemoryStore())
	require.NoError(t, svc.Seed(task.OnboardingTasks()))
	return svc, NewLocal(svc)
}

func TestAll_Names(t *testing.T) {
	_, api := newLocal(t)
	infos, err := Infos(context.Background(), All(api, search.NewSearcher()))
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{
		"get_tasks", "get_task", "create_task", "update_task",
		"delete_task", "complete_task", "reopen_task", "web_search",
	}, names)

	assert.Len(t, All(api, nil), 7)
}

func TestGetTasksTool_Filter(t *testing.T) {
	svc, api := newLocal(t)
	_, err := svc.Complete(task.OnboardingCreate)
	require.NoError(t, err)
	gt := &GetTasksTool{api: api}

	out, err := gt.InvokableRun(context.Background(), `{"status":"completed"}`)
	require.NoError(t, err)
	var tasks []task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, task.OnboardingCreate, tasks[0].ID)

	out, err = gt.InvokableRun(context.Background(), ``)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Len(t, tasks, 5)

	_, err = gt.InvokableRun(context.Background(), `{"status":"archived"}`)
	assert.Error(t, err)
}

func TestTools_NotFoundIsContent(t *testing.T) {
	_, api := newLocal(t)
	ctx := context.Background()

	cases := []struct {
		name string
		tool tool.InvokableTool
		args string
	}{
		{"get", &GetTaskTool{api: api}, `{"id":"nope"}`},
		{"update", &UpdateTaskTool{api: api}, `{"id":"nope","title":"x"}`},
		{"delete", &DeleteTaskTool{api: api}, `{"id":"nope"}`},
		{"complete", &CompleteTaskTool{api: api}, `{"id":"nope"}`},
		{"reopen", &ReopenTaskTool{api: api}, `{"id":"nope"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &Recorder{}
			out, err := tc.tool.InvokableRun(WithRecorder(ctx, rec), tc.args)
			require.NoError(t, err)
			assert.JSONEq(t, `{"error":"Task not found"}`, out)
			assert.False(t, rec.Mutated())
		})
	}
}

func TestMutatingTools_Record(t *testing.T) {
	svc, api := newLocal(t)
	rec := &Recorder{}
	ctx := WithRecorder(context.Background(), rec)

	out, err := (&CreateTaskTool{api: api}).InvokableRun(ctx, `{"title":"Buy milk","description":"2 litres"}`)
	require.NoError(t, err)
	var created task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)

	_, err = (&CompleteTaskTool{api: api}).InvokableRun(ctx, `{"id":"`+created.ID+`"}`)
	require.NoError(t, err)
	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)

	_, err = (&ReopenTaskTool{api: api}).InvokableRun(ctx, `{"id":"`+created.ID+`"}`)
	require.NoError(t, err)

	_, err = (&UpdateTaskTool{api: api}).InvokableRun(ctx, `{"id":"`+created.ID+`","description":"oat milk"}`)
	require.NoError(t, err)

	_, err = (&DeleteTaskTool{api: api}).InvokableRun(ctx, `{"id":"`+created.ID+`"}`)
	require.NoError(t, err)
	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	assert.True(t, rec.Mutated())
	assert.Equal(t, []string{"create_task", "complete_task", "reopen_task", "update_task", "delete_task"}, rec.MutatingTools())
}

func TestReadTools_DoNotRecord(t *testing.T) {
	_, api := newLocal(t)
	rec := &Recorder{}
	ctx := WithRecorder(context.Background(), rec)

	_, err := (&GetTasksTool{api: api}).InvokableRun(ctx, `{}`)
	require.NoError(t, err)
	_, err = (&GetTaskTool{api: api}).InvokableRun(ctx, `{"id":"1"}`)
	require.NoError(t, err)
	assert.False(t, rec.Mutated())
}

func TestCreateTaskTool_ValidationIsError(t *testing.T) {
	svc, api := newLocal(t)
	_, err := (&CreateTaskTool{api: api}).InvokableRun(context.Background(), `{"title":"  "}`)
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
	assert.Contains(t, err.Error(), "Title is required")

	tasks, err := svc.List(task.StatusAll)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)
}

func TestTools_BadArguments(t *testing.T) {
	_, api := newLocal(t)
	_, err := (&GetTaskTool{api: api}).InvokableRun(context.Background(), `{"id":`)
	assert.Error(t, err)
	_, err = (&DeleteTaskTool{api: api}).InvokableRun(context.Background(), `{}`)
	assert.Error(t, err)
}

type fakeSearcher struct {
	out   search.Output
	err   error
	query string
}

func (f *fakeSearcher) Search(_ context.Context, q string) (search.Output, error) {
	f.query = q
	return f.out, f.err
}

func TestWebSearchTool(t *testing.T) {
	fs := &fakeSearcher{out: search.Output{Provider: "tavily", Results: []search.Result{{Title: "Go", URL: "https://go.dev"}}}}
	out, err := NewWebSearchTool(fs).InvokableRun(context.Background(), `{"query":"golang"}`)
	require.NoError(t, err)
	assert.Equal(t, "golang", fs.query)
	assert.Contains(t, out, "https://go.dev")

	fs.err = errors.New("quota exceeded")
	_, err = NewWebSearchTool(fs).InvokableRun(context.Background(), `{"query":"golang"}`)
	assert.ErrorContains(t, err, "quota exceeded")
}
