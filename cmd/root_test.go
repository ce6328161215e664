package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/server"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/taskclient"
	"github.com/josephgoksu/taskmate/internal/tools"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return b.String(), err
}

// newTaskServer runs the real router over the onboarding tasks.
func newTaskServer(t *testing.T) (*httptest.Server, *task.Service) {
	t.Helper()
	svc := task.NewService(task.NewMemoryStore())
	require.NoError(t, svc.Seed(task.OnboardingTasks()))
	ts := httptest.NewServer(server.New(svc, server.Options{}).Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

func TestRootCmd(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "Taskmate manages a task list you can talk to.")
	assert.Contains(t, output, "Usage:")
	for _, sub := range []string{"serve", "chat", "tasks", "mcp", "version"} {
		assert.Contains(t, output, sub)
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", GetVersion())

	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "taskmate 0.1.0")
}

func TestTasksCommands(t *testing.T) {
	ts, svc := newTaskServer(t)

	output, err := execute(t, "tasks", "list", "--url", ts.URL, "--status", "")
	require.NoError(t, err)
	assert.Contains(t, output, "Create your first task")

	output, err = execute(t, "tasks", "add", "Buy", "milk", "--url", ts.URL, "-d", "2 liters")
	require.NoError(t, err)
	assert.Contains(t, output, "Created Buy milk")

	output, err = execute(t, "tasks", "done", "2", "--url", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, output, "Completed Create your first task")
	got, err := svc.Get("2")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	output, err = execute(t, "tasks", "list", "--url", ts.URL, "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, output, "Create your first task")
	assert.NotContains(t, output, "Update a task")

	_, err = execute(t, "tasks", "reopen", "2", "--url", ts.URL)
	require.NoError(t, err)
	got, err = svc.Get("2")
	require.NoError(t, err)
	assert.False(t, got.Completed)

	_, err = execute(t, "tasks", "rm", "5", "--url", ts.URL)
	require.NoError(t, err)
	_, err = svc.Get("5")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTasksCommands_Errors(t *testing.T) {
	ts, _ := newTaskServer(t)

	_, err := execute(t, "tasks", "done", "missing", "--url", ts.URL)
	require.Error(t, err)
	assert.Equal(t, "task not found", err.Error())

	_, err = execute(t, "tasks", "add", " ", "--url", ts.URL)
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	_, err = execute(t, "tasks", "list", "--url", ts.URL, "--status", "later")
	assert.True(t, task.IsValidation(err))
}

func TestSeedTasks(t *testing.T) {
	fsys := afero.NewMemMapFs()

	tasks, err := seedTasks(fsys, config.TasksConfig{Onboarding: true})
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	tasks, err = seedTasks(fsys, config.TasksConfig{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, afero.WriteFile(fsys, "/seed.yaml", []byte("tasks:\n  - title: Water plants\n"), 0o644))
	tasks, err = seedTasks(fsys, config.TasksConfig{SeedFile: "/seed.yaml", Onboarding: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Water plants", tasks[0].Title)

	_, err = seedTasks(fsys, config.TasksConfig{SeedFile: "/missing.yaml"})
	assert.Error(t, err)
}

func TestTaskAPI_Transport(t *testing.T) {
	svc := task.NewService(task.NewMemoryStore())

	api := taskAPI(config.AppConfig{Tools: config.ToolsConfig{Transport: config.TransportInProcess}}, svc)
	assert.IsType(t, &tools.Local{}, api)

	cfg := config.AppConfig{
		Tools: config.ToolsConfig{Transport: config.TransportHTTP},
		API:   config.APIConfig{BaseURL: "http://tasks.internal:9000/"},
	}
	client, ok := taskAPI(cfg, svc).(*taskclient.Client)
	require.True(t, ok)
	assert.Equal(t, "http://tasks.internal:9000", client.BaseURL())
}

func TestBuildApp_WithoutModel(t *testing.T) {
	viper.Reset()
	config.SetDefaults()
	viper.Set("llm.provider", "openai")
	viper.Set("llm.apiKey", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TASKMATE_LLM_APIKEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := buildApp(context.Background(), cfg, afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.chatReady)
	tasks, err := a.tasks.List(task.StatusAll)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	ts := httptest.NewServer(a.server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewBufferString(`{"message":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
