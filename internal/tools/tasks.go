package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/josephgoksu/taskmate/internal/task"
)

// Tool names.
const (
	NameGetTasks     = "get_tasks"
	NameGetTask      = "get_task"
	NameCreateTask   = "create_task"
	NameUpdateTask   = "update_task"
	NameDeleteTask   = "delete_task"
	NameCompleteTask = "complete_task"
	NameReopenTask   = "reopen_task"
	NameWebSearch    = "web_search"
)

// notFoundResult is returned as content, not as an error, so the model can
// tell the user the id did not match.
const notFoundResult = `{"error":"Task not found"}`

// TaskTools returns the task CRUD tools bound to api.
func TaskTools(api TaskAPI) []tool.InvokableTool {
	return []tool.InvokableTool{
		&GetTasksTool{api: api},
		&GetTaskTool{api: api},
		&CreateTaskTool{api: api},
		&UpdateTaskTool{api: api},
		&DeleteTaskTool{api: api},
		&CompleteTaskTool{api: api},
		&ReopenTaskTool{api: api},
	}
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}

// taskResult encodes t, or maps ErrNotFound to the structured not-found result.
func taskResult(t task.Task, err error) (string, error) {
	if errors.Is(err, task.ErrNotFound) {
		return notFoundResult, nil
	}
	if err != nil {
		return "", err
	}
	return encode(t)
}

func parseArgs(argsJSON string, v any) error {
	if strings.TrimSpace(argsJSON) == "" {
		argsJSON = "{}"
	}
	if err := json.Unmarshal([]byte(argsJSON), v); err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}
	return nil
}

type idArgs struct {
	ID string `json:"id"`
}

func parseID(argsJSON string) (string, error) {
	var args idArgs
	if err := parseArgs(argsJSON, &args); err != nil {
		return "", err
	}
	id := strings.TrimSpace(args.ID)
	if id == "" {
		return "", fmt.Errorf("id argument is required")
	}
	return id, nil
}

// =============================================================================
// GetTasksTool
// =============================================================================

type GetTasksTool struct{ api TaskAPI }

func (t *GetTasksTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameGetTasks,
		Desc: "Get all tasks with optional filtering by completion status",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"status": {
				Type: "string",
				Desc: "Optional filter for task status. Use 'open' for incomplete tasks or 'completed' for completed tasks.",
				Enum: []string{string(task.StatusOpen), string(task.StatusCompleted)},
			},
		}),
	}, nil
}

func (t *GetTasksTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	var args struct {
		Status string `json:"status,omitempty"`
	}
	if err := parseArgs(argsJSON, &args); err != nil {
		return "", err
	}
	status, err := task.ParseStatus(args.Status)
	if err != nil {
		return "", err
	}
	tasks, err := t.api.ListTasks(ctx, status)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return encode(tasks)
}

// =============================================================================
// GetTaskTool
// =============================================================================

type GetTaskTool struct{ api TaskAPI }

func (t *GetTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameGetTask,
		Desc: "Get details of a specific task by ID",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"id": {Type: "string", Desc: "ID of the task to retrieve", Required: true},
		}),
	}, nil
}

func (t *GetTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	id, err := parseID(argsJSON)
	if err != nil {
		return "", err
	}
	return taskResult(t.api.GetTask(ctx, id))
}

// =============================================================================
// CreateTaskTool
// =============================================================================

type CreateTaskTool struct{ api TaskAPI }

func (t *CreateTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameCreateTask,
		Desc: "Create a new task with a title and optional description",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"title":       {Type: "string", Desc: "Title of the task (required)", Required: true},
			"description": {Type: "string", Desc: "Detailed description of the task (optional)"},
		}),
	}, nil
}

func (t *CreateTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	var in task.CreateInput
	if err := parseArgs(argsJSON, &in); err != nil {
		return "", err
	}
	created, err := t.api.CreateTask(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	markMutated(ctx, NameCreateTask)
	return encode(created)
}

// =============================================================================
// UpdateTaskTool
// =============================================================================

type UpdateTaskTool struct{ api TaskAPI }

func (t *UpdateTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameUpdateTask,
		Desc: "Update an existing task - change title, description, or completion status",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"id":          {Type: "string", Desc: "ID of the task to update", Required: true},
			"title":       {Type: "string", Desc: "New title for the task"},
			"description": {Type: "string", Desc: "New description for the task"},
			"completed":   {Type: "boolean", Desc: "New completion status for the task"},
		}),
	}, nil
}

func (t *UpdateTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	var args struct {
		ID string `json:"id"`
		task.Patch
	}
	if err := parseArgs(argsJSON, &args); err != nil {
		return "", err
	}
	id := strings.TrimSpace(args.ID)
	if id == "" {
		return "", fmt.Errorf("id argument is required")
	}
	return applyPatch(ctx, t.api, NameUpdateTask, id, args.Patch)
}

// applyPatch runs an update and records the mutation on success.
func applyPatch(ctx context.Context, api TaskAPI, name, id string, p task.Patch) (string, error) {
	updated, err := api.UpdateTask(ctx, id, p)
	if errors.Is(err, task.ErrNotFound) {
		return notFoundResult, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to update task: %w", err)
	}
	markMutated(ctx, name)
	return encode(updated)
}

// =============================================================================
// DeleteTaskTool
// =============================================================================

type DeleteTaskTool struct{ api TaskAPI }

func (t *DeleteTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameDeleteTask,
		Desc: "Delete a task by ID",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"id": {Type: "string", Desc: "ID of the task to delete", Required: true},
		}),
	}, nil
}

func (t *DeleteTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	id, err := parseID(argsJSON)
	if err != nil {
		return "", err
	}
	deleted, err := t.api.DeleteTask(ctx, id)
	if errors.Is(err, task.ErrNotFound) {
		return notFoundResult, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete task: %w", err)
	}
	markMutated(ctx, NameDeleteTask)
	return encode(deleted)
}

// =============================================================================
// CompleteTaskTool / ReopenTaskTool
// =============================================================================

type CompleteTaskTool struct{ api TaskAPI }

func (t *CompleteTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameCompleteTask,
		Desc: "Mark a task as completed",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"id": {Type: "string", Desc: "ID of the task to mark as completed", Required: true},
		}),
	}, nil
}

func (t *CompleteTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	id, err := parseID(argsJSON)
	if err != nil {
		return "", err
	}
	return applyPatch(ctx, t.api, NameCompleteTask, id, task.Patch{Completed: task.Bool(true)})
}

type ReopenTaskTool struct{ api TaskAPI }

func (t *ReopenTaskTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameReopenTask,
		Desc: "Mark a completed task as not completed (reopen it)",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"id": {Type: "string", Desc: "ID of the completed task to reopen", Required: true},
		}),
	}, nil
}

func (t *ReopenTaskTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	id, err := parseID(argsJSON)
	if err != nil {
		return "", err
	}
	return applyPatch(ctx, t.api, NameReopenTask, id, task.Patch{Completed: task.Bool(false)})
}

var (
	_ tool.InvokableTool = (*GetTasksTool)(nil)
	_ tool.InvokableTool = (*GetTaskTool)(nil)
	_ tool.InvokableTool = (*CreateTaskTool)(nil)
	_ tool.InvokableTool = (*UpdateTaskTool)(nil)
	_ tool.InvokableTool = (*DeleteTaskTool)(nil)
	_ tool.InvokableTool = (*CompleteTaskTool)(nil)
	_ tool.InvokableTool = (*ReopenTaskTool)(nil)
)
