package mcp

import (
	"context"
	"strings"

	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/tools"
)

// Handlers implements the MCP task tools on top of a tools.TaskAPI. Each
// method returns Markdown for the client; task errors are returned as-is
// so the server can flag the result.
type Handlers struct {
	api tools.TaskAPI
}

func NewHandlers(api tools.TaskAPI) *Handlers {
	return &Handlers{api: api}
}

func (h *Handlers) GetTasks(ctx context.Context, p GetTasksParams) (string, error) {
	status, err := task.ParseStatus(p.Status)
	if err != nil {
		return "", err
	}
	tasks, err := h.api.ListTasks(ctx, status)
	if err != nil {
		return "", err
	}
	return FormatTaskList(tasks, status), nil
}

func (h *Handlers) GetTask(ctx context.Context, p TaskIDParams) (string, error) {
	id, err := requireID(p.ID)
	if err != nil {
		return "", err
	}
	t, err := h.api.GetTask(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatTask(t), nil
}

func (h *Handlers) CreateTask(ctx context.Context, p CreateTaskParams) (string, error) {
	t, err := h.api.CreateTask(ctx, task.CreateInput{Title: p.Title, Description: p.Description})
	if err != nil {
		return "", err
	}
	return FormatMutation(task.ActionCreated, t), nil
}

func (h *Handlers) UpdateTask(ctx context.Context, p UpdateTaskParams) (string, error) {
	id, err := requireID(p.ID)
	if err != nil {
		return "", err
	}
	t, err := h.api.UpdateTask(ctx, id, p.patch())
	if err != nil {
		return "", err
	}
	return FormatMutation(task.ActionUpdated, t), nil
}

func (h *Handlers) DeleteTask(ctx context.Context, p TaskIDParams) (string, error) {
	id, err := requireID(p.ID)
	if err != nil {
		return "", err
	}
	t, err := h.api.DeleteTask(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatMutation(task.ActionDeleted, t), nil
}

func (h *Handlers) CompleteTask(ctx context.Context, p TaskIDParams) (string, error) {
	return h.setCompleted(ctx, p.ID, true)
}

func (h *Handlers) ReopenTask(ctx context.Context, p TaskIDParams) (string, error) {
	return h.setCompleted(ctx, p.ID, false)
}

func (h *Handlers) setCompleted(ctx context.Context, rawID string, done bool) (string, error) {
	id, err := requireID(rawID)
	if err != nil {
		return "", err
	}
	t, err := h.api.UpdateTask(ctx, id, task.Patch{Completed: task.Bool(done)})
	if err != nil {
		return "", err
	}
	action := task.ActionReopened
	if done {
		action = task.ActionCompleted
	}
	return FormatMutation(action, t), nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &task.ValidationError{Field: "id", Message: "id is required"}
	}
	return id, nil
}
