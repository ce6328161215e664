// Package mcp exposes the task tools to MCP clients (editors, assistants)
// over stdio.
package mcp

import "github.com/josephgoksu/taskmate/internal/task"

// GetTasksParams filters get_tasks. Status is "open", "completed" or empty.
type GetTasksParams struct {
	Status string `json:"status,omitempty"`
}

// TaskIDParams identifies one task.
type TaskIDParams struct {
	ID string `json:"id"`
}

// CreateTaskParams defines the parameters for create_task.
type CreateTaskParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateTaskParams defines the parameters for update_task. Omitted fields
// are left unchanged.
type UpdateTaskParams struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p UpdateTaskParams) patch() task.Patch {
	return task.Patch{Title: p.Title, Description: p.Description, Completed: p.Completed}
}
