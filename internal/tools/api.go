/*
Package tools provides the Eino tools the chat agent uses to manage tasks
and search the web.
*/
package tools

import (
	"context"

	"github.com/josephgoksu/taskmate/internal/task"
)

// TaskAPI is the task CRUD contract as seen by the tools. It is satisfied by
// Local (in-process) and by *taskclient.Client (HTTP).
type TaskAPI interface {
	ListTasks(ctx context.Context, status task.Status) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error)
	UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id string) (task.Task, error)
}

// Local adapts a task.Service to TaskAPI.
type Local struct {
	svc *task.Service
}

// NewLocal returns an in-process TaskAPI.
func NewLocal(svc *task.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) ListTasks(_ context.Context, status task.Status) ([]task.Task, error) {
	return l.svc.List(status)
}

func (l *Local) GetTask(_ context.Context, id string) (task.Task, error) {
	return l.svc.Get(id)
}

func (l *Local) CreateTask(_ context.Context, in task.CreateInput) (task.Task, error) {
	return l.svc.Create(in)
}

func (l *Local) UpdateTask(_ context.Context, id string, p task.Patch) (task.Task, error) {
	return l.svc.Update(id, p)
}

func (l *Local) DeleteTask(_ context.Context, id string) (task.Task, error) {
	return l.svc.Delete(id)
}

var _ TaskAPI = (*Local)(nil)
