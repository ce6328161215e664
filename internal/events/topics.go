/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package events

import (
	"time"

	"github.com/josephgoksu/taskmate/internal/task"
)

// Task topics.
const (
	TopicTaskPrefix  = "task."
	TopicTaskUpdated = "task.updated"
)

// TaskUpdated is the payload of TopicTaskUpdated. Type is always
// "taskUpdated" so clients can switch on it after JSON decoding.
type TaskUpdated struct {
	Type   string      `json:"type"`
	Action task.Action `json:"action"`
	TaskID string      `json:"taskId"`
	At     time.Time   `json:"at"`
}

// TaskPublisher bridges task.Service mutations onto the bus.
type TaskPublisher struct {
	bus *Bus
	now func() time.Time
}

// NewTaskPublisher returns a task.Observer that publishes TaskUpdated events.
func NewTaskPublisher(bus *Bus) *TaskPublisher {
	return &TaskPublisher{bus: bus, now: time.Now}
}

func (p *TaskPublisher) TaskChanged(c task.Change) {
	p.bus.Publish(TopicTaskUpdated, TaskUpdated{
		Type:   "taskUpdated",
		Action: c.Action,
		TaskID: c.Task.ID,
		At:     p.now().UTC(),
	})
}

var _ task.Observer = (*TaskPublisher)(nil)
