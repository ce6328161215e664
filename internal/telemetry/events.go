package telemetry

import (
	"context"

	"github.com/josephgoksu/taskmate/internal/events"
)

// Event names.
const (
	EventChatTurn     = "chat_turn"
	EventTaskMutation = "task_mutation"
	EventServerStart  = "server_start"
)

// ChatTurn describes one finished agent turn. No message content is sent.
type ChatTurn struct {
	Iterations int
	ToolCalls  []string
	Mutated    bool
	Failed     bool
}

// TrackChatTurn sends a chat_turn event.
func TrackChatTurn(c Client, turn ChatTurn) {
	if c == nil {
		return
	}
	c.Track(EventChatTurn, Properties{
		"iterations": turn.Iterations,
		"tool_calls": turn.ToolCalls,
		"tool_count": len(turn.ToolCalls),
		"mutated":    turn.Mutated,
		"failed":     turn.Failed,
	})
}

// Forward tracks a task_mutation event for every task event on bus until
// ctx is done. The subscription is active when Forward returns; the
// returned channel closes once forwarding stops.
func Forward(ctx context.Context, bus *events.Bus, c Client) <-chan struct{} {
	sub := bus.Subscribe(events.TopicTaskPrefix)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Ch():
				if !ok {
					return
				}
				upd, ok := ev.Payload.(events.TaskUpdated)
				if !ok {
					continue
				}
				c.Track(EventTaskMutation, Properties{"action": string(upd.Action)})
			}
		}
	}()
	return done
}
