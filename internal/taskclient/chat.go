package taskclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/josephgoksu/taskmate/internal/events"
)

// ChatReply is the response of POST /chat.
type ChatReply struct {
	Response    string `json:"response"`
	TaskUpdated bool   `json:"taskUpdated"`
}

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

// Chat sends one message to the agent. An empty threadID uses the server
// default thread.
func (c *Client) Chat(ctx context.Context, threadID, message string) (ChatReply, error) {
	var out ChatReply
	err := c.doWith(ctx, c.chat, http.MethodPost, "/chat", chatRequest{Message: message, ThreadID: threadID}, &out)
	return out, err
}

// WatchEvents connects to the server's event stream. The returned channel
// is closed when ctx is done or the connection drops.
func (c *Client) WatchEvents(ctx context.Context) (<-chan events.TaskUpdated, error) {
	wsURL, err := eventsURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", wsURL, err)
	}

	out := make(chan events.TaskUpdated, 16)
	go func() {
		defer close(out)
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

		for {
			var ev events.TaskUpdated
			if err := wsjson.Read(ctx, conn, &ev); err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func eventsURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	return u.String(), nil
}
