package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/josephgoksu/taskmate/internal/events"
)

const eventWriteTimeout = 5 * time.Second

// handleEvents streams task events to a websocket client. The client only
// listens; anything it sends is discarded.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		writeError(w, http.StatusServiceUnavailable, "Events are not configured")
		return
	}

	// Subscribe before the handshake completes so no event published after
	// the client connects is missed.
	sub := s.bus.Subscribe(events.TopicTaskPrefix)
	defer s.bus.Unsubscribe(sub)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.wsOriginPatterns,
	})
	if err != nil {
		slog.Debug("ws: accept failed", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	slog.Debug("ws: events client connected")
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Ch():
			if !ok {
				return
			}
			if err := writeEvent(ctx, conn, ev.Payload); err != nil {
				slog.Debug("ws: write failed, closing", "error", err)
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, payload)
}
