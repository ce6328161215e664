package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/josephgoksu/taskmate/internal/agent"
	"github.com/josephgoksu/taskmate/internal/telemetry"
)

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

type chatResponse struct {
	Response    string `json:"response"`
	TaskUpdated bool   `json:"taskUpdated"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = agent.DefaultThreadID
	}
	if s.crash != nil {
		s.crash.SetLastInput(req.Message)
	}

	res, err := s.chat.Run(r.Context(), req.ThreadID, req.Message)
	telemetry.TrackChatTurn(s.telemetry, chatTurn(res, err))
	if err != nil {
		slog.Error("chat turn failed",
			"thread_id", req.ThreadID,
			"iterations", res.Iterations,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	writeAPIJSON(w, chatResponse{
		Response:    res.Reply,
		TaskUpdated: res.Mutated || s.alwaysSignalUpdate,
	})
}

func chatTurn(res agent.Result, err error) telemetry.ChatTurn {
	names := make([]string, len(res.ToolCalls))
	for i, tc := range res.ToolCalls {
		names[i] = tc.Name
	}
	return telemetry.ChatTurn{
		Iterations: res.Iterations,
		ToolCalls:  names,
		Mutated:    res.Mutated,
		Failed:     err != nil,
	}
}
