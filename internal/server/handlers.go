package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/josephgoksu/taskmate/internal/task"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeAPIJSON(w http.ResponseWriter, data interface{}) {
	writeStatusJSON(w, http.StatusOK, data)
}

func writeStatusJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeStatusJSON(w, status, errorResponse{Error: msg})
}

// writeTaskError maps task errors to their HTTP status. Unexpected errors
// are logged and reported generically.
func writeTaskError(w http.ResponseWriter, op string, err error) {
	var ve *task.ValidationError
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	default:
		slog.Error("task operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// decodeBody reads a JSON body into v. It reports false after writing a
// 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status, err := task.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeTaskError(w, "list tasks", err)
		return
	}

	tasks, err := s.tasks.List(status)
	if err != nil {
		writeTaskError(w, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeAPIJSON(w, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.PathValue("id"))
	if err != nil {
		writeTaskError(w, "get task", err)
		return
	}
	writeAPIJSON(w, t)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in task.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}

	t, err := s.tasks.Create(in)
	if err != nil {
		writeTaskError(w, "create task", err)
		return
	}
	writeStatusJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var p task.Patch
	if !decodeBody(w, r, &p) {
		return
	}

	t, err := s.tasks.Update(r.PathValue("id"), p)
	if err != nil {
		writeTaskError(w, "update task", err)
		return
	}
	writeAPIJSON(w, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Delete(r.PathValue("id"))
	if err != nil {
		writeTaskError(w, "delete task", err)
		return
	}
	writeAPIJSON(w, t)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, map[string]string{"status": "ok"})
}

// handlePolicyDecisions lists recent policy decisions, newest first.
func (s *Server) handlePolicyDecisions(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeAPIJSON(w, []struct{}{})
		return
	}
	writeAPIJSON(w, s.audit.Recent(50))
}
