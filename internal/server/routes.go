package server

import "net/http"

// routePrefixes mounts every route at the root and under /api.
var routePrefixes = []string{"", "/api"}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	for _, p := range routePrefixes {
		mux.HandleFunc("GET "+p+"/tasks", s.handleListTasks)
		mux.HandleFunc("POST "+p+"/tasks", s.handleCreateTask)
		mux.HandleFunc("GET "+p+"/tasks/{id}", s.handleGetTask)
		mux.HandleFunc("PATCH "+p+"/tasks/{id}", s.handleUpdateTask)
		mux.HandleFunc("DELETE "+p+"/tasks/{id}", s.handleDeleteTask)

		mux.HandleFunc("POST "+p+"/chat", s.handleChat)
		mux.HandleFunc("GET "+p+"/events", s.handleEvents)
		mux.HandleFunc("GET "+p+"/policy/decisions", s.handlePolicyDecisions)
		mux.HandleFunc("GET "+p+"/healthz", s.handleHealth)
	}

	return s.recoverMiddleware(s.logMiddleware(s.corsMiddleware(mux)))
}
