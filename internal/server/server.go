// Package server exposes the task CRUD API, the chat endpoint and a
// websocket stream of task events over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/josephgoksu/taskmate/internal/agent"
	"github.com/josephgoksu/taskmate/internal/events"
	"github.com/josephgoksu/taskmate/internal/logger"
	"github.com/josephgoksu/taskmate/internal/policy"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/telemetry"
)

// Chatter runs one agent turn. *agent.Agent implements it.
type Chatter interface {
	Run(ctx context.Context, threadID, message string) (agent.Result, error)
}

// Options configures a Server. Only Tasks is required.
type Options struct {
	Host           string
	Port           int
	AllowedOrigins []string // "*" allows any origin

	// AlwaysSignalUpdate reports taskUpdated=true for every chat turn.
	AlwaysSignalUpdate bool

	Chat      Chatter
	Bus       *events.Bus
	Audit     *policy.AuditLog
	Telemetry telemetry.Client
	Crash     *logger.CrashReporter
}

type Server struct {
	tasks     *task.Service
	chat      Chatter
	bus       *events.Bus
	audit     *policy.AuditLog
	telemetry telemetry.Client
	crash     *logger.CrashReporter

	alwaysSignalUpdate bool
	allowAnyOrigin     bool
	origins            map[string]struct{}
	wsOriginPatterns   []string

	server *http.Server
}

func New(tasks *task.Service, opts Options) *Server {
	s := &Server{
		tasks:              tasks,
		chat:               opts.Chat,
		bus:                opts.Bus,
		audit:              opts.Audit,
		telemetry:          opts.Telemetry,
		crash:              opts.Crash,
		alwaysSignalUpdate: opts.AlwaysSignalUpdate,
		origins:            make(map[string]struct{}),
	}
	if s.telemetry == nil {
		s.telemetry = telemetry.NewNoopClient()
	}
	s.setOrigins(opts.AllowedOrigins)

	s.server = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
