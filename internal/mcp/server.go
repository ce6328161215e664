package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/tools"
)

// NewServer builds an MCP server exposing the task tools. Tool names and
// descriptions are the ones the chat agent sees.
func NewServer(ctx context.Context, api tools.TaskAPI, version string) (*mcpsdk.Server, error) {
	infos, err := tools.Infos(ctx, tools.TaskTools(api))
	if err != nil {
		return nil, err
	}
	desc := make(map[string]string, len(infos))
	for _, info := range infos {
		desc[info.Name] = info.Desc
	}
	def := func(name string) *mcpsdk.Tool {
		return &mcpsdk.Tool{Name: name, Description: desc[name]}
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "taskmate-mcp",
		Version: version,
	}, &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			slog.Info("mcp client initialized")
		},
	})

	h := NewHandlers(api)
	mcpsdk.AddTool(server, def(tools.NameGetTasks), handle(h.GetTasks))
	mcpsdk.AddTool(server, def(tools.NameGetTask), handle(h.GetTask))
	mcpsdk.AddTool(server, def(tools.NameCreateTask), handle(h.CreateTask))
	mcpsdk.AddTool(server, def(tools.NameUpdateTask), handle(h.UpdateTask))
	mcpsdk.AddTool(server, def(tools.NameDeleteTask), handle(h.DeleteTask))
	mcpsdk.AddTool(server, def(tools.NameCompleteTask), handle(h.CompleteTask))
	mcpsdk.AddTool(server, def(tools.NameReopenTask), handle(h.ReopenTask))

	return server, nil
}

// Serve runs the server on stdio until the client disconnects.
// stdout carries JSON-RPC only; logs must go to stderr.
func Serve(ctx context.Context, server *mcpsdk.Server) error {
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// handle adapts a typed handler to the SDK. Tool errors go into the result
// with IsError set so the client model can see and correct them.
func handle[In any](fn func(context.Context, In) (string, error)) func(context.Context, *mcpsdk.ServerSession, *mcpsdk.CallToolParamsFor[In]) (*mcpsdk.CallToolResultFor[any], error) {
	return func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[In]) (*mcpsdk.CallToolResultFor[any], error) {
		text, err := fn(ctx, params.Arguments)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(text), nil
	}
}

func textResult(text string) *mcpsdk.CallToolResultFor[any] {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcpsdk.CallToolResultFor[any] {
	var ve *task.ValidationError
	var text string
	switch {
	case errors.As(err, &ve):
		text = FormatValidationError(ve.Field, ve.Message)
	case errors.Is(err, task.ErrNotFound):
		text = FormatError("Task not found")
	default:
		text = FormatError(err.Error())
	}
	r := textResult(text)
	r.IsError = true
	return r
}
