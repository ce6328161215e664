/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/mcp"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/taskclient"
	"github.com/josephgoksu/taskmate/internal/tools"
)

var mcpStandalone bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so editors and AI assistants
can read and change your tasks.

The server runs over stdin/stdout and provides the same task tools the chat
assistant uses: get_tasks, get_task, create_task, update_task, delete_task,
complete_task and reopen_task.

By default the tools act on a running taskmate server. With --standalone
they use a private in-memory task list instead.

Example:
  taskmate mcp

The server will run until the client disconnects.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addServerFlags(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpStandalone, "standalone", false, "serve an in-memory task list instead of a running server")
}

func runMCP(cmd *cobra.Command, args []string) error {
	bindServerFlags(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var api tools.TaskAPI
	if mcpStandalone {
		svc := task.NewService(task.NewMemoryStore())
		seed, err := seedTasks(afero.NewOsFs(), cfg.Tasks)
		if err != nil {
			return err
		}
		if err := svc.Seed(seed); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
		api = tools.NewLocal(svc)
	} else {
		api = taskclient.New(config.ResolveBaseURL(cfg))
	}

	server, err := mcp.NewServer(cmd.Context(), api, version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return mcp.Serve(cmd.Context(), server)
}
