/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/ui"
)

var (
	chatThreadID  string
	chatNewThread bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the task assistant",
	Long: `Talk to the assistant of a running taskmate server.

In a terminal, opens an interactive chat with a live task list. With a
message argument, or when output is not a terminal, sends one message and
prints the reply.

Each interactive session starts its own conversation. One-shot messages
share a conversation that persists between calls; --new starts a fresh one.

Examples:
  taskmate chat
  taskmate chat "add a task to buy milk"
  echo "what is left for today?" | taskmate chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addServerFlags(chatCmd)
	chatCmd.Flags().StringVar(&chatThreadID, "thread", "", "conversation thread id (default: new per session)")
	chatCmd.Flags().BoolVar(&chatNewThread, "new", false, "start a new conversation for one-shot messages")
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" && !ui.IsInteractive() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		message = strings.TrimSpace(string(data))
		if message == "" {
			return fmt.Errorf("no message given and stdin is not a terminal")
		}
	}

	if message == "" {
		opts := ui.ChatOptions{ThreadID: sessionThreadID(chatThreadID)}
		if ch, err := client.WatchEvents(ctx); err != nil {
			// Without the stream the TUI refreshes after each reply instead.
			slog.Debug("task events unavailable", "error", err)
		} else {
			opts.Events = ch
		}
		return ui.RunChat(ctx, client, opts)
	}

	threadID, err := oneShotThreadID(afero.NewOsFs(), config.GetStateDir(), chatThreadID, chatNewThread)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(cmd.ErrOrStderr(), " Thinking...")
	if ui.IsInteractive() {
		spin.Start()
	}
	reply, err := client.Chat(ctx, threadID, message)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), reply)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
	return nil
}
