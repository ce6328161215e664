/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/ui"
	"github.com/josephgoksu/taskmate/internal/util"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "Manage tasks on a running server",
	Long: `List, add, complete, reopen and delete tasks directly, without the assistant.

Examples:
  taskmate tasks list
  taskmate tasks list --status open
  taskmate tasks add "Buy milk" --description "2 liters"
  taskmate tasks done 3f2b9c1e
  taskmate tasks rm 3f2b

Ids may be shortened to any unique prefix.`,
}

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE:    runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTasksAdd,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskCompleted(cmd, args[0], true)
	},
}

var tasksReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Mark a completed task as open again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskCompleted(cmd, args[0], false)
	},
}

var tasksRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTasksRm,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	addServerFlags(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksDoneCmd, tasksReopenCmd, tasksRmCmd)

	tasksListCmd.Flags().String("status", "", "filter by status: open or completed")
	tasksAddCmd.Flags().StringP("description", "d", "", "task description")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("status")
	status, err := task.ParseStatus(raw)
	if err != nil {
		return err
	}

	tasks, err := client.ListTasks(cmd.Context(), status)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), tasks)
	}
	return renderTasks(cmd.OutOrStdout(), tasks)
}

func renderTasks(w io.Writer, tasks []task.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}
	_, err := fmt.Fprintln(w, ui.TaskTable(tasks, 60).Render())
	return err
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	desc, _ := cmd.Flags().GetString("description")

	t, err := client.CreateTask(cmd.Context(), task.CreateInput{
		Title:       strings.Join(args, " "),
		Description: desc,
	})
	if err != nil {
		return describeTaskError(err)
	}
	return printTaskResult(cmd, "Created", t)
}

func setTaskCompleted(cmd *cobra.Command, id string, done bool) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err = util.ResolveTaskID(cmd.Context(), client, id)
	if err != nil {
		return describeTaskError(err)
	}
	t, err := client.UpdateTask(cmd.Context(), id, task.Patch{Completed: task.Bool(done)})
	if err != nil {
		return describeTaskError(err)
	}
	verb := "Reopened"
	if done {
		verb = "Completed"
	}
	return printTaskResult(cmd, verb, t)
}

func runTasksRm(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err := util.ResolveTaskID(cmd.Context(), client, args[0])
	if err != nil {
		return describeTaskError(err)
	}
	t, err := client.DeleteTask(cmd.Context(), id)
	if err != nil {
		return describeTaskError(err)
	}
	return printTaskResult(cmd, "Deleted", t)
}

func printTaskResult(cmd *cobra.Command, verb string, t task.Task) error {
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), t)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s [%s]\n", ui.StatusIcon(t), verb, t.Title, ui.TruncateID(t.ID))
	return err
}

// describeTaskError turns API errors into short CLI messages.
func describeTaskError(err error) error {
	var ve *task.ValidationError
	switch {
	case errors.Is(err, task.ErrNotFound):
		return errors.New("task not found")
	case errors.As(err, &ve):
		return errors.New(ve.Message)
	default:
		return err
	}
}
