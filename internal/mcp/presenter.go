package mcp

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/josephgoksu/taskmate/internal/task"
)

var titleCase = cases.Title(language.English)

// FormatTaskList renders tasks as a Markdown checklist.
func FormatTaskList(tasks []task.Task, status task.Status) string {
	label := "All tasks"
	if status != task.StatusAll {
		label = titleCase.String(string(status)) + " tasks"
	}
	if len(tasks) == 0 {
		return fmt.Sprintf("## %s\n\nNo tasks.", label)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%d)\n\n", label, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&sb, "- %s **%s** `%s`\n", checkbox(t), t.Title, t.ID)
	}
	return strings.TrimSpace(sb.String())
}

// FormatTask renders one task with its details.
func FormatTask(t task.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s\n", checkbox(t), t.Title)
	fmt.Fprintf(&sb, "**ID**: `%s` | **Created**: %s", t.ID, t.CreatedAt.Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		fmt.Fprintf(&sb, " | **Completed**: %s", t.CompletedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")
	if t.Description != "" {
		sb.WriteString("\n" + t.Description + "\n")
	}
	return strings.TrimSpace(sb.String())
}

// FormatMutation renders the result of a create/update/delete.
func FormatMutation(action task.Action, t task.Task) string {
	return fmt.Sprintf("Task %s.\n\n%s", titleCase.String(string(action)), FormatTask(t))
}

// FormatError returns a Markdown error message.
func FormatError(message string) string {
	return fmt.Sprintf("## Error\n\n**Details**: %s", message)
}

// FormatValidationError returns a Markdown error for validation failures.
func FormatValidationError(field, message string) string {
	if field == "" {
		return fmt.Sprintf("## Validation Error\n\n**Details**: %s", message)
	}
	return fmt.Sprintf("## Validation Error\n\n**Field**: `%s`\n**Details**: %s", field, message)
}

func checkbox(t task.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}
