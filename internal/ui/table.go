package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/util"
)

// Table renders rows in a compact fixed-width layout.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int // per column, 0 = auto
}

// ColumnWidths returns the display width of every column.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	if t.MaxWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], t.MaxWidth)
		}
	}
	return widths
}

// Render outputs the table to a string.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := t.ColumnWidths()
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)

	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = headerStyle.Render(padRight(h, widths[i]))
	}
	sb.WriteString(" " + strings.Join(cells, "  ") + "\n")

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = StyleSubtle.Render(strings.Repeat("─", w))
	}
	sb.WriteString(" " + strings.Join(seps, "──") + "\n")

	for _, row := range t.Rows {
		for i := range t.Headers {
			val := ""
			if i < len(row) {
				val = Truncate(row[i], widths[i])
			}
			cells[i] = cellStyle.Render(padRight(val, widths[i]))
		}
		sb.WriteString(" " + strings.Join(cells, "  ") + "\n")
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// TruncateID shortens generated ids for display. Any unique prefix is
// accepted back by the tasks commands.
func TruncateID(id string) string {
	return util.ShortID(id, util.DefaultShortIDLength)
}

// StatusIcon is the checkbox shown next to a task.
func StatusIcon(t task.Task) string {
	if t.Completed {
		return Icon("✓", StyleSuccess)
	}
	return Icon("○", StyleSubtle)
}

// TaskTable renders tasks as a table with short ids.
func TaskTable(tasks []task.Task, maxWidth int) *Table {
	t := &Table{
		Headers:  []string{"", "ID", "TITLE", "CREATED"},
		MaxWidth: maxWidth,
	}
	for _, tk := range tasks {
		t.Rows = append(t.Rows, []string{
			StatusIcon(tk),
			TruncateID(tk.ID),
			tk.Title,
			tk.CreatedAt.Local().Format("Jan 02 15:04"),
		})
	}
	return t
}

// RenderTaskPane renders a compact task list for the chat view.
func RenderTaskPane(tasks []task.Task, width int) string {
	if len(tasks) == 0 {
		return StyleSubtle.Render("No tasks yet.")
	}
	lines := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		title := Truncate(tk.Title, max(width-len(tk.ID)-6, 8))
		style := StyleText
		if tk.Completed {
			style = StyleSubtle.Strikethrough(true)
		}
		lines = append(lines, StatusIcon(tk)+" "+StyleSubtle.Render(TruncateID(tk.ID))+" "+style.Render(title))
	}
	return strings.Join(lines, "\n")
}
