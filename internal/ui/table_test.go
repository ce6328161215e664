package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/josephgoksu/taskmate/internal/task"
)

func TestTable_ColumnWidths(t *testing.T) {
	table := &Table{
		Headers: []string{"ID", "Name", "Status"},
		Rows: [][]string{
			{"abc123", "First item", "open"},
			{"def456", "Second item with longer name", "completed"},
		},
	}

	widths := table.ColumnWidths()

	assert.Equal(t, 6, widths[0])
	assert.Equal(t, 28, widths[1])
	assert.Equal(t, 9, widths[2])
}

func TestTable_ColumnWidths_MaxWidth(t *testing.T) {
	table := &Table{
		Headers:  []string{"ID", "Description"},
		Rows:     [][]string{{"a", "This is a very long description that should be truncated"}},
		MaxWidth: 20,
	}

	widths := table.ColumnWidths()

	assert.Equal(t, 2, widths[0])
	assert.Equal(t, 20, widths[1])
	assert.Contains(t, table.Render(), "…")
}

func TestTable_RenderEmptyHeaders(t *testing.T) {
	assert.Equal(t, "", (&Table{}).Render())
}

func TestTaskTable(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "1", Title: "Welcome", CreatedAt: created},
		{ID: "2", Title: "Buy milk", Completed: true, CreatedAt: created},
	}

	out := TaskTable(tasks, 0).Render()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "Buy milk")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestRenderTaskPane(t *testing.T) {
	assert.Contains(t, RenderTaskPane(nil, 30), "No tasks yet")

	out := RenderTaskPane([]task.Task{{ID: "123456789abc", Title: strings.Repeat("x", 80)}}, 30)
	assert.Contains(t, out, "12345678")
	assert.NotContains(t, out, "123456789abc")
	assert.Contains(t, out, "…")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "…", Truncate("hello", 1))
	assert.Equal(t, "héll…", Truncate("héllo wörld", 5))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "one two\nthree", WrapText("one two three", 8))
	assert.Equal(t, "short", WrapText("short", 20))
	assert.Equal(t, "a\nb", WrapText("a\nb", 0))
}
