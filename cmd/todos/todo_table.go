package main

import (
	"strconv"
	"time"

	"github.com/amonks/glasstodo/internal/ui"
	"github.com/amonks/glasstodo/todo"
)

func formatTodoTable(todos []todo.Todo, prefixLengths map[string]int, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "DONE", "PRI", "DUE", "CATEGORY", "AGE", "TEXT"}, len(todos))
	highlight := todoHighlighter(prefixLengths)

	for _, t := range todos {
		text := ui.TruncateTableCell(t.Text)
		if t.Completed {
			text = ui.Completed(text)
		}
		builder.AddRow(
			highlight(t.ID),
			ui.Checkbox(t.Completed),
			ui.Priority(string(t.Priority)),
			formatDue(t, now),
			ui.TruncateTableCell(t.Category),
			ui.FormatDurationShort(now.Sub(t.CreatedAt)),
			text,
		)
	}

	return builder.String()
}

func formatDue(t todo.Todo, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	due := todo.FormatDueDate(t.DueDate)
	if t.IsOverdue(now) {
		return ui.Overdue(due)
	}
	return due
}

func formatStats(stats todo.Stats) string {
	headers := []string{"TOTAL", "ACTIVE", "COMPLETED", "RATE", "OVERDUE", "HIGH", "MEDIUM", "LOW"}
	row := []string{
		strconv.Itoa(stats.Total),
		strconv.Itoa(stats.Active),
		strconv.Itoa(stats.Completed),
		strconv.Itoa(stats.CompletionRate) + "%",
		strconv.Itoa(stats.Overdue),
		strconv.Itoa(stats.ByPriority[todo.PriorityHigh]),
		strconv.Itoa(stats.ByPriority[todo.PriorityMedium]),
		strconv.Itoa(stats.ByPriority[todo.PriorityLow]),
	}
	return ui.FormatTable(headers, [][]string{row})
}
