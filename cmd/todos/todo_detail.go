package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/glasstodo/internal/markdown"
	"github.com/amonks/glasstodo/internal/ui"
	"github.com/amonks/glasstodo/todo"
)

const (
	todoDetailLineWidth   = 80
	todoDetailLabelWidth  = 10
	todoDetailTimeLayout  = "2006-01-02 15:04:05"
	todoDescriptionIndent = 2
)

// formatTodoDetail renders a todo as labeled lines followed by its
// markdown description.
func formatTodoDetail(t todo.Todo, highlight func(string) string, now time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%-*s%s\n", todoDetailLabelWidth, label+":", value)
	}

	field("ID", highlight(t.ID))
	field("Text", wrapDetailValue(t.Text))
	field("Status", statusLabel(t.Completed))
	field("Priority", string(t.Priority))
	field("Category", t.Category)
	if t.DueDate != nil {
		due := todo.FormatDueDate(t.DueDate)
		switch {
		case t.IsOverdue(now):
			due += " (overdue)"
		case t.IsDueOn(now):
			due += " (today)"
		}
		field("Due", due)
	}
	field("Created", formatDetailTime(t.CreatedAt, now))
	field("Updated", formatDetailTime(t.UpdatedAt, now))

	if description := formatTodoDescription(t.Description); description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", description)
	}
	return b.String()
}

func formatTodoDescription(value string) string {
	return string(markdown.Render(todoDetailLineWidth, todoDescriptionIndent, []byte(value)))
}

// wrapDetailValue wraps long values and aligns continuation lines with the
// value column.
func wrapDetailValue(value string) string {
	wrapped := markdown.Paragraphs(value, todoDetailLineWidth-todoDetailLabelWidth)
	lines := strings.Split(wrapped, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = strings.Repeat(" ", todoDetailLabelWidth) + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func formatDetailTime(value, now time.Time) string {
	return fmt.Sprintf("%s (%s)", value.Local().Format(todoDetailTimeLayout), ui.FormatTimeAgo(value, now))
}

func statusLabel(completed bool) string {
	if completed {
		return "completed"
	}
	return "active"
}
