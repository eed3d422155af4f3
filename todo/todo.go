package todo

import (
	"fmt"
	"strings"
	"time"
)

// Todo represents a single todo record.
type Todo struct {
	// ID is a unique identifier assigned by the Store (8-char base32).
	ID string `json:"id"`

	// Text is the short summary of the todo.
	Text string `json:"text"`

	// Description provides additional context about the todo.
	Description string `json:"description"`

	// Completed reports whether the todo is done.
	Completed bool `json:"completed"`

	// Priority is the importance level.
	Priority Priority `json:"priority"`

	// Category is a free-form grouping label.
	Category string `json:"category"`

	// DueDate is the calendar day the todo is due, at local midnight.
	DueDate *time.Time `json:"dueDate"`

	// CreatedAt is when the todo was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the todo was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the todo.
func (t Todo) Clone() Todo {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// IsOverdue reports whether the todo is incomplete and due on a calendar
// day before the day of now.
func (t Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && StartOfDay(*t.DueDate).Before(StartOfDay(now))
}

// IsDueOn reports whether the todo is due on the calendar day of now.
func (t Todo) IsDueOn(now time.Time) bool {
	return t.DueDate != nil && sameDay(*t.DueDate, now)
}

func cloneTodos(todos []Todo) []Todo {
	if todos == nil {
		return []Todo{}
	}
	cloned := make([]Todo, len(todos))
	for i := range todos {
		cloned[i] = todos[i].Clone()
	}
	return cloned
}

func indexOf(todos []Todo, id string) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}

const dueDateLayout = "2006-01-02"

// ParseDueDate parses a due date given as YYYY-MM-DD or RFC 3339.
// The result is midnight, local time, on the calendar day as written.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.ParseInLocation(dueDateLayout, value, time.Local); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return StartOfDay(parsed), nil
}

// FormatDueDate formats a due date as YYYY-MM-DD, or "" when nil.
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dueDateLayout)
}

// StartOfDay returns local midnight on the calendar day of t as written.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
