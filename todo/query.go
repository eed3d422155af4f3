package todo

import (
	"sort"
	"time"

	internalstrings "github.com/amonks/glasstodo/internal/strings"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Query describes a derived view of the collection.
type Query struct {
	// Search keeps todos whose text, description or category contains the
	// term, ignoring case. Blank keeps everything.
	Search string

	Status   StatusFilter
	Priority PriorityFilter
	Due      DueWindow
	Sort     SortKey
}

// ParseQuery builds a Query from raw parameter values.
func ParseQuery(search, status, priority, due, sortKey string) (Query, error) {
	q := Query{Search: search}
	var err error
	if q.Status, err = ParseStatusFilter(status); err != nil {
		return Query{}, err
	}
	if q.Priority, err = ParsePriorityFilter(priority); err != nil {
		return Query{}, err
	}
	if q.Due, err = ParseDueWindow(due); err != nil {
		return Query{}, err
	}
	if q.Sort, err = ParseSortKey(sortKey); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Apply searches, filters by status, priority and due window, then sorts.
// The input slice is never modified.
func Apply(todos []Todo, q Query, now time.Time) []Todo {
	view := Search(todos, q.Search)
	view = FilterByStatus(view, q.Status)
	view = FilterByPriority(view, q.Priority)
	view = FilterByDueWindow(view, q.Due, now)
	return Sort(view, q.Sort)
}

// Search returns the todos whose text, description or category contains
// term, ignoring case.
func Search(todos []Todo, term string) []Todo {
	if internalstrings.IsBlank(term) {
		return cloneTodos(todos)
	}
	return filter(todos, func(t Todo) bool {
		return internalstrings.ContainsFold(t.Text, term) ||
			internalstrings.ContainsFold(t.Description, term) ||
			internalstrings.ContainsFold(t.Category, term)
	})
}

// FilterByStatus returns the todos matching the status filter.
func FilterByStatus(todos []Todo, status StatusFilter) []Todo {
	switch status {
	case StatusActive:
		return filter(todos, func(t Todo) bool { return !t.Completed })
	case StatusCompleted:
		return filter(todos, func(t Todo) bool { return t.Completed })
	default:
		return cloneTodos(todos)
	}
}

// FilterByPriority returns the todos with the given priority.
func FilterByPriority(todos []Todo, priority PriorityFilter) []Todo {
	if priority == "" || priority == PriorityAny {
		return cloneTodos(todos)
	}
	return filter(todos, func(t Todo) bool { return PriorityFilter(t.Priority) == priority })
}

// FilterByDueWindow returns the todos due today or overdue relative to now.
func FilterByDueWindow(todos []Todo, window DueWindow, now time.Time) []Todo {
	switch window {
	case DueToday:
		return filter(todos, func(t Todo) bool { return t.IsDueOn(now) })
	case DueOverdue:
		return filter(todos, func(t Todo) bool { return t.IsOverdue(now) })
	default:
		return cloneTodos(todos)
	}
}

// Sort returns a sorted copy of todos. Ties keep their input order.
func Sort(todos []Todo, key SortKey) []Todo {
	sorted := cloneTodos(todos)
	switch key {
	case SortPriority:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Priority.Rank() > sorted[j].Priority.Rank()
		})
	case SortDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortAlphabetical:
		collator := collate.New(language.Und)
		sort.SliceStable(sorted, func(i, j int) bool {
			return collator.CompareString(sorted[i].Text, sorted[j].Text) < 0
		})
	case SortDefault:
		sort.SliceStable(sorted, func(i, j int) bool {
			return defaultLess(sorted[i], sorted[j])
		})
	}
	return sorted
}

// defaultLess orders incomplete before complete, then higher priority,
// then earlier due date with undated last, then newest first.
func defaultLess(a, b Todo) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() > b.Priority.Rank()
	}
	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func filter(todos []Todo, keep func(Todo) bool) []Todo {
	result := []Todo{}
	for _, t := range todos {
		if keep(t) {
			result = append(result, t.Clone())
		}
	}
	return result
}
