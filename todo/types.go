// Package todo implements a single-user todo list engine.
//
// A Store owns the authoritative collection and persists it through a
// Backend after every mutation. A Manager performs validated mutations
// against a Store, and the query functions (Apply, Search, Sort and the
// filters) derive ordered views from a collection without changing it.
package todo

import (
	"fmt"

	internalstrings "github.com/amonks/glasstodo/internal/strings"
	"github.com/amonks/glasstodo/internal/validation"
)

// Priority represents how important a todo is.
type Priority string

const (
	// PriorityLow is the least urgent priority.
	PriorityLow Priority = "low"

	// PriorityMedium is the default priority.
	PriorityMedium Priority = "medium"

	// PriorityHigh is the most urgent priority.
	PriorityHigh Priority = "high"
)

// ValidPriorities returns all valid priority values, lowest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank returns the sort rank of a priority: high=3, medium=2, low=1.
// Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority parses a priority name, ignoring case and surrounding space.
func ParsePriority(value string) (Priority, error) {
	priority := Priority(internalstrings.NormalizeLowerTrimSpace(value))
	if !priority.IsValid() {
		return "", fmt.Errorf("%w: priority %q (valid: %s)", ErrInvalidArgument, value, validation.FormatValidValues(ValidPriorities()))
	}
	return priority, nil
}

// DefaultCategory is the category assigned when none is provided.
const DefaultCategory = "general"

// StatusFilter selects todos by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// ValidStatusFilters returns all valid status filter values.
func ValidStatusFilters() []StatusFilter {
	return []StatusFilter{StatusAll, StatusActive, StatusCompleted}
}

// ParseStatusFilter parses a status filter. Blank input means StatusAll and
// "pending" is accepted as an alias for StatusActive.
func ParseStatusFilter(value string) (StatusFilter, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	switch normalized {
	case "":
		return StatusAll, nil
	case "pending":
		return StatusActive, nil
	}
	for _, valid := range ValidStatusFilters() {
		if StatusFilter(normalized) == valid {
			return valid, nil
		}
	}
	return "", fmt.Errorf("%w: status filter %q (valid: %s)", ErrInvalidArgument, value, validation.FormatValidValues(ValidStatusFilters()))
}

// PriorityFilter selects todos by priority. PriorityAny keeps every todo.
type PriorityFilter string

// PriorityAny matches every priority.
const PriorityAny PriorityFilter = "all"

// ParsePriorityFilter parses a priority filter. Blank input means PriorityAny.
func ParsePriorityFilter(value string) (PriorityFilter, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	if normalized == "" || PriorityFilter(normalized) == PriorityAny {
		return PriorityAny, nil
	}
	priority, err := ParsePriority(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: priority filter %q (valid: all, %s)", ErrInvalidArgument, value, validation.FormatValidValues(ValidPriorities()))
	}
	return PriorityFilter(priority), nil
}

// DueWindow selects todos by due date relative to now.
type DueWindow string

const (
	DueAny     DueWindow = "all"
	DueToday   DueWindow = "today"
	DueOverdue DueWindow = "overdue"
)

// ValidDueWindows returns all valid due window values.
func ValidDueWindows() []DueWindow {
	return []DueWindow{DueAny, DueToday, DueOverdue}
}

// ParseDueWindow parses a due window. Blank input means DueAny.
func ParseDueWindow(value string) (DueWindow, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	if normalized == "" {
		return DueAny, nil
	}
	for _, valid := range ValidDueWindows() {
		if DueWindow(normalized) == valid {
			return valid, nil
		}
	}
	return "", fmt.Errorf("%w: due window %q (valid: %s)", ErrInvalidArgument, value, validation.FormatValidValues(ValidDueWindows()))
}

// SortKey selects the presentation order of a view.
type SortKey string

const (
	// SortNone keeps storage order.
	SortNone SortKey = "none"

	// SortDefault orders incomplete first, then by priority, due date and age.
	SortDefault SortKey = "default"

	// SortPriority orders by descending priority, stable within ties.
	SortPriority SortKey = "priority"

	// SortDate orders newest first.
	SortDate SortKey = "date"

	// SortAlphabetical orders by text using locale-aware collation.
	SortAlphabetical SortKey = "alphabetical"
)

// ValidSortKeys returns all valid sort keys.
func ValidSortKeys() []SortKey {
	return []SortKey{SortNone, SortDefault, SortPriority, SortDate, SortAlphabetical}
}

// ParseSortKey parses a sort key. Blank input means SortNone.
func ParseSortKey(value string) (SortKey, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	if normalized == "" {
		return SortNone, nil
	}
	for _, valid := range ValidSortKeys() {
		if SortKey(normalized) == valid {
			return valid, nil
		}
	}
	return "", fmt.Errorf("%w: sort key %q (valid: %s)", ErrInvalidArgument, value, validation.FormatValidValues(ValidSortKeys()))
}

// BulkAction names an operation applied to many todos at once.
type BulkAction string

const (
	BulkDelete     BulkAction = "delete"
	BulkComplete   BulkAction = "complete"
	BulkIncomplete BulkAction = "incomplete"
)

// ValidBulkActions returns all valid bulk actions.
func ValidBulkActions() []BulkAction {
	return []BulkAction{BulkDelete, BulkComplete, BulkIncomplete}
}

// IsValid returns true if the action is a known valid value.
func (a BulkAction) IsValid() bool {
	for _, valid := range ValidBulkActions() {
		if a == valid {
			return true
		}
	}
	return false
}
