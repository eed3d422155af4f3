package todo

import (
	"fmt"
	"strings"
	"time"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Rules configures validation. Zero fields use the defaults.
	Rules Rules

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Manager performs validated mutations and queries against a Store.
type Manager struct {
	store *Store
	rules Rules
	now   func() time.Time
}

// NewManager creates a manager over store.
func NewManager(store *Store, opts ManagerOptions) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store: store,
		rules: opts.Rules.withDefaults(),
		now:   opts.Now,
	}
}

// Rules returns the validation rules in effect.
func (m *Manager) Rules() Rules {
	return m.rules
}

// CreateInput describes a new todo.
type CreateInput struct {
	// Text is required.
	Text string

	Description string

	// Priority defaults to PriorityMedium when empty.
	Priority Priority

	// Category defaults to DefaultCategory when blank.
	Category string

	DueDate   *time.Time
	Completed bool
}

// UpdateInput configures fields to update on a todo.
// Nil pointers mean "don't update this field".
type UpdateInput struct {
	Text        *string
	Description *string
	Priority    *Priority
	Category    *string
	DueDate     *time.Time
	Completed   *bool

	// ClearDueDate removes the due date. It cannot be combined with DueDate.
	ClearDueDate bool
}

// ClearResult reports the outcome of ClearCompleted.
type ClearResult struct {
	DeletedCount int    `json:"deletedCount"`
	Remaining    []Todo `json:"remainingTodos"`
}

// BulkResult reports the todos a bulk operation touched.
type BulkResult struct {
	// Affected holds the matched todos, as deleted or as updated.
	Affected []Todo
	Count    int
}

// ListResult is a query view.
type ListResult struct {
	Todos []Todo

	// Total is the size of the whole collection before filtering.
	Total int
}

// Create validates and stores a new todo.
func (m *Manager) Create(in CreateInput) (Todo, error) {
	text := strings.TrimSpace(in.Text)
	description := strings.TrimSpace(in.Description)
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	var due *time.Time
	if in.DueDate != nil {
		day := StartOfDay(*in.DueDate)
		due = &day
	}

	now := m.timestamp()
	candidate := Candidate{
		Text:        &text,
		Description: &description,
		Priority:    &priority,
		Category:    &category,
		DueDate:     due,
	}
	if err := newValidationError(Validate(candidate, false, m.rules, now)); err != nil {
		return Todo{}, err
	}

	return m.store.Append(Todo{
		Text:        text,
		Description: description,
		Completed:   in.Completed,
		Priority:    priority,
		Category:    category,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Update merges the provided fields into the todo with the given ID.
func (m *Manager) Update(id string, in UpdateInput) (Todo, error) {
	if in.ClearDueDate && in.DueDate != nil {
		return Todo{}, fmt.Errorf("%w: cannot both set and clear the due date", ErrInvalidArgument)
	}

	candidate := Candidate{Priority: in.Priority}
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		candidate.Text = &text
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		candidate.Description = &description
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			category = DefaultCategory
		}
		candidate.Category = &category
	}
	if in.DueDate != nil {
		day := StartOfDay(*in.DueDate)
		candidate.DueDate = &day
	}

	var updated Todo
	_, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		now := m.timestamp()

		t := todos[idx]
		if candidate.Text != nil {
			t.Text = *candidate.Text
		}
		if candidate.Description != nil {
			t.Description = *candidate.Description
		}
		if candidate.Priority != nil {
			t.Priority = *candidate.Priority
		}
		if candidate.Category != nil {
			t.Category = *candidate.Category
		}
		if candidate.DueDate != nil {
			t.DueDate = candidate.DueDate
		}
		if in.ClearDueDate {
			t.DueDate = nil
		}
		if in.Completed != nil {
			t.Completed = *in.Completed
		}

		// Lengths are checked on the merged todo. The due date is only
		// checked when provided, so stored overdue todos stay editable.
		merged := Candidate{
			Text:        &t.Text,
			Description: &t.Description,
			Priority:    candidate.Priority,
			Category:    candidate.Category,
			DueDate:     candidate.DueDate,
		}
		if err := newValidationError(Validate(merged, true, m.rules, now)); err != nil {
			return nil, err
		}
		t.UpdatedAt = nextUpdatedAt(t.UpdatedAt, now)

		todos[idx] = t
		updated = t.Clone()
		return todos, nil
	})
	if err != nil {
		return Todo{}, err
	}
	return updated, nil
}

// Toggle flips the completion state of the todo with the given ID.
func (m *Manager) Toggle(id string) (Todo, error) {
	var toggled Todo
	_, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		todos[idx].Completed = !todos[idx].Completed
		todos[idx].UpdatedAt = nextUpdatedAt(todos[idx].UpdatedAt, m.timestamp())
		toggled = todos[idx].Clone()
		return todos, nil
	})
	if err != nil {
		return Todo{}, err
	}
	return toggled, nil
}

// Remove deletes the todo with the given ID and returns it.
func (m *Manager) Remove(id string) (Todo, error) {
	return m.store.Remove(id)
}

// ClearCompleted deletes every completed todo.
func (m *Manager) ClearCompleted() (ClearResult, error) {
	var deleted int
	remaining, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		kept := todos[:0]
		for _, t := range todos {
			if t.Completed {
				deleted++
				continue
			}
			kept = append(kept, t)
		}
		return kept, nil
	})
	if err != nil {
		return ClearResult{}, err
	}
	return ClearResult{DeletedCount: deleted, Remaining: remaining}, nil
}

// Bulk applies action to every todo whose ID is in ids. Unknown IDs are
// skipped. The collection is persisted once.
func (m *Manager) Bulk(action BulkAction, ids []string) (BulkResult, error) {
	if ids == nil {
		return BulkResult{}, fmt.Errorf("%w: ids must be a list", ErrInvalidArgument)
	}
	if !action.IsValid() {
		return BulkResult{}, fmt.Errorf("%w: bulk action %q (valid: delete, complete, incomplete)", ErrInvalidArgument, action)
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	affected := []Todo{}
	_, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		if action == BulkDelete {
			kept := todos[:0]
			for _, t := range todos {
				if wanted[t.ID] {
					affected = append(affected, t.Clone())
					continue
				}
				kept = append(kept, t)
			}
			return kept, nil
		}

		completed := action == BulkComplete
		now := m.timestamp()
		for i := range todos {
			if !wanted[todos[i].ID] {
				continue
			}
			todos[i].Completed = completed
			todos[i].UpdatedAt = nextUpdatedAt(todos[i].UpdatedAt, now)
			affected = append(affected, todos[i].Clone())
		}
		return todos, nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Affected: affected, Count: len(affected)}, nil
}

// ToggleAll marks every todo incomplete when all are complete, and every
// todo complete otherwise. Only todos whose state changes are affected.
func (m *Manager) ToggleAll() (BulkResult, error) {
	affected := []Todo{}
	_, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		allCompleted := len(todos) > 0
		for _, t := range todos {
			if !t.Completed {
				allCompleted = false
				break
			}
		}

		target := !allCompleted
		now := m.timestamp()
		for i := range todos {
			if todos[i].Completed == target {
				continue
			}
			todos[i].Completed = target
			todos[i].UpdatedAt = nextUpdatedAt(todos[i].UpdatedAt, now)
			affected = append(affected, todos[i].Clone())
		}
		return todos, nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Affected: affected, Count: len(affected)}, nil
}

// Move places the todo with the given ID at position in storage order.
// Positions outside the collection are clamped to the nearest end.
func (m *Manager) Move(id string, position int) (Todo, error) {
	var moved Todo
	_, err := m.store.Modify(func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		moved = todos[idx].Clone()

		rest := append(todos[:idx:idx], todos[idx+1:]...)
		position = max(0, min(position, len(rest)))
		reordered := make([]Todo, 0, len(todos))
		reordered = append(reordered, rest[:position]...)
		reordered = append(reordered, moved)
		reordered = append(reordered, rest[position:]...)
		return reordered, nil
	})
	if err != nil {
		return Todo{}, err
	}
	return moved, nil
}

// Get returns the todo with the given ID.
func (m *Manager) Get(id string) (Todo, error) {
	return m.store.Get(id)
}

// List returns the view described by q.
func (m *Manager) List(q Query) (ListResult, error) {
	todos, err := m.store.List()
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Todos: Apply(todos, q, m.now()), Total: len(todos)}, nil
}

// Stats summarizes the whole collection.
func (m *Manager) Stats() (Stats, error) {
	todos, err := m.store.List()
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(todos, m.now()), nil
}

// Count returns the number of stored todos.
func (m *Manager) Count() (int, error) {
	todos, err := m.store.List()
	if err != nil {
		return 0, err
	}
	return len(todos), nil
}

func (m *Manager) timestamp() time.Time {
	return m.now().Round(0)
}

// nextUpdatedAt returns now, or one nanosecond past previous when the clock
// has not advanced beyond it.
func nextUpdatedAt(previous, now time.Time) time.Time {
	if now.After(previous) {
		return now
	}
	return previous.Add(time.Nanosecond)
}
