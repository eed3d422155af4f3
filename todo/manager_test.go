package todo

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestManager_CreateRoundTrip(t *testing.T) {
	m, _, _ := newTestManager(t)

	created := mustCreate(t, m, CreateInput{
		Text:        "  Buy milk  ",
		Description: " two liters ",
		Priority:    PriorityHigh,
		Category:    "shopping",
		DueDate:     datePtr(2024, 3, 20),
	})

	if created.Text != "Buy milk" || created.Description != "two liters" {
		t.Fatalf("expected trimmed fields, got %+v", created)
	}
	if created.Completed {
		t.Fatalf("expected new todo to be incomplete")
	}
	if !created.CreatedAt.Equal(testTime()) || !created.UpdatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected timestamps %v %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := m.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != created.Text || got.Priority != PriorityHigh || got.Category != "shopping" || FormatDueDate(got.DueDate) != "2024-03-20" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestManager_CreateDefaults(t *testing.T) {
	m, _, _ := newTestManager(t)

	created := mustCreate(t, m, CreateInput{Text: "plain"})
	if created.Priority != PriorityMedium {
		t.Fatalf("expected medium priority, got %q", created.Priority)
	}
	if created.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", created.Category)
	}
	if created.DueDate != nil {
		t.Fatalf("expected no due date")
	}
}

func TestManager_CreateEmptyTextFails(t *testing.T) {
	m, store, _ := newTestManager(t)

	_, err := m.Create(CreateInput{Text: ""})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	problems := ValidationProblems(err)
	if len(problems) == 0 || !strings.Contains(problems[0], "required") {
		t.Fatalf("expected required message, got %v", problems)
	}

	todos, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("expected empty store, got %d todos", len(todos))
	}
}

func TestManager_CreateRejectsInvalidPriority(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Create(CreateInput{Text: "x", Priority: "urgent"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestManager_CreateHonorsRules(t *testing.T) {
	clock := &fixedClock{now: testTime()}
	store := NewStore(NewMemoryBackend(), StoreOptions{Now: clock.Now})
	m := NewManager(store, ManagerOptions{
		Rules: Rules{MinTextLength: 3, RejectPastDueDates: true},
		Now:   clock.Now,
	})

	_, err := m.Create(CreateInput{Text: "ab", DueDate: datePtr(2024, 1, 1)})
	if got := len(ValidationProblems(err)); got != 2 {
		t.Fatalf("expected 2 problems, got %v", err)
	}
	if m.Rules().MaxTextLength != DefaultMaxTextLength {
		t.Fatalf("expected default max text length, got %d", m.Rules().MaxTextLength)
	}
}

func TestManager_CreatePrepends(t *testing.T) {
	m, _, _ := newTestManager(t)

	first := mustCreate(t, m, CreateInput{Text: "first"})
	second := mustCreate(t, m, CreateInput{Text: "second"})

	result, err := m.List(Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := todoIDs(result.Todos), []string{second.ID, first.ID}; !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestManager_UpdateMergesProvidedFields(t *testing.T) {
	m, _, clock := newTestManager(t)
	created := mustCreate(t, m, CreateInput{Text: "original", Description: "keep", Category: "work", DueDate: datePtr(2024, 4, 1)})

	clock.Advance(time.Minute)
	updated, err := m.Update(created.ID, UpdateInput{
		Text:      stringPtr(" renamed "),
		Priority:  priorityPtr(PriorityLow),
		Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Text != "renamed" || updated.Priority != PriorityLow || !updated.Completed {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.Description != "keep" || updated.Category != "work" || FormatDueDate(updated.DueDate) != "2024-04-01" {
		t.Fatalf("unprovided fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt did not advance")
	}
}

func TestManager_UpdateClearsDueDate(t *testing.T) {
	m, _, _ := newTestManager(t)
	created := mustCreate(t, m, CreateInput{Text: "dated", DueDate: datePtr(2024, 4, 1)})

	updated, err := m.Update(created.ID, UpdateInput{ClearDueDate: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared, got %v", updated.DueDate)
	}

	_, err = m.Update(created.ID, UpdateInput{ClearDueDate: true, DueDate: datePtr(2024, 4, 2)})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestManager_UpdateMissingLeavesStoreUnchanged(t *testing.T) {
	m, store, _ := newTestManager(t)
	mustCreate(t, m, CreateInput{Text: "only"})
	before, _ := store.List()

	_, err := m.Update("missing-id", UpdateInput{Text: stringPtr("x")})
	if !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}

	after, _ := store.List()
	if len(after) != 1 || after[0].Text != before[0].Text || !after[0].UpdatedAt.Equal(before[0].UpdatedAt) {
		t.Fatalf("store changed: %+v", after)
	}
}

func TestManager_UpdateValidationFailureLeavesStoreUnchanged(t *testing.T) {
	m, store, _ := newTestManager(t)
	created := mustCreate(t, m, CreateInput{Text: "valid"})

	_, err := m.Update(created.ID, UpdateInput{Text: stringPtr("   ")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, _ := store.Get(created.ID)
	if got.Text != "valid" {
		t.Fatalf("text changed to %q", got.Text)
	}
}

func TestManager_UpdateValidatesMergedTodo(t *testing.T) {
	clock := &fixedClock{now: testTime()}
	stored := Todo{
		ID:        "long0001",
		Text:      strings.Repeat("x", 200),
		Priority:  PriorityMedium,
		Category:  DefaultCategory,
		DueDate:   datePtr(2024, 1, 1),
		CreatedAt: testTime(),
		UpdatedAt: testTime(),
	}
	store := NewStore(NewMemoryBackend(stored), StoreOptions{Now: clock.Now})
	m := NewManager(store, ManagerOptions{
		Rules: Rules{MaxTextLength: 100, RejectPastDueDates: true},
		Now:   clock.Now,
	})

	_, err := m.Update(stored.ID, UpdateInput{Priority: priorityPtr(PriorityHigh)})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for stored text, got %v", err)
	}
	if problems := ValidationProblems(err); len(problems) != 1 || problems[0] != "Todo text must be at most 100 characters" {
		t.Fatalf("unexpected problems %v", problems)
	}
	got, _ := store.Get(stored.ID)
	if got.Priority != PriorityMedium {
		t.Fatalf("priority changed to %q", got.Priority)
	}

	updated, err := m.Update(stored.ID, UpdateInput{Text: stringPtr("short")})
	if err != nil {
		t.Fatalf("expected shortened text to pass despite the stored past due date, got %v", err)
	}
	if updated.Text != "short" || FormatDueDate(updated.DueDate) != "2024-01-01" {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestManager_ToggleTwiceRestores(t *testing.T) {
	m, _, _ := newTestManager(t)
	created := mustCreate(t, m, CreateInput{Text: "flip"})

	// The clock never advances, so each update must still move updatedAt forward.
	once, err := m.Toggle(created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	twice, err := m.Toggle(created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if !once.Completed || twice.Completed {
		t.Fatalf("unexpected states %v then %v", once.Completed, twice.Completed)
	}
	if !once.UpdatedAt.After(created.UpdatedAt) || !twice.UpdatedAt.After(once.UpdatedAt) {
		t.Fatalf("updatedAt not strictly increasing: %v %v %v", created.UpdatedAt, once.UpdatedAt, twice.UpdatedAt)
	}

	if _, err := m.Toggle("missing"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestManager_Remove(t *testing.T) {
	m, _, _ := newTestManager(t)
	created := mustCreate(t, m, CreateInput{Text: "gone"})

	removed, err := m.Remove(created.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("removed %q, expected %q", removed.ID, created.ID)
	}
	if _, err := m.Remove(created.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestManager_ClearCompleted(t *testing.T) {
	m, _, _ := newTestManager(t, Todo{ID: "done", Text: "done", Completed: true}, Todo{ID: "open", Text: "open"})

	result, err := m.ClearCompleted()
	if err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if result.DeletedCount != 1 || len(result.Remaining) != 1 || result.Remaining[0].ID != "open" {
		t.Fatalf("unexpected result %+v", result)
	}

	remaining, _ := m.List(Query{})
	if got := todoIDs(remaining.Todos); !equalStrings(got, []string{"open"}) {
		t.Fatalf("unexpected remaining %v", got)
	}
}

func TestManager_BulkSkipsUnknownIDs(t *testing.T) {
	m, _, _ := newTestManager(t, queryFixture()...)

	result, err := m.Bulk(BulkComplete, []string{"a", "c", "missing"})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 affected, got %d", result.Count)
	}
	for _, todo := range result.Affected {
		if !todo.Completed {
			t.Fatalf("todo %s not completed", todo.ID)
		}
	}

	result, err = m.Bulk(BulkDelete, []string{"a", "b", "nope"})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 deleted, got %d", result.Count)
	}

	list, _ := m.List(Query{})
	if got, want := todoIDs(list.Todos), []string{"c", "d", "e"}; !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	result, err = m.Bulk(BulkIncomplete, []string{"c", "e"})
	if err != nil {
		t.Fatalf("bulk incomplete: %v", err)
	}
	if result.Count != 2 || result.Affected[0].Completed || result.Affected[1].Completed {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestManager_BulkRejectsBadInput(t *testing.T) {
	m, _, _ := newTestManager(t, queryFixture()...)

	if _, err := m.Bulk(BulkDelete, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil ids: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := m.Bulk("archive", []string{"a"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown action: expected ErrInvalidArgument, got %v", err)
	}

	result, err := m.Bulk(BulkDelete, []string{})
	if err != nil || result.Count != 0 {
		t.Fatalf("empty ids: expected no-op, got %+v %v", result, err)
	}
}

func TestManager_BulkPersistsOnce(t *testing.T) {
	backend := &countingBackend{Backend: NewMemoryBackend(queryFixture()...)}
	m := NewManager(NewStore(backend, StoreOptions{}), ManagerOptions{})

	if _, err := m.Bulk(BulkComplete, []string{"a", "c", "d"}); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if backend.saves != 1 {
		t.Fatalf("expected 1 save, got %d", backend.saves)
	}
}

func TestManager_ToggleAll(t *testing.T) {
	m, _, _ := newTestManager(t, queryFixture()...)

	result, err := m.ToggleAll()
	if err != nil {
		t.Fatalf("toggle all: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("expected 3 newly completed, got %d", result.Count)
	}

	result, err = m.ToggleAll()
	if err != nil {
		t.Fatalf("toggle all: %v", err)
	}
	if result.Count != 5 {
		t.Fatalf("expected 5 reopened, got %d", result.Count)
	}
	stats, _ := m.Stats()
	if stats.Completed != 0 {
		t.Fatalf("expected none completed, got %d", stats.Completed)
	}
}

func TestManager_Move(t *testing.T) {
	m, _, _ := newTestManager(t, queryFixture()...)

	tests := []struct {
		id       string
		position int
		want     []string
	}{
		{"a", 2, []string{"b", "c", "a", "d", "e"}},
		{"e", 0, []string{"e", "b", "c", "a", "d"}},
		{"b", 99, []string{"e", "c", "a", "d", "b"}},
		{"a", -5, []string{"a", "e", "c", "d", "b"}},
	}
	for _, tt := range tests {
		moved, err := m.Move(tt.id, tt.position)
		if err != nil {
			t.Fatalf("move %s: %v", tt.id, err)
		}
		if moved.ID != tt.id {
			t.Fatalf("moved %s, expected %s", moved.ID, tt.id)
		}
		list, _ := m.List(Query{})
		if got := todoIDs(list.Todos); !equalStrings(got, tt.want) {
			t.Fatalf("move %s to %d: expected %v, got %v", tt.id, tt.position, tt.want, got)
		}
	}

	if _, err := m.Move("missing", 0); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestManager_ListReportsTotal(t *testing.T) {
	m, _, _ := newTestManager(t, queryFixture()...)

	result, err := m.List(Query{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Todos) != 2 || result.Total != 5 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(result.Todos), result.Total)
	}
}

type countingBackend struct {
	Backend
	saves int
}

func (b *countingBackend) Save(todos []Todo) error {
	b.saves++
	return b.Backend.Save(todos)
}
