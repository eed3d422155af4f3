package listflags

import (
	"errors"
	"testing"
	"time"

	"github.com/amonks/glasstodo/todo"
	"github.com/spf13/cobra"
)

func TestAddQueryFlags(t *testing.T) {
	var query Query
	cmd := &cobra.Command{Use: "list"}
	AddQueryFlags(cmd, &query)

	if err := cmd.ParseFlags([]string{"-s", "milk", "--filter", "pending", "-p", "HIGH", "--due", "today", "--sort", "priority"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := query.Parse()
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	want := todo.Query{
		Search:   "milk",
		Status:   todo.StatusActive,
		Priority: todo.PriorityFilter(todo.PriorityHigh),
		Due:      todo.DueToday,
		Sort:     todo.SortPriority,
	}
	if got != want {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseRejectsUnknownValues(t *testing.T) {
	_, err := Query{Due: "someday"}.Parse()
	if !errors.Is(err, todo.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestParseDefaultsToDefaultSort(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  todo.SortKey
	}{
		{name: "flag default", args: nil, want: todo.SortDefault},
		{name: "explicit none", args: []string{"--sort", "none"}, want: todo.SortNone},
		{name: "blank value", args: []string{"--sort", ""}, want: todo.SortDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query Query
			cmd := &cobra.Command{Use: "list"}
			AddQueryFlags(cmd, &query)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			got, err := query.Parse()
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			if got.Sort != tt.want {
				t.Fatalf("Sort = %q, want %q", got.Sort, tt.want)
			}
		})
	}

	got, err := Query{}.Parse()
	if err != nil {
		t.Fatalf("parse zero query: %v", err)
	}
	if got.Sort != todo.SortDefault {
		t.Fatalf("zero Query sort = %q, want %q", got.Sort, todo.SortDefault)
	}
}

func TestDefaultSortPutsHighPriorityFirst(t *testing.T) {
	query, err := Query{}.Parse()
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	todos := []todo.Todo{
		{ID: "a", Text: "newer low", Priority: todo.PriorityLow, CreatedAt: now},
		{ID: "b", Text: "older high", Priority: todo.PriorityHigh, CreatedAt: now.Add(-time.Hour)},
	}

	got := todo.Apply(todos, query, now)

	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
