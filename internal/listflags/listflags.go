// Package listflags registers the query flags shared by list-style commands.
package listflags

import (
	"strings"

	"github.com/amonks/glasstodo/todo"
	"github.com/spf13/cobra"
)

// Query holds raw query flag values.
type Query struct {
	Search   string
	Filter   string
	Priority string
	Due      string
	Sort     string
}

// AddQueryFlags adds --search, --filter, --priority, --due and --sort.
func AddQueryFlags(cmd *cobra.Command, target *Query) {
	cmd.Flags().StringVarP(&target.Search, "search", "s", "", "Search text, description and category")
	cmd.Flags().StringVar(&target.Filter, "filter", "", "Filter by status (all, active, completed)")
	cmd.Flags().StringVarP(&target.Priority, "priority", "p", "", "Filter by priority (all, low, medium, high)")
	cmd.Flags().StringVar(&target.Due, "due", "", "Filter by due date (all, today, overdue)")
	cmd.Flags().StringVar(&target.Sort, "sort", string(todo.SortDefault), "Sort order (default, priority, date, alphabetical, none)")
}

// Parse validates the flag values. A blank sort means the default order.
func (q Query) Parse() (todo.Query, error) {
	sortKey := q.Sort
	if strings.TrimSpace(sortKey) == "" {
		sortKey = string(todo.SortDefault)
	}
	return todo.ParseQuery(q.Search, q.Filter, q.Priority, q.Due, sortKey)
}
