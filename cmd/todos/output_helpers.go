package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/amonks/glasstodo/internal/ui"
	"github.com/amonks/glasstodo/todo"
	"github.com/spf13/cobra"
)

func encodeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// todoHighlighter highlights the unique prefix of each ID.
func todoHighlighter(prefixLengths map[string]int) func(string) string {
	return func(id string) string {
		return ui.HighlightID(id, ui.PrefixLength(prefixLengths, id))
	}
}

func highlighterForEngine(cmd *cobra.Command, eng engine) (func(string) string, error) {
	all, err := eng.List(cmd.Context(), todo.Query{})
	if err != nil {
		return nil, err
	}
	return todoHighlighter(todo.NewIDIndex(all.Todos).PrefixLengths()), nil
}

func emptyListMessage(q todo.Query) string {
	filtered := strings.TrimSpace(q.Search) != "" ||
		(q.Status != "" && q.Status != todo.StatusAll) ||
		(q.Priority != "" && q.Priority != todo.PriorityAny) ||
		(q.Due != "" && q.Due != todo.DueAny)
	if filtered {
		return "No todos match the given filters."
	}
	return "No todos found."
}
