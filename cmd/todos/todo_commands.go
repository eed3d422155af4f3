package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/glasstodo/internal/listflags"
	"github.com/amonks/glasstodo/internal/validation"
	"github.com/amonks/glasstodo/todo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// list
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List todos",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listQuery listflags.Query
	listJSON  bool
)

// show
var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about todos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var showJSON bool

// add
var addCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add a todo",
	Long: `Add a todo. Arguments are joined with spaces to form the text.

Use --description - to read the description from stdin.`,
	Aliases: []string{"create"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAdd,
}

var (
	addDescription string
	addPriority    string
	addCategory    string
	addDue         string
	addCompleted   bool
)

// update
var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a todo",
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE:    runUpdate,
}

var (
	updateText        string
	updateDescription string
	updatePriority    string
	updateCategory    string
	updateDue         string
	updateClearDue    bool
	updateCompleted   bool
	updateActive      bool
)

// toggle
var toggleCmd = &cobra.Command{
	Use:   "toggle <id>...",
	Short: "Flip the completed state of todos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runToggle,
}

// delete
var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete todos",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

// clear-completed
var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete every completed todo",
	Args:  cobra.NoArgs,
	RunE:  runClearCompleted,
}

var clearCompletedYes bool

// bulk
var bulkCmd = &cobra.Command{
	Use:   "bulk <delete|complete|incomplete> <id>...",
	Short: "Apply one action to several todos at once",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runBulk,
}

// toggle-all
var toggleAllCmd = &cobra.Command{
	Use:   "toggle-all",
	Short: "Complete every todo, or reopen them all if all are complete",
	Args:  cobra.NoArgs,
	RunE:  runToggleAll,
}

// move
var moveCmd = &cobra.Command{
	Use:   "move <id> <position>",
	Short: "Move a todo to a zero-based position in the stored order",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

// stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(listCmd, showCmd, addCmd, updateCmd, toggleCmd, deleteCmd,
		clearCompletedCmd, bulkCmd, toggleAllCmd, moveCmd, statsCmd)

	// list flags
	listflags.AddQueryFlags(listCmd, &listQuery)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	// show flags
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	// add flags
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (low, medium, high)")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&addCompleted, "completed", false, "Create the todo already completed")

	// update flags
	updateCmd.Flags().StringVar(&updateText, "text", "", "New text")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority (low, medium, high)")
	updateCmd.Flags().StringVarP(&updateCategory, "category", "c", "", "New category")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "New due date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "Remove the due date")
	updateCmd.Flags().BoolVar(&updateCompleted, "completed", false, "Mark completed")
	updateCmd.Flags().BoolVar(&updateActive, "active", false, "Mark not completed")
	updateCmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	updateCmd.MarkFlagsMutuallyExclusive("completed", "active")
	addTodoFlagAliases(addCmd, updateCmd)

	// clear-completed flags
	clearCompletedCmd.Flags().BoolVarP(&clearCompletedYes, "yes", "y", false, "Do not ask for confirmation")

	// stats flags
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	query, err := listQuery.Parse()
	if err != nil {
		return err
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	result, err := eng.List(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return encodeJSON(out, result.Todos)
	}

	if len(result.Todos) == 0 {
		fmt.Fprintln(out, emptyListMessage(query))
		return nil
	}

	all, err := eng.List(cmd.Context(), todo.Query{})
	if err != nil {
		return err
	}
	index := todo.NewIDIndex(all.Todos)
	fmt.Fprint(out, formatTodoTable(result.Todos, index.PrefixLengths(), time.Now()))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, index, err := resolveTodoIDs(cmd.Context(), eng, args)
	if err != nil {
		return err
	}

	todos := make([]todo.Todo, 0, len(ids))
	for _, id := range ids {
		item, err := eng.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		todos = append(todos, item)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return encodeJSON(out, todos)
	}

	highlight := todoHighlighter(index.PrefixLengths())
	now := time.Now()
	for i, item := range todos {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprint(out, formatTodoDetail(item, highlight, now))
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := resolveDescriptionFlag(cmd, &addDescription, os.Stdin); err != nil {
		return err
	}

	in := todo.CreateInput{
		Text:        strings.Join(args, " "),
		Description: addDescription,
		Category:    addCategory,
		Completed:   addCompleted,
	}
	if cmd.Flags().Changed("priority") {
		priority, err := todo.ParsePriority(addPriority)
		if err != nil {
			return err
		}
		in.Priority = priority
	}
	if cmd.Flags().Changed("due") {
		due, err := todo.ParseDueDate(addDue)
		if err != nil {
			return err
		}
		in.DueDate = &due
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	created, err := eng.Create(cmd.Context(), in)
	if err != nil {
		return err
	}

	highlight, err := highlighterForEngine(cmd, eng)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created todo %s: %s\n", highlight(created.ID), created.Text)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if !hasChangedFlags(cmd, "text", "description", "priority", "category", "due", "clear-due", "completed", "active") {
		return fmt.Errorf("at least one update flag is required")
	}
	if err := resolveDescriptionFlag(cmd, &updateDescription, os.Stdin); err != nil {
		return err
	}

	in := todo.UpdateInput{ClearDueDate: updateClearDue}
	if cmd.Flags().Changed("text") {
		in.Text = &updateText
	}
	if cmd.Flags().Changed("description") {
		in.Description = &updateDescription
	}
	if cmd.Flags().Changed("priority") {
		priority, err := todo.ParsePriority(updatePriority)
		if err != nil {
			return err
		}
		in.Priority = &priority
	}
	if cmd.Flags().Changed("category") {
		in.Category = &updateCategory
	}
	if cmd.Flags().Changed("due") {
		due, err := todo.ParseDueDate(updateDue)
		if err != nil {
			return err
		}
		in.DueDate = &due
	}
	if cmd.Flags().Changed("completed") || cmd.Flags().Changed("active") {
		completed := updateCompleted && !updateActive
		in.Completed = &completed
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, index, err := resolveTodoIDs(cmd.Context(), eng, args)
	if err != nil {
		return err
	}

	updated, err := eng.Update(cmd.Context(), ids[0], in)
	if err != nil {
		return err
	}

	highlight := todoHighlighter(index.PrefixLengths())
	fmt.Fprintf(cmd.OutOrStdout(), "Updated todo %s: %s\n", highlight(updated.ID), updated.Text)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, index, err := resolveTodoIDs(cmd.Context(), eng, args)
	if err != nil {
		return err
	}

	highlight := todoHighlighter(index.PrefixLengths())
	out := cmd.OutOrStdout()
	for _, id := range ids {
		toggled, err := eng.Toggle(cmd.Context(), id)
		if err != nil {
			return err
		}
		verb := "Reopened"
		if toggled.Completed {
			verb = "Completed"
		}
		fmt.Fprintf(out, "%s todo %s: %s\n", verb, highlight(toggled.ID), toggled.Text)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, index, err := resolveTodoIDs(cmd.Context(), eng, args)
	if err != nil {
		return err
	}

	highlight := todoHighlighter(index.PrefixLengths())
	out := cmd.OutOrStdout()
	for _, id := range ids {
		removed, err := eng.Remove(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted todo %s: %s\n", highlight(removed.ID), removed.Text)
	}
	return nil
}

func runClearCompleted(cmd *cobra.Command, args []string) error {
	if !clearCompletedYes && term.IsTerminal(int(os.Stdin.Fd())) {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all completed todos?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	result, err := eng.ClearCompleted(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed todos (%d remaining)\n", result.DeletedCount, len(result.Remaining))
	return nil
}

func runBulk(cmd *cobra.Command, args []string) error {
	action := todo.BulkAction(strings.ToLower(strings.TrimSpace(args[0])))
	if !action.IsValid() {
		return fmt.Errorf("%w: unknown bulk action %q: must be %s", todo.ErrInvalidArgument, args[0],
			validation.FormatAlternatives(todo.ValidBulkActions()))
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, _, err := resolveTodoIDs(cmd.Context(), eng, args[1:])
	if err != nil {
		return err
	}

	result, err := eng.Bulk(cmd.Context(), action, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bulk %s: %s\n", action, pluralTodos(result.Count))
	return nil
}

func runToggleAll(cmd *cobra.Command, args []string) error {
	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	result, err := eng.ToggleAll(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Toggled %s\n", pluralTodos(result.Count))
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: position must be an integer, got %q", todo.ErrInvalidArgument, args[1])
	}

	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	ids, index, err := resolveTodoIDs(cmd.Context(), eng, args[:1])
	if err != nil {
		return err
	}

	moved, err := eng.Move(cmd.Context(), ids[0], position)
	if err != nil {
		return err
	}

	all, err := eng.List(cmd.Context(), todo.Query{})
	if err != nil {
		return err
	}
	highlight := todoHighlighter(index.PrefixLengths())
	fmt.Fprintf(cmd.OutOrStdout(), "Moved todo %s to position %d\n", highlight(moved.ID), positionOf(all.Todos, moved.ID))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, release, err := openEngine()
	if err != nil {
		return err
	}
	defer release()

	stats, err := eng.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		return encodeJSON(out, stats)
	}
	fmt.Fprint(out, formatStats(stats))
	return nil
}

func hasChangedFlags(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func resolveDescriptionFlag(cmd *cobra.Command, description *string, reader io.Reader) error {
	if !cmd.Flags().Changed("description") || *description != "-" {
		return nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read description from stdin: %w", err)
	}
	*description = strings.TrimRight(string(data), "\r\n")
	return nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func positionOf(todos []todo.Todo, id string) int {
	for i, item := range todos {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func pluralTodos(count int) string {
	if count == 1 {
		return "1 todo"
	}
	return fmt.Sprintf("%d todos", count)
}
