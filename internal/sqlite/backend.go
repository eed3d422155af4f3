// Package sqlite persists todo collections in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amonks/glasstodo/todo"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

// Backend implements todo.Backend on a SQLite database.
// Storage order is kept in the position column.
type Backend struct {
	db *sqlx.DB
}

type todoRow struct {
	ID          string         `db:"id"`
	Position    int            `db:"position"`
	Text        string         `db:"text"`
	Description string         `db:"description"`
	Completed   bool           `db:"completed"`
	Priority    string         `db:"priority"`
	Category    string         `db:"category"`
	DueDate     sql.NullString `db:"due_date"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

// Open opens (or creates) the database at path and applies pending
// schema migrations.
func Open(path string) (*Backend, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers within the process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	b := &Backend{db: db}
	if err := b.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return b, nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// SchemaVersion returns the applied schema version.
func (b *Backend) SchemaVersion() (int, error) {
	var version int
	if err := b.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func (b *Backend) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := b.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if currentVersion, err = b.SchemaVersion(); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := b.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Load returns every todo ordered by position.
func (b *Backend) Load() ([]todo.Todo, error) {
	var rows []todoRow
	err := b.db.SelectContext(context.Background(), &rows, `
		SELECT id, position, text, description, completed, priority,
			category, due_date, created_at, updated_at
		FROM todos
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	todos := make([]todo.Todo, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTodo()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Save replaces the table contents with todos in one transaction.
func (b *Backend) Save(todos []todo.Todo) error {
	ctx := context.Background()
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		return fmt.Errorf("clearing todos: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO todos (
			id, position, text, description, completed, priority,
			category, due_date, created_at, updated_at
		) VALUES (
			:id, :position, :text, :description, :completed, :priority,
			:category, :due_date, :created_at, :updated_at
		)`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, t := range todos {
		if _, err := stmt.ExecContext(ctx, rowFromTodo(i, t)); err != nil {
			return fmt.Errorf("inserting todo %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func rowFromTodo(position int, t todo.Todo) todoRow {
	row := todoRow{
		ID:          t.ID,
		Position:    position,
		Text:        t.Text,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Category:    t.Category,
		CreatedAt:   t.CreatedAt.Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.Format(timestampLayout),
	}
	if t.DueDate != nil {
		row.DueDate = sql.NullString{String: todo.FormatDueDate(t.DueDate), Valid: true}
	}
	return row
}

func (row todoRow) toTodo() (todo.Todo, error) {
	t := todo.Todo{
		ID:          row.ID,
		Text:        row.Text,
		Description: row.Description,
		Completed:   row.Completed,
		Priority:    todo.Priority(row.Priority),
		Category:    row.Category,
	}

	var err error
	if t.CreatedAt, err = time.Parse(timestampLayout, row.CreatedAt); err != nil {
		return todo.Todo{}, fmt.Errorf("parsing created_at of todo %s: %w", row.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(timestampLayout, row.UpdatedAt); err != nil {
		return todo.Todo{}, fmt.Errorf("parsing updated_at of todo %s: %w", row.ID, err)
	}
	if row.DueDate.Valid {
		due, err := todo.ParseDueDate(row.DueDate.String)
		if err != nil {
			return todo.Todo{}, fmt.Errorf("parsing due_date of todo %s: %w", row.ID, err)
		}
		t.DueDate = &due
	}
	return t, nil
}

var _ todo.Backend = (*Backend)(nil)
