package todo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "todos.json"))

	todos, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if todos == nil || len(todos) != 0 {
		t.Fatalf("expected empty non-nil collection, got %v", todos)
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todos.json")
	backend := NewFileBackend(path)

	want := queryFixture()
	for i := range want {
		want[i].UpdatedAt = want[i].CreatedAt
		if want[i].Priority == "" {
			want[i].Priority = PriorityMedium
		}
	}
	if err := backend.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.Contains(string(data), `"version": 1`) {
		t.Fatalf("expected version header, got:\n%s", data)
	}

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !equalStrings(todoIDs(got), todoIDs(want)) {
		t.Fatalf("expected %v, got %v", todoIDs(want), todoIDs(got))
	}
	for i := range want {
		if got[i].Text != want[i].Text || got[i].Completed != want[i].Completed || !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Fatalf("todo %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
		if FormatDueDate(got[i].DueDate) != FormatDueDate(want[i].DueDate) {
			t.Fatalf("todo %d due date mismatch", i)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileBackend_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	if err := os.WriteFile(path, []byte(`{"version": 2, "todos": []}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFileBackend(path).Load()
	if !errors.Is(err, ErrUnsupportedSnapshotVersion) {
		t.Fatalf("expected ErrUnsupportedSnapshotVersion, got %v", err)
	}
}

func TestFileBackend_RejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing todos", `{"version": 1}`, "todos"},
		{"bad priority", `{"version": 1, "todos": [{"id": "a", "text": "x", "completed": false, "priority": "urgent", "createdAt": "2024-03-15T10:00:00Z", "updatedAt": "2024-03-15T10:00:00Z"}]}`, "/todos/0/priority"},
		{"bad timestamp", `{"version": 1, "todos": [{"id": "a", "text": "x", "completed": false, "priority": "low", "createdAt": "yesterday", "updatedAt": "2024-03-15T10:00:00Z"}]}`, "/todos/0/createdAt"},
		{"not json", `{"version":`, "parse snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "todos.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := NewFileBackend(path).Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFileBackend_StoreIntegration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")

	m := NewManager(NewStore(NewFileBackend(path), StoreOptions{}), ManagerOptions{})
	created, err := m.Create(CreateInput{Text: "persisted", DueDate: datePtr(2030, 1, 2)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened := NewManager(NewStore(NewFileBackend(path), StoreOptions{}), ManagerOptions{})
	got, err := reopened.Get(created.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Text != "persisted" || FormatDueDate(got.DueDate) != "2030-01-02" {
		t.Fatalf("unexpected todo after reopen: %+v", got)
	}
	if !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updatedAt lost precision: %v vs %v", got.UpdatedAt, created.UpdatedAt)
	}

	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}

func TestFileBackend_FailedSaveKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.json")
	backend := NewFileBackend(path)
	if err := backend.Save([]Todo{{ID: "keep", Text: "keep", Priority: PriorityLow, CreatedAt: testTime(), UpdatedAt: testTime()}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A directory in place of the snapshot makes the rename fail.
	blocked := NewFileBackend(filepath.Join(dir, "blocked"))
	if err := os.Mkdir(filepath.Join(dir, "blocked"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "blocked", "child"), nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := blocked.Save([]Todo{}); err == nil {
		t.Fatalf("expected save over a directory to fail")
	}

	todos, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != "keep" {
		t.Fatalf("previous snapshot lost: %+v", todos)
	}
}
