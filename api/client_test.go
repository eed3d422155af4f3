package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amonks/glasstodo/todo"
)

func newTestClient(t *testing.T, backend todo.Backend) *Client {
	t.Helper()

	server := httptest.NewServer(newTestServer(t, backend).Handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, todo.NewMemoryBackend())

	due := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local)
	created, err := client.Create(ctx, todo.CreateInput{Text: "Remote todo", Priority: todo.PriorityHigh, DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Priority != todo.PriorityHigh || todo.FormatDueDate(created.DueDate) != "2024-04-01" {
		t.Fatalf("unexpected todo %+v", created)
	}

	text := "Renamed remotely"
	updated, err := client.Update(ctx, created.ID, todo.UpdateInput{Text: &text})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != text || updated.DueDate == nil {
		t.Fatalf("unexpected update %+v", updated)
	}

	updated, err = client.Update(ctx, created.ID, todo.UpdateInput{ClearDueDate: true})
	if err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared")
	}

	toggled, err := client.Toggle(ctx, created.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("toggle: %+v %v", toggled, err)
	}

	list, err := client.List(ctx, todo.Query{Status: todo.StatusCompleted, Sort: todo.SortDefault})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Todos) != 1 || list.Total != 1 {
		t.Fatalf("unexpected list %+v", list)
	}

	stats, err := client.Stats(ctx)
	if err != nil || stats.Completed != 1 {
		t.Fatalf("stats: %+v %v", stats, err)
	}

	cleared, err := client.ClearCompleted(ctx)
	if err != nil || cleared.DeletedCount != 1 || len(cleared.Remaining) != 0 {
		t.Fatalf("clear completed: %+v %v", cleared, err)
	}

	health, err := client.Health(ctx)
	if err != nil || !health.Success || health.Todos != 0 {
		t.Fatalf("health: %+v %v", health, err)
	}
}

func TestClientBulkMoveAndToggleAll(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, todo.NewMemoryBackend(seedTodos()...))

	result, err := client.Bulk(ctx, todo.BulkDelete, []string{"aaaa1111", "missing"})
	if err != nil || result.Count != 1 {
		t.Fatalf("bulk: %+v %v", result, err)
	}

	result, err = client.ToggleAll(ctx)
	if err != nil || result.Count != 1 {
		t.Fatalf("toggle all: %+v %v", result, err)
	}

	moved, err := client.Move(ctx, "cccc3333", 0)
	if err != nil || moved.ID != "cccc3333" {
		t.Fatalf("move: %+v %v", moved, err)
	}
	list, err := client.List(ctx, todo.Query{})
	if err != nil || list.Todos[0].ID != "cccc3333" {
		t.Fatalf("list after move: %+v %v", list, err)
	}
}

func TestClientMapsErrors(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, todo.NewMemoryBackend(seedTodos()...))

	if _, err := client.Get(ctx, "missing"); !errors.Is(err, todo.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}

	_, err := client.Create(ctx, todo.CreateInput{Text: " "})
	if !errors.Is(err, todo.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if problems := todo.ValidationProblems(err); len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}

	if _, err := client.Bulk(ctx, "archive", []string{"aaaa1111"}); !errors.Is(err, todo.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := client.Bulk(ctx, todo.BulkDelete, nil); !errors.Is(err, todo.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil ids, got %v", err)
	}
}

func TestClientReadsNonListIDsAsInvalidArgument(t *testing.T) {
	server := httptest.NewServer(newTestServer(t, todo.NewMemoryBackend(seedTodos()...)).Handler())
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/api/todos/bulk", "application/json", strings.NewReader(`{"action":"delete","ids":"abc"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	err = readErrorResponse(resp)
	if !errors.Is(err, todo.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if errors.Is(err, todo.ErrValidation) {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestClientWrongBaseURLIsNotTodoNotFound(t *testing.T) {
	server := httptest.NewServer(newTestServer(t, todo.NewMemoryBackend(seedTodos()...)).Handler())
	t.Cleanup(server.Close)
	client := NewClient(server.URL + "/v2")

	_, err := client.Get(context.Background(), "aaaa1111")
	if !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("expected ErrEndpointNotFound, got %v", err)
	}
	if errors.Is(err, todo.ErrTodoNotFound) {
		t.Fatalf("expected wrong base URL not to look like a missing todo, got %v", err)
	}
}

func TestClientStorageErrors(t *testing.T) {
	backend := &brokenBackend{Backend: todo.NewMemoryBackend(), failSave: true}
	client := newTestClient(t, backend)

	_, err := client.Create(context.Background(), todo.CreateInput{Text: "x"})
	if !errors.Is(err, todo.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
