package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amonks/glasstodo/api"
	"github.com/amonks/glasstodo/internal/testsupport"
	"github.com/amonks/glasstodo/todo"
)

func TestCommandsAgainstServer(t *testing.T) {
	testsupport.SetupTestHome(t)

	manager := todo.NewManager(todo.NewStore(todo.NewMemoryBackend(), todo.StoreOptions{}), todo.ManagerOptions{})
	server, err := api.NewServer(api.ServerOptions{Manager: manager})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	t.Cleanup(func() {
		rootServer = ""
		listJSON = false
		addPriority = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--server", httpServer.URL}, args...))
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("todos %s: %v", strings.Join(args, " "), err)
		}
		return out.String()
	}

	if out := run("add", "remote", "todo", "--priority", "high"); !strings.Contains(out, ": remote todo") {
		t.Fatalf("unexpected add output %q", out)
	}

	var listed []todo.Todo
	if err := json.Unmarshal([]byte(run("list", "--json")), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Text != "remote todo" || listed[0].Priority != todo.PriorityHigh {
		t.Fatalf("unexpected remote list %+v", listed)
	}

	local, err := manager.Get(listed[0].ID)
	if err != nil {
		t.Fatalf("expected todo in server store: %v", err)
	}
	if local.Text != "remote todo" {
		t.Fatalf("unexpected stored todo %+v", local)
	}

	if out := run("toggle", listed[0].ID[:4]); !strings.HasPrefix(out, "Completed todo ") {
		t.Fatalf("unexpected toggle output %q", out)
	}
	toggled, err := manager.Get(listed[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected remote toggle to complete the todo")
	}
}
