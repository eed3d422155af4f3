package todo

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("backend down")

// failingBackend wraps a backend and fails saves while failSave is set.
type failingBackend struct {
	Backend
	failSave bool
	failLoad bool
}

func (b *failingBackend) Load() ([]Todo, error) {
	if b.failLoad {
		return nil, errBackendDown
	}
	return b.Backend.Load()
}

func (b *failingBackend) Save(todos []Todo) error {
	if b.failSave {
		return errBackendDown
	}
	return b.Backend.Save(todos)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testTime() time.Time {
	return time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)
}

func newTestManager(t *testing.T, seed ...Todo) (*Manager, *Store, *fixedClock) {
	t.Helper()

	clock := &fixedClock{now: testTime()}
	store := NewStore(NewMemoryBackend(seed...), StoreOptions{Now: clock.Now})
	return NewManager(store, ManagerOptions{Now: clock.Now}), store, clock
}

func mustCreate(t *testing.T, m *Manager, in CreateInput) Todo {
	t.Helper()

	created, err := m.Create(in)
	if err != nil {
		t.Fatalf("create %q: %v", in.Text, err)
	}
	return created
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return &d
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func priorityPtr(p Priority) *Priority {
	return &p
}

func todoIDs(todos []Todo) []string {
	result := make([]string, len(todos))
	for i, t := range todos {
		result[i] = t.ID
	}
	return result
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
