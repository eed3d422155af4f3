package todo

import "sync"

// Backend persists whole snapshots of the todo collection.
// Load returns the collection in storage order; Save replaces it.
// Save must be atomic: after a failed Save the previous snapshot is intact.
type Backend interface {
	Load() ([]Todo, error)
	Save(todos []Todo) error
}

// Locker is implemented by backends that can serialize load-modify-save
// cycles across processes. The Store holds the lock for a whole cycle.
type Locker interface {
	Lock() (unlock func() error, err error)
}

// MemoryBackend keeps the collection in process memory.
type MemoryBackend struct {
	mu    sync.Mutex
	todos []Todo
}

// NewMemoryBackend returns a backend seeded with copies of todos.
func NewMemoryBackend(todos ...Todo) *MemoryBackend {
	return &MemoryBackend{todos: cloneTodos(todos)}
}

// Load returns a copy of the stored collection.
func (b *MemoryBackend) Load() ([]Todo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneTodos(b.todos), nil
}

// Save replaces the stored collection with a copy of todos.
func (b *MemoryBackend) Save(todos []Todo) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.todos = cloneTodos(todos)
	return nil
}
