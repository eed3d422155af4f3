package todo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// GenerateID returns a candidate ID. Defaults to GenerateID.
	GenerateID func(time.Time) string

	// Logger receives debug output for each operation. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Store owns the authoritative todo collection. Every mutation loads the
// current snapshot from the backend, applies the change to a copy and saves
// the whole snapshot before returning.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	now        func() time.Time
	generateID func(time.Time) string
	logger     *zap.Logger
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend, opts StoreOptions) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GenerateID == nil {
		opts.GenerateID = GenerateID
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		backend:    backend,
		now:        opts.Now,
		generateID: opts.GenerateID,
		logger:     opts.Logger,
	}
}

// List returns a copy of the collection in storage order.
func (s *Store) List() ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos, err := s.load()
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Get returns the todo with the given ID.
func (s *Store) Get(id string) (Todo, error) {
	todos, err := s.List()
	if err != nil {
		return Todo{}, err
	}
	idx := indexOf(todos, id)
	if idx < 0 {
		return Todo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	return todos[idx], nil
}

// NewID returns an ID that no todo in existing uses.
func (s *Store) NewID(existing []Todo) string {
	return uniqueID(existing, s.now(), s.generateID)
}

// Append assigns t a fresh ID and inserts it at the front of the collection.
func (s *Store) Append(t Todo) (Todo, error) {
	var added Todo
	_, err := s.Modify(func(todos []Todo) ([]Todo, error) {
		added = t.Clone()
		added.ID = s.NewID(todos)
		return append([]Todo{added}, todos...), nil
	})
	if err != nil {
		return Todo{}, err
	}
	s.logger.Debug("appended todo", zap.String("id", added.ID))
	return added.Clone(), nil
}

// Replace overwrites the todo with the given ID in place. The ID is kept.
func (s *Store) Replace(id string, t Todo) (Todo, error) {
	var replaced Todo
	_, err := s.Modify(func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		replaced = t.Clone()
		replaced.ID = id
		todos[idx] = replaced
		return todos, nil
	})
	if err != nil {
		return Todo{}, err
	}
	s.logger.Debug("replaced todo", zap.String("id", id))
	return replaced.Clone(), nil
}

// Remove deletes the todo with the given ID and returns it.
func (s *Store) Remove(id string) (Todo, error) {
	var removed Todo
	_, err := s.Modify(func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		removed = todos[idx]
		return append(todos[:idx], todos[idx+1:]...), nil
	})
	if err != nil {
		return Todo{}, err
	}
	s.logger.Debug("removed todo", zap.String("id", id))
	return removed, nil
}

// RemoveWhere deletes every todo matching pred and returns them in storage order.
func (s *Store) RemoveWhere(pred func(Todo) bool) ([]Todo, error) {
	removed := []Todo{}
	_, err := s.Modify(func(todos []Todo) ([]Todo, error) {
		kept := todos[:0]
		for _, t := range todos {
			if pred(t) {
				removed = append(removed, t)
				continue
			}
			kept = append(kept, t)
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("removed todos", zap.Int("count", len(removed)))
	return removed, nil
}

// Modify runs fn on a copy of the collection and persists the result.
// If fn returns an error nothing is saved. IDs in the result must be unique.
// Modify returns a copy of the saved collection.
func (s *Store) Modify(fn func(todos []Todo) ([]Todo, error)) ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if locker, ok := s.backend.(Locker); ok {
		unlock, err := locker.Lock()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.Warn("release store lock", zap.Error(err))
			}
		}()
	}

	todos, err := s.load()
	if err != nil {
		return nil, err
	}

	next, err := fn(todos)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []Todo{}
	}
	if err := checkUniqueIDs(next); err != nil {
		return nil, err
	}

	if err := s.backend.Save(cloneTodos(next)); err != nil {
		s.logger.Error("save todos", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return cloneTodos(next), nil
}

func (s *Store) load() ([]Todo, error) {
	todos, err := s.backend.Load()
	if err != nil {
		s.logger.Error("load todos", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := checkUniqueIDs(todos); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return cloneTodos(todos), nil
}

var errInvalidID = errors.New("invalid todo id")

func checkUniqueIDs(todos []Todo) error {
	seen := make(map[string]bool, len(todos))
	for _, t := range todos {
		if t.ID == "" {
			return fmt.Errorf("%w: empty", errInvalidID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate %s", errInvalidID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
