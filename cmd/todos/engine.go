package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/glasstodo/api"
	"github.com/amonks/glasstodo/internal/config"
	"github.com/amonks/glasstodo/internal/logging"
	"github.com/amonks/glasstodo/internal/paths"
	"github.com/amonks/glasstodo/internal/sqlite"
	"github.com/amonks/glasstodo/internal/todoenv"
	"github.com/amonks/glasstodo/todo"
	"go.uber.org/zap"
)

// engine is the set of todo operations the commands need. It is satisfied
// by a local manager and by the REST client.
type engine interface {
	List(ctx context.Context, q todo.Query) (todo.ListResult, error)
	Get(ctx context.Context, id string) (todo.Todo, error)
	Create(ctx context.Context, in todo.CreateInput) (todo.Todo, error)
	Update(ctx context.Context, id string, in todo.UpdateInput) (todo.Todo, error)
	Toggle(ctx context.Context, id string) (todo.Todo, error)
	Remove(ctx context.Context, id string) (todo.Todo, error)
	ClearCompleted(ctx context.Context) (todo.ClearResult, error)
	Bulk(ctx context.Context, action todo.BulkAction, ids []string) (todo.BulkResult, error)
	ToggleAll(ctx context.Context) (todo.BulkResult, error)
	Move(ctx context.Context, id string, position int) (todo.Todo, error)
	Stats(ctx context.Context) (todo.Stats, error)
}

var (
	_ engine = localEngine{}
	_ engine = (*api.Client)(nil)
)

type localEngine struct {
	manager *todo.Manager
}

func (e localEngine) List(_ context.Context, q todo.Query) (todo.ListResult, error) {
	return e.manager.List(q)
}

func (e localEngine) Get(_ context.Context, id string) (todo.Todo, error) {
	return e.manager.Get(id)
}

func (e localEngine) Create(_ context.Context, in todo.CreateInput) (todo.Todo, error) {
	return e.manager.Create(in)
}

func (e localEngine) Update(_ context.Context, id string, in todo.UpdateInput) (todo.Todo, error) {
	return e.manager.Update(id, in)
}

func (e localEngine) Toggle(_ context.Context, id string) (todo.Todo, error) {
	return e.manager.Toggle(id)
}

func (e localEngine) Remove(_ context.Context, id string) (todo.Todo, error) {
	return e.manager.Remove(id)
}

func (e localEngine) ClearCompleted(_ context.Context) (todo.ClearResult, error) {
	return e.manager.ClearCompleted()
}

func (e localEngine) Bulk(_ context.Context, action todo.BulkAction, ids []string) (todo.BulkResult, error) {
	return e.manager.Bulk(action, ids)
}

func (e localEngine) ToggleAll(_ context.Context) (todo.BulkResult, error) {
	return e.manager.ToggleAll()
}

func (e localEngine) Move(_ context.Context, id string, position int) (todo.Todo, error) {
	return e.manager.Move(id, position)
}

func (e localEngine) Stats(_ context.Context) (todo.Stats, error) {
	return e.manager.Stats()
}

// loadConfig loads the global config merged with --config or ./glasstodo.toml.
func loadConfig() (*config.Config, error) {
	projectPath := rootConfigPath
	if projectPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		projectPath = filepath.Join(cwd, config.ProjectFileName)
	}
	return config.Load(projectPath)
}

// cliLogger logs store operations at debug level with --verbose and
// discards everything otherwise.
func cliLogger() (*zap.Logger, error) {
	if !rootVerbose {
		return zap.NewNop(), nil
	}
	return logging.New(logging.Options{Level: "debug", Format: string(logging.FormatConsole)})
}

// openEngine returns the REST client when a server is configured and a
// local manager otherwise. The returned func releases the store.
func openEngine() (engine, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	server := todoenv.FirstNonEmpty(rootServer, todoenv.Server(), cfg.Server.URL)
	if server != "" {
		addr, err := api.ResolveAddr(server, 0)
		if err != nil {
			return nil, nil, err
		}
		return api.NewClient(addr), func() error { return nil }, nil
	}

	logger, err := cliLogger()
	if err != nil {
		return nil, nil, err
	}
	manager, closeStore, err := openManager(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return localEngine{manager: manager}, closeStore, nil
}

// openManager opens the configured backend and wraps it in a manager.
func openManager(cfg *config.Config, logger *zap.Logger) (*todo.Manager, func() error, error) {
	backendName := cfg.Store.Backend
	if rootBackend != "" {
		backendName = rootBackend
	}
	kind, err := config.ParseBackend(backendName)
	if err != nil {
		return nil, nil, err
	}

	path, err := storePath(cfg, kind)
	if err != nil {
		return nil, nil, err
	}

	backend, closeBackend, err := openBackend(kind, path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("opened store", zap.String("backend", string(kind)), zap.String("path", path))

	store := todo.NewStore(backend, todo.StoreOptions{Logger: logger})
	manager := todo.NewManager(store, todo.ManagerOptions{Rules: rulesFromConfig(cfg)})
	return manager, closeBackend, nil
}

func storePath(cfg *config.Config, kind config.Backend) (string, error) {
	if kind == config.BackendMemory {
		return "", nil
	}
	if data := todoenv.FirstNonEmpty(rootData, todoenv.DataPath()); data != "" {
		return paths.ExpandHome(data)
	}
	return cfg.StorePath(kind)
}

func openBackend(kind config.Backend, path string) (todo.Backend, func() error, error) {
	noop := func() error { return nil }
	if kind == config.BackendMemory {
		return todo.NewMemoryBackend(), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	if kind == config.BackendSQLite {
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return todo.NewFileBackend(path), noop, nil
}

func rulesFromConfig(cfg *config.Config) todo.Rules {
	return todo.Rules{
		MaxTextLength:        cfg.Validation.MaxTextLength,
		MinTextLength:        cfg.Validation.MinTextLength,
		MaxDescriptionLength: cfg.Validation.MaxDescriptionLength,
		RejectPastDueDates:   cfg.Validation.RejectPastDueDates,
	}
}

// resolveTodoIDs expands unique ID prefixes into full IDs. The returned
// index covers the collection as it was before the command ran.
func resolveTodoIDs(ctx context.Context, eng engine, args []string) ([]string, todo.IDIndex, error) {
	all, err := eng.List(ctx, todo.Query{})
	if err != nil {
		return nil, todo.IDIndex{}, err
	}
	index := todo.NewIDIndex(all.Todos)
	resolved, err := index.ResolveAll(args)
	if err != nil {
		return nil, todo.IDIndex{}, err
	}
	return resolved, index, nil
}
