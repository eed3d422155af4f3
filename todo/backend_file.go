package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SnapshotVersion is the current file snapshot layout version.
const SnapshotVersion = 1

// ErrUnsupportedSnapshotVersion is returned when a snapshot file was written
// by an unknown layout version.
var ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

const snapshotSchemaURL = "glasstodo://snapshot.schema.json"

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

type snapshot struct {
	Version int    `json:"version"`
	Todos   []Todo `json:"todos"`
}

// FileBackend stores the collection as a JSON snapshot file.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend that reads and writes path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the snapshot file path.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) lockPath() string {
	return b.path + ".lock"
}

// Lock takes an exclusive advisory lock on the snapshot's lock file.
func (b *FileBackend) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lockFile, err := os.OpenFile(b.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return func() error {
		unlockErr := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
		closeErr := lockFile.Close()
		return errors.Join(unlockErr, closeErr)
	}, nil
}

// Load reads the snapshot. A missing file is an empty collection.
func (b *FileBackend) Load() ([]Todo, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return []Todo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Todo{}, nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", b.path, err)
	}
	if err := validateSnapshot(doc); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", b.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", b.path, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshotVersion, snap.Version)
	}
	if snap.Todos == nil {
		snap.Todos = []Todo{}
	}
	return snap.Todos, nil
}

// Save writes the snapshot atomically via a temp file and rename.
func (b *FileBackend) Save(todos []Todo) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if todos == nil {
		todos = []Todo{}
	}
	data, err := json.MarshalIndent(snapshot{Version: SnapshotVersion, Todos: todos}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if existing, err := os.ReadFile(b.path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read snapshot: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err == nil {
		err = tmpFile.Sync()
	}
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	if err := os.Rename(name, b.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	return nil
}

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchemaJSON)); err != nil {
			snapshotSchemaErr = fmt.Errorf("add snapshot schema: %w", err)
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile(snapshotSchemaURL)
		if snapshotSchemaErr != nil {
			snapshotSchemaErr = fmt.Errorf("compile snapshot schema: %w", snapshotSchemaErr)
		}
	})
	return snapshotSchema, snapshotSchemaErr
}

func validateSnapshot(doc any) error {
	schema, err := compiledSnapshotSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}
	var messages []string
	collectSchemaMessages(validationErr, &messages)
	if len(messages) == 0 {
		return fmt.Errorf("invalid snapshot: %s", validationErr.Message)
	}
	return fmt.Errorf("invalid snapshot: %s", strings.Join(messages, "; "))
}

func collectSchemaMessages(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, location+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaMessages(cause, messages)
	}
}
