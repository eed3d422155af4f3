// Package config handles loading glasstodo.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/glasstodo/internal/paths"
	"github.com/amonks/glasstodo/internal/validation"
)

// ProjectFileName is the per-directory config file name.
const ProjectFileName = "glasstodo.toml"

// Backend names a storage backend.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// ValidBackends returns all valid backend names.
func ValidBackends() []Backend {
	return []Backend{BackendFile, BackendSQLite, BackendMemory}
}

// ParseBackend parses a backend name. Blank input means BackendFile.
func ParseBackend(value string) (Backend, error) {
	normalized := Backend(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return BackendFile, nil
	}
	for _, valid := range ValidBackends() {
		if normalized == valid {
			return valid, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q: must be %s", value, validation.FormatAlternatives(ValidBackends()))
}

// Config represents the glasstodo.toml configuration file.
type Config struct {
	Store      Store      `toml:"store"`
	Validation Validation `toml:"validation"`
	Server     Server     `toml:"server"`
	Log        Log        `toml:"log"`
}

// Store contains storage configuration.
type Store struct {
	// Backend selects file, sqlite or memory storage. Defaults to file.
	Backend string `toml:"backend"`

	// Path is the snapshot file or database path. "~/" expands to the
	// home directory. Defaults to a file under the data directory.
	Path string `toml:"path"`
}

// Validation contains todo validation limits.
type Validation struct {
	MaxTextLength        int  `toml:"max-text-length"`
	MinTextLength        int  `toml:"min-text-length"`
	MaxDescriptionLength int  `toml:"max-description-length"`
	RejectPastDueDates   bool `toml:"reject-past-due-dates"`
}

// Server contains REST server configuration.
type Server struct {
	// Port is the listen port for "serve". Defaults to 3001.
	Port int `toml:"port"`

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string `toml:"allowed-origins"`

	// URL points the CLI at a running server instead of a local store.
	URL string `toml:"url"`
}

// Log contains logging configuration.
type Log struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `toml:"level"`

	// Format is json or console. Defaults to json.
	Format string `toml:"format"`
}

// Load loads the global config file merged with the project config file at
// projectPath. Values defined in the project file win. Missing files are
// treated as empty.
func Load(projectPath string) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(projectPath)
	if err != nil {
		return nil, err
	}

	return mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta), nil
}

// GlobalConfigPath returns the path of the global config file.
func GlobalConfigPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoreBackend returns the configured backend.
func (c *Config) StoreBackend() (Backend, error) {
	return ParseBackend(c.Store.Backend)
}

// StorePath returns the configured storage path with "~/" expanded, or the
// default path for backend.
func (c *Config) StorePath(backend Backend) (string, error) {
	if strings.TrimSpace(c.Store.Path) != "" {
		return paths.ExpandHome(strings.TrimSpace(c.Store.Path))
	}
	dir, err := paths.DefaultDataDir()
	if err != nil {
		return "", err
	}
	if backend == BackendSQLite {
		return filepath.Join(dir, "todos.db"), nil
	}
	return filepath.Join(dir, "todos.json"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	if path == "" {
		return &Config{}, toml.MetaData{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Store.Backend = mergeString(projectMeta.IsDefined("store", "backend"), projectCfg.Store.Backend, globalCfg.Store.Backend)
	merged.Store.Path = mergeString(projectMeta.IsDefined("store", "path"), projectCfg.Store.Path, globalCfg.Store.Path)

	merged.Validation.MaxTextLength = mergeValue(projectMeta.IsDefined("validation", "max-text-length"), projectCfg.Validation.MaxTextLength, globalCfg.Validation.MaxTextLength)
	merged.Validation.MinTextLength = mergeValue(projectMeta.IsDefined("validation", "min-text-length"), projectCfg.Validation.MinTextLength, globalCfg.Validation.MinTextLength)
	merged.Validation.MaxDescriptionLength = mergeValue(projectMeta.IsDefined("validation", "max-description-length"), projectCfg.Validation.MaxDescriptionLength, globalCfg.Validation.MaxDescriptionLength)
	merged.Validation.RejectPastDueDates = mergeValue(projectMeta.IsDefined("validation", "reject-past-due-dates"), projectCfg.Validation.RejectPastDueDates, globalCfg.Validation.RejectPastDueDates)

	merged.Server.Port = mergeValue(projectMeta.IsDefined("server", "port"), projectCfg.Server.Port, globalCfg.Server.Port)
	merged.Server.URL = mergeString(projectMeta.IsDefined("server", "url"), projectCfg.Server.URL, globalCfg.Server.URL)
	if projectMeta.IsDefined("server", "allowed-origins") {
		merged.Server.AllowedOrigins = append([]string(nil), projectCfg.Server.AllowedOrigins...)
	} else if globalMeta.IsDefined("server", "allowed-origins") {
		merged.Server.AllowedOrigins = append([]string(nil), globalCfg.Server.AllowedOrigins...)
	}

	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.Format = mergeString(projectMeta.IsDefined("log", "format"), projectCfg.Log.Format, globalCfg.Log.Format)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	return strings.TrimSpace(mergeValue(projectDefined, projectValue, globalValue))
}

func mergeValue[T any](projectDefined bool, projectValue, globalValue T) T {
	if projectDefined {
		return projectValue
	}
	return globalValue
}
