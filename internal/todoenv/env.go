// Package todoenv reads environment overrides for the todos CLI.
package todoenv

import (
	"os"
	"strings"
)

const (
	// ServerEnvVar points the CLI at a running server.
	ServerEnvVar = "GLASSTODO_SERVER"

	// DataEnvVar overrides the storage path.
	DataEnvVar = "GLASSTODO_DATA"
)

// Server returns the server address from the environment, or "".
func Server() string {
	return strings.TrimSpace(os.Getenv(ServerEnvVar))
}

// DataPath returns the storage path from the environment, or "".
func DataPath() string {
	return strings.TrimSpace(os.Getenv(DataEnvVar))
}

// FirstNonEmpty returns the first value that isn't blank, trimmed.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
