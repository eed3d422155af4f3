// Package main implements the todos CLI tool.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "todos",
	Short: "Glasstodo - a personal todo list with a REST API",
	Long: `Manage a personal todo list.

Commands operate on a local store (a JSON snapshot file by default, or a
SQLite database) unless --server points them at a running "todos serve".`,
	SilenceUsage: true,
}

var (
	rootConfigPath string
	rootServer     string
	rootBackend    string
	rootData       string
	rootVerbose    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Project config file (default ./glasstodo.toml)")
	flags.StringVar(&rootServer, "server", "", "Use the REST API at this address instead of a local store")
	flags.StringVar(&rootBackend, "backend", "", "Storage backend (file, sqlite, memory)")
	flags.StringVar(&rootData, "data", "", "Storage file or database path")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Log store operations to stderr")
}
