package main

import (
	"fmt"

	"github.com/amonks/glasstodo/api"
	"github.com/amonks/glasstodo/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	Long: `Serve the REST API for the local store.

The listen address is --addr when given, otherwise 127.0.0.1 on --port or the
configured [server] port (default 3001).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort int
	serveAddr string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (host:port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if rootServer != "" {
		return fmt.Errorf("serve cannot be combined with --server")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if rootVerbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	addr, err := api.ResolveAddr(serveAddr, port)
	if err != nil {
		return err
	}

	manager, closeStore, err := openManager(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store", zap.Error(err))
		}
	}()

	server, err := api.NewServer(api.ServerOptions{
		Manager:        manager,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		Registry:       prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}
	return server.Serve(addr)
}
