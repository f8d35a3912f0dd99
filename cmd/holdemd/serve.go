package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdemtable/cmd/holdemd/shared"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/server"
	"github.com/lox/holdemtable/internal/table"
)

// ServeCmd runs the WebSocket table server.
type ServeCmd struct {
	Config   string `short:"c" default:"holdemd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Debug    bool   `help:"Enable debug logging"`
	Seed     *int64 `help:"Deterministic shuffle seed for every table (testing only)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}

	manager := table.NewManager(logger, quartz.NewReal())
	for i, tc := range cfg.Tables {
		tcfg, err := tc.Table()
		if err != nil {
			return err
		}
		var opts []game.TableOption
		if c.Seed != nil {
			opts = append(opts, game.WithRNG(randutil.New(*c.Seed+int64(i))))
		}
		if _, err := manager.CreateTable(tc.Name, tcfg, opts...); err != nil {
			return err
		}
		logger.Info("Created table",
			"name", tc.Name,
			"stakes", fmt.Sprintf("%d/%d", tcfg.SmallBlind, tcfg.BigBlind),
			"seats", tcfg.MaxSeats,
			"actionTimeout", tcfg.ActionTimeout,
			"autoStart", tcfg.AutoStart)
	}
	if c.Seed != nil {
		logger.Warn("Using deterministic seed", "seed", *c.Seed)
	}

	ctx := shared.SetupSignalHandler(logger)
	manager.Start(ctx)

	logger.Info("Starting holdemd", "addr", addr, "tables", len(cfg.Tables), "version", version)
	srv := server.NewServer(manager, logger)
	serveErr := srv.ListenAndServe(ctx, addr)

	logger.Info("Shutting down tables...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Tables did not stop cleanly", "error", err)
	}
	return serveErr
}
