package main

import (
	"fmt"

	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/server"
)

// ServerCmd runs the server from an HCL config file plus flag overrides
type ServerCmd struct {
	Config   string `kong:"default='server.hcl',help='HCL config file (defaults apply when missing)'"`
	Addr     string `kong:"help='Override the listen host'"`
	Port     int    `kong:"help='Override the listen port'"`
	LogLevel string `kong:"help='Override the log level (debug|info|warn|error)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for shuffles and room codes (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Config, err)
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	rng, seed := randutil.NewFromOptionalSeed(c.Seed)
	logger.Info("Starting server",
		"address", cfg.GetServerAddress(),
		"hand_size", cfg.Game.HandSize,
		"default_wild_color", cfg.Game.DefaultWildColor,
		"ping_interval", cfg.GetPingInterval(),
		"seed", seed)

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	return server.NewServer(cfg, logger, server.WithRNG(rng)).Run(ctx)
}
