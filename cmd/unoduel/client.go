package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/unoduel/internal/client"
	"github.com/lox/unoduel/internal/tui"
)

type ClientCmd struct {
	Server  string `kong:"default='http://localhost:8080',help='Server URL'"`
	Name    string `kong:"default='',help='Display name (defaults to $USER)'"`
	LogFile string `kong:"help='Write debug logs to this file'"`
	NoColor bool   `kong:"help='Disable colored output'"`
}

func (c *ClientCmd) Run() error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	level := "info"
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out, level = f, "debug"
	}
	logger, err := newLoggerTo(out, level)
	if err != nil {
		return err
	}

	if c.NoColor {
		tui.DisableColor()
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = os.Getenv("USER")
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	conn := client.NewClient(strings.TrimSpace(c.Server), name, logger)
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			logger.Debug("Disconnect failed", "error", err)
		}
	}()

	return tui.Run(ctx, conn, logger)
}
