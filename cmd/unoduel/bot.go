package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/client"
	"github.com/lox/unoduel/internal/randutil"
)

type BotCmd struct {
	Strategy string        `arg:"" optional:"" default:"greedy" enum:"random,greedy" help:"Bot strategy (random, greedy)"`
	Server   string        `default:"http://localhost:8080" help:"Server URL"`
	Name     string        `help:"Display name (defaults to <strategy>-bot)"`
	Join     string        `help:"Room code to join; hosts a new room when empty"`
	Think    time.Duration `default:"500ms" help:"Pause before each move"`
	Seed     *int64        `help:"Deterministic seed for the random strategy (optional)"`
	LogLevel string        `default:"info" help:"Log level (debug|info|warn|error)"`
}

func (c *BotCmd) Run() error {
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}

	rng, _ := randutil.NewFromOptionalSeed(c.Seed)
	strategy, err := bot.NewStrategy(c.Strategy, rng)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = c.Strategy + "-bot"
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	conn := client.NewClient(c.Server, name, logger)
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer conn.Disconnect()

	b := bot.New(conn, strategy, bot.Config{
		JoinCode:  c.Join,
		ThinkTime: c.Think,
		OnRoomCreated: func(code string) {
			logger.Info("Waiting for an opponent", "join_with", fmt.Sprintf("unoduel bot --join %s", code))
		},
	}, quartz.NewReal(), logger)

	result, err := b.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Game finished", "winner", result.Winner, "won", result.Won, "moves", result.Moves)
	return nil
}
