package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/client"
	"github.com/lox/unoduel/internal/fileutil"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/server"
)

type SpawnCmd struct {
	Addr     string        `kong:"default='localhost:0',help='Server address, defaults to random port on localhost'"`
	Config   string        `kong:"help='HCL config file for game rules (optional)'"`
	Host     string        `kong:"default='greedy',enum='random,greedy',help='Strategy of the bot that creates the room'"`
	Guest    string        `kong:"default='random',enum='random,greedy',help='Strategy of the bot that joins'"`
	Games    int           `kong:"default='1',help='Number of games to play'"`
	Think    time.Duration `kong:"default='0s',help='Pause before each bot move'"`
	Seed     *int64        `kong:"help='Deterministic seed for the server and both bots (optional)'"`
	LogLevel string        `kong:"default='info',help='Log level (debug|info|warn|error)'"`

	WriteStats string `kong:"help='Write a JSON run summary to this file on exit'"`
}

// summary counts wins by seat across games.
type summary struct {
	Seed          int64  `json:"seed"`
	Games         int    `json:"games"`
	HostStrategy  string `json:"hostStrategy"`
	GuestStrategy string `json:"guestStrategy"`
	HostWins      int    `json:"hostWins"`
	GuestWins     int    `json:"guestWins"`
	HostMoves     int    `json:"hostMoves"`
}

func (c *SpawnCmd) Run() error {
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be at least 1, got %d", c.Games)
	}

	cfg := server.DefaultServerConfig()
	if c.Config != "" {
		if cfg, err = server.LoadServerConfig(c.Config); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rng, seed := randutil.NewFromOptionalSeed(c.Seed)
	logger.Info("Using seed", "seed", seed)

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	baseURL := fmt.Sprintf("http://%s", ln.Addr())

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	srv := server.NewServer(cfg, logger, server.WithRNG(rng))
	serverCtx, stopServer := context.WithCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(serverCtx, ln)
	})
	g.Go(func() error {
		defer stopServer()
		if err := server.WaitForHealthy(gctx, baseURL); err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		logger.Info("Server started", "url", baseURL)

		t := summary{Seed: seed, HostStrategy: c.Host, GuestStrategy: c.Guest}
		for i := range c.Games {
			result, err := c.playMatch(gctx, baseURL, seed+int64(i)*2, logger)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			t.Games++
			if result.Won {
				t.HostWins++
			} else {
				t.GuestWins++
			}
			t.HostMoves += result.Moves
			logger.Info("Game over", "game", i+1, "winner", result.Winner)
		}

		logger.Info("Run complete", "games", t.Games,
			"host_wins", t.HostWins, "host_strategy", t.HostStrategy,
			"guest_wins", t.GuestWins, "guest_strategy", t.GuestStrategy,
			"host_moves", t.HostMoves)

		if c.WriteStats != "" {
			if err := fileutil.WriteJSONAtomic(c.WriteStats, t, 0o644); err != nil {
				return fmt.Errorf("writing stats: %w", err)
			}
			logger.Info("Stats written", "file", c.WriteStats)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// playMatch runs one game between a hosting and a joining bot and returns
// the host's result.
func (c *SpawnCmd) playMatch(ctx context.Context, baseURL string, seed int64, logger *log.Logger) (bot.Result, error) {
	codes := make(chan string, 1)
	clock := quartz.NewReal()

	g, gctx := errgroup.WithContext(ctx)

	var hostResult bot.Result
	g.Go(func() error {
		strategy, err := bot.NewStrategy(c.Host, randutil.New(seed))
		if err != nil {
			return err
		}
		conn, err := connectBot(gctx, baseURL, c.Host+"-host", logger)
		if err != nil {
			return err
		}
		defer conn.Disconnect()

		host := bot.New(conn, strategy, bot.Config{
			ThinkTime:     c.Think,
			OnRoomCreated: func(code string) { codes <- code },
		}, clock, logger.With("seat", "host"))
		hostResult, err = host.Run(gctx)
		return err
	})

	g.Go(func() error {
		var code string
		select {
		case code = <-codes:
		case <-gctx.Done():
			return gctx.Err()
		}

		strategy, err := bot.NewStrategy(c.Guest, randutil.New(seed+1))
		if err != nil {
			return err
		}
		conn, err := connectBot(gctx, baseURL, c.Guest+"-guest", logger)
		if err != nil {
			return err
		}
		defer conn.Disconnect()

		guest := bot.New(conn, strategy, bot.Config{
			JoinCode:  code,
			ThinkTime: c.Think,
		}, clock, logger.With("seat", "guest"))
		_, err = guest.Run(gctx)
		return err
	})

	return hostResult, g.Wait()
}

func connectBot(ctx context.Context, baseURL, name string, logger *log.Logger) (*client.Client, error) {
	conn := client.NewClient(baseURL, name, logger)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting %s: %w", name, err)
	}
	return conn, nil
}
