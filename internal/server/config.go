package server

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
)

// ServerConfig represents the complete server configuration. Both blocks are
// optional in the file.
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	Port         int    `hcl:"port,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	PingInterval string `hcl:"ping_interval,optional"`
}

// GameSettings contains the rules every room is dealt with
type GameSettings struct {
	HandSize         int    `hcl:"hand_size,optional"`
	DefaultWildColor string `hcl:"default_wild_color,optional"`
}

const (
	defaultAddress      = "localhost"
	defaultPort         = 8080
	defaultLogLevel     = "info"
	defaultPingInterval = "54s"

	// maxHandSize leaves enough of the deck for the starter search and draws.
	maxHandSize = 20
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	rules := game.DefaultConfig()
	return &ServerConfig{
		Server: &ServerSettings{
			Address:      defaultAddress,
			Port:         defaultPort,
			LogLevel:     defaultLogLevel,
			PingInterval: defaultPingInterval,
		},
		Game: &GameSettings{
			HandSize:         rules.HandSize,
			DefaultWildColor: rules.DefaultWildColor.String(),
		},
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()
	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Game == nil {
		c.Game = defaults.Game
	}

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = defaults.Server.PingInterval
	}
	if c.Game.HandSize == 0 {
		c.Game.HandSize = defaults.Game.HandSize
	}
	if c.Game.DefaultWildColor == "" {
		c.Game.DefaultWildColor = defaults.Game.DefaultWildColor
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}

	interval, err := time.ParseDuration(c.Server.PingInterval)
	if err != nil {
		return fmt.Errorf("invalid ping interval %q: %w", c.Server.PingInterval, err)
	}
	if interval < time.Second {
		return fmt.Errorf("ping interval must be at least 1s, got %s", interval)
	}

	if c.Game.HandSize < 1 || c.Game.HandSize > maxHandSize {
		return fmt.Errorf("hand size must be between 1 and %d, got %d", maxHandSize, c.Game.HandSize)
	}

	if _, err := deck.ParseColor(c.Game.DefaultWildColor); err != nil {
		return fmt.Errorf("default wild color: %w", err)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetPingInterval returns the keepalive ping period, falling back to the
// default when the configured value does not parse.
func (c *ServerConfig) GetPingInterval() time.Duration {
	interval, err := time.ParseDuration(c.Server.PingInterval)
	if err != nil {
		interval, _ = time.ParseDuration(defaultPingInterval)
	}
	return interval
}

// Rules returns the game configuration for new rooms. Call Validate first.
func (c *ServerConfig) Rules() game.Config {
	rules := game.DefaultConfig()
	rules.HandSize = c.Game.HandSize
	if color, err := deck.ParseColor(c.Game.DefaultWildColor); err == nil {
		rules.DefaultWildColor = color
	}
	return rules
}
