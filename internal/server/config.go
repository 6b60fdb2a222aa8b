package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
	Limits LimitSettings  `hcl:"limits,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	RedisURL string `hcl:"redis_url,optional"` // empty = memory-only mirror
}

// GameSettings contains the gameplay timers, in milliseconds.
type GameSettings struct {
	TurnTimeoutMs           int `hcl:"turn_timeout_ms,optional"`
	TrumpSelectionTimeoutMs int `hcl:"trump_selection_timeout_ms,optional"`
	TrickRevealDelayMs      int `hcl:"trick_reveal_delay_ms,optional"`
	PulkaRecapDelayMs       int `hcl:"pulka_recap_delay_ms,optional"`
	ReconnectGraceMs        int `hcl:"reconnect_grace_ms,optional"`
	BotFillTimeoutMs        int `hcl:"bot_fill_timeout_ms,optional"`
	RoomTeardownDelayMs     int `hcl:"room_teardown_delay_ms,optional"`
}

// LimitSettings contains the per-seat rate limits.
type LimitSettings struct {
	MinActionSpacingMs int `hcl:"min_action_spacing_ms,optional"`
	ActionsPerMinute   int `hcl:"actions_per_minute,optional"`
	ThrowSpacingMs     int `hcl:"throw_spacing_ms,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			TurnTimeoutMs:           30000,
			TrumpSelectionTimeoutMs: 45000,
			TrickRevealDelayMs:      2000,
			PulkaRecapDelayMs:       10000,
			ReconnectGraceMs:        60000,
			BotFillTimeoutMs:        15000,
			RoomTeardownDelayMs:     30000,
		},
		Limits: LimitSettings{
			MinActionSpacingMs: 150,
			ActionsPerMinute:   60,
			ThrowSpacingMs:     400,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to the
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	config := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.TurnTimeoutMs == 0 {
		config.Game.TurnTimeoutMs = defaults.Game.TurnTimeoutMs
	}
	if config.Game.TrumpSelectionTimeoutMs == 0 {
		config.Game.TrumpSelectionTimeoutMs = defaults.Game.TrumpSelectionTimeoutMs
	}
	if config.Game.TrickRevealDelayMs == 0 {
		config.Game.TrickRevealDelayMs = defaults.Game.TrickRevealDelayMs
	}
	if config.Game.PulkaRecapDelayMs == 0 {
		config.Game.PulkaRecapDelayMs = defaults.Game.PulkaRecapDelayMs
	}
	if config.Game.ReconnectGraceMs == 0 {
		config.Game.ReconnectGraceMs = defaults.Game.ReconnectGraceMs
	}
	if config.Game.BotFillTimeoutMs == 0 {
		config.Game.BotFillTimeoutMs = defaults.Game.BotFillTimeoutMs
	}
	if config.Game.RoomTeardownDelayMs == 0 {
		config.Game.RoomTeardownDelayMs = defaults.Game.RoomTeardownDelayMs
	}
	if config.Limits.MinActionSpacingMs == 0 {
		config.Limits.MinActionSpacingMs = defaults.Limits.MinActionSpacingMs
	}
	if config.Limits.ActionsPerMinute == 0 {
		config.Limits.ActionsPerMinute = defaults.Limits.ActionsPerMinute
	}
	if config.Limits.ThrowSpacingMs == 0 {
		config.Limits.ThrowSpacingMs = defaults.Limits.ThrowSpacingMs
	}

	return config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.TurnTimeoutMs < 1000 {
		return fmt.Errorf("turn timeout too short: %dms", c.Game.TurnTimeoutMs)
	}
	if c.Game.TrickRevealDelayMs < 0 {
		return fmt.Errorf("trick reveal delay must not be negative")
	}
	if c.Limits.MinActionSpacingMs <= 0 || c.Limits.ActionsPerMinute <= 0 || c.Limits.ThrowSpacingMs <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

// ListenAddress returns the full listen address
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Duration helpers.

func (g GameSettings) TurnTimeout() time.Duration    { return msDuration(g.TurnTimeoutMs) }
func (g GameSettings) TrumpTimeout() time.Duration   { return msDuration(g.TrumpSelectionTimeoutMs) }
func (g GameSettings) TrickReveal() time.Duration    { return msDuration(g.TrickRevealDelayMs) }
func (g GameSettings) PulkaRecap() time.Duration     { return msDuration(g.PulkaRecapDelayMs) }
func (g GameSettings) ReconnectGrace() time.Duration { return msDuration(g.ReconnectGraceMs) }
func (g GameSettings) BotFillTimeout() time.Duration { return msDuration(g.BotFillTimeoutMs) }
func (g GameSettings) TeardownDelay() time.Duration  { return msDuration(g.RoomTeardownDelayMs) }

func (l LimitSettings) MinActionSpacing() time.Duration { return msDuration(l.MinActionSpacingMs) }
func (l LimitSettings) ThrowSpacing() time.Duration     { return msDuration(l.ThrowSpacingMs) }

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
