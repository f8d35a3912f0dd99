package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/table"
)

// Config represents the complete server configuration
type Config struct {
	Server *Settings     `hcl:"server,block"`
	Tables []TableConfig `hcl:"table,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one table. Durations use Go syntax, e.g. "30s".
type TableConfig struct {
	Name              string `hcl:"name,label"`
	MaxSeats          int    `hcl:"max_seats,optional"`
	SmallBlind        int    `hcl:"small_blind"`
	BigBlind          int    `hcl:"big_blind"`
	BuyInMin          int    `hcl:"buy_in_min,optional"`
	BuyInMax          int    `hcl:"buy_in_max,optional"`
	ActionTimeout     string `hcl:"action_timeout,optional"`
	DisconnectTimeout string `hcl:"disconnect_timeout,optional"`
	AutoStart         *bool  `hcl:"auto_start,optional"`
	HandDelay         string `hcl:"hand_delay,optional"`
}

// DefaultConfig returns a single six-handed 5/10 table on localhost:8080.
func DefaultConfig() *Config {
	cfg := &Config{
		Tables: []TableConfig{{Name: "main", SmallBlind: 5, BigBlind: 10}},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads an HCL file. A missing file yields DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and applies defaults.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Settings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	defaults := table.DefaultConfig()
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxSeats == 0 {
			t.MaxSeats = defaults.MaxSeats
		}
		if t.BuyInMin == 0 {
			t.BuyInMin = t.BigBlind * 20 // 20 big blinds minimum
		}
		if t.BuyInMax == 0 {
			t.BuyInMax = t.BigBlind * 200
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = defaults.ActionTimeout.String()
		}
		if t.DisconnectTimeout == "" {
			t.DisconnectTimeout = defaults.DisconnectTimeout.String()
		}
		if t.HandDelay == "" {
			t.HandDelay = defaults.HandDelay.String()
		}
		if t.AutoStart == nil {
			autoStart := defaults.AutoStart
			t.AutoStart = &autoStart
		}
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server == nil {
		return fmt.Errorf("missing server block")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if _, err := t.Table(); err != nil {
			return err
		}
	}
	return nil
}

// Address returns host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Table converts the block into a validated table configuration.
func (t TableConfig) Table() (table.Config, error) {
	cfg := table.Config{
		Config: game.Config{
			MaxSeats:   t.MaxSeats,
			SmallBlind: t.SmallBlind,
			BigBlind:   t.BigBlind,
			MinBuyIn:   t.BuyInMin,
			MaxBuyIn:   t.BuyInMax,
		},
		AutoStart: t.AutoStart != nil && *t.AutoStart,
	}
	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"action_timeout", t.ActionTimeout, &cfg.ActionTimeout},
		{"disconnect_timeout", t.DisconnectTimeout, &cfg.DisconnectTimeout},
		{"hand_delay", t.HandDelay, &cfg.HandDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return table.Config{}, fmt.Errorf("table %s: %s: %w", t.Name, d.name, err)
		}
		*d.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return table.Config{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return cfg, nil
}
