package table

import (
	"fmt"
	"time"

	"github.com/lox/holdemtable/internal/game"
)

// Config extends the game rules with the timing policy of a live table.
type Config struct {
	game.Config

	// ActionTimeout is how long a connected seat has to act. Zero disables
	// the deadline.
	ActionTimeout time.Duration
	// DisconnectTimeout replaces ActionTimeout while the seat to act is
	// disconnected.
	DisconnectTimeout time.Duration
	// AutoStart deals the next hand HandDelay after the table can start one.
	AutoStart bool
	HandDelay time.Duration
}

// DefaultConfig returns the game defaults with 30s turns.
func DefaultConfig() Config {
	return Config{
		Config:            game.DefaultConfig(),
		ActionTimeout:     30 * time.Second,
		DisconnectTimeout: 10 * time.Second,
		AutoStart:         true,
		HandDelay:         2 * time.Second,
	}
}

// Validate checks the game rules and the timers.
func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.ActionTimeout < 0 || c.DisconnectTimeout < 0 || c.HandDelay < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func (c Config) turnTimeout(connected bool) time.Duration {
	if !connected && c.DisconnectTimeout > 0 {
		return c.DisconnectTimeout
	}
	return c.ActionTimeout
}
