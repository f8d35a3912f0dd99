package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdemtable/poker"
)

// TableOption configures a Table during creation.
type TableOption func(*tableConfig)

type tableConfig struct {
	logger  *log.Logger
	clock   quartz.Clock
	newDeck func() *poker.Deck
	handID  func() string
}

func defaultTableConfig() *tableConfig {
	return &tableConfig{
		logger:  log.New(io.Discard),
		clock:   quartz.NewReal(),
		newDeck: func() *poker.Deck { return poker.NewDeck(nil) },
		handID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) TableOption {
	return func(c *tableConfig) {
		c.logger = logger
	}
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) TableOption {
	return func(c *tableConfig) {
		c.clock = clock
	}
}

// WithRNG shuffles every deck from rng, making a sequence of hands
// reproducible for a given seed.
func WithRNG(rng *rand.Rand) TableOption {
	return func(c *tableConfig) {
		c.newDeck = func() *poker.Deck { return poker.NewDeck(rng) }
	}
}

// WithDeckFactory supplies the deck for each hand. Tests use it to stack
// the cards.
func WithDeckFactory(f func() *poker.Deck) TableOption {
	return func(c *tableConfig) {
		c.newDeck = f
	}
}

// WithHandIDs overrides how hand ids are generated.
func WithHandIDs(f func() string) TableOption {
	return func(c *tableConfig) {
		c.handID = f
	}
}
