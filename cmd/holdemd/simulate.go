package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdemtable/cmd/holdemd/shared"
	"github.com/lox/holdemtable/internal/simulator"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	tableStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))
)

// SimulateCmd plays scripted bots through the full table stack.
type SimulateCmd struct {
	Tables   int           `default:"1" help:"Number of tables to run concurrently"`
	Hands    int           `default:"1000" help:"Hands to play per table"`
	Seats    int           `default:"6" help:"Bots per table"`
	BuyIn    int           `default:"1000" help:"Chips each bot buys in for"`
	Strategy string        `default:"random" help:"Bot strategy (${strategies})"`
	Seed     *int64        `help:"RNG seed (random when unset)"`
	Timeout  time.Duration `default:"5m" help:"Time limit per table"`
	Debug    bool          `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.SetupLogger("warn", c.Debug)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	sim := simulator.New(simulator.Config{
		Tables:   c.Tables,
		Hands:    c.Hands,
		Seats:    c.Seats,
		BuyIn:    c.BuyIn,
		Strategy: c.Strategy,
		Seed:     seed,
		Timeout:  c.Timeout,
		Logger:   logger,
	})

	ctx := shared.SetupSignalHandler(logger)
	start := time.Now()
	results, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s %d\n", headerStyle.Render("seed"), seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("table"),
		headerStyle.Render("hands"),
		headerStyle.Render("showdowns"),
		headerStyle.Render("actions"),
		headerStyle.Render("rebuys"),
		headerStyle.Render("biggest pot"),
		headerStyle.Render("hands/s"),
		headerStyle.Render("chips"))

	conserved := true
	totalHands := 0
	for _, r := range results {
		totalHands += r.Hands
		chips := okStyle.Render(fmt.Sprintf("%d", r.ChipsOut))
		if !r.Conserved() {
			conserved = false
			chips = failStyle.Render(fmt.Sprintf("%d != %d", r.ChipsOut, r.ChipsIn))
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.0f\t%s\n",
			tableStyle.Render(r.Table),
			r.Hands,
			r.Showdowns,
			r.Actions,
			r.Rebuys,
			r.BiggestPot,
			float64(r.Hands)/r.Duration.Seconds(),
			chips)
	}
	_ = w.Flush()

	elapsed := time.Since(start)
	fmt.Printf("\n%d hands in %s (%.0f hands/s)\n", totalHands, elapsed.Round(time.Millisecond), float64(totalHands)/elapsed.Seconds())
	if !conserved {
		return fmt.Errorf("chip conservation violated")
	}
	return nil
}

func strategiesHelp() string {
	return strings.Join(simulator.Strategies(), ", ")
}
