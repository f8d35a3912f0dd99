package simulator

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

// decision is what a bot knows when asked to act.
type decision struct {
	opts  game.ActionOptions
	hole  []poker.Card
	board []poker.Card
}

// strategy picks a legal action for the seat described by d.
type strategy func(rng *rand.Rand, d decision) game.ActionRequest

type weights map[game.ActionType]int

var (
	random     = weights{game.Fold: 20, game.Check: 60, game.Call: 50, game.Raise: 20, game.AllIn: 3}
	calling    = weights{game.Fold: 1, game.Check: 100, game.Call: 100}
	aggressive = weights{game.Fold: 10, game.Check: 20, game.Call: 30, game.Raise: 60, game.AllIn: 10}
	tight      = weights{game.Fold: 80, game.Check: 100, game.Call: 10, game.Raise: 2}
)

var strategies = map[string]strategy{
	"random":     random.pick,
	"calling":    calling.pick,
	"aggressive": aggressive.pick,
	"chart":      chart,
}

// Strategies lists the accepted strategy names.
func Strategies() []string {
	return []string{"aggressive", "calling", "chart", "random"}
}

func strategyFor(name string) (strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// chart plays by starting-hand category preflop and by made hand after.
func chart(rng *rand.Rand, d decision) game.ActionRequest {
	if len(d.hole) != 2 {
		return random.pick(rng, d)
	}
	if len(d.board) == 0 {
		switch poker.Categorize(d.hole[0], d.hole[1]) {
		case poker.Premium, poker.Strong:
			return aggressive.pick(rng, d)
		case poker.Medium, poker.Weak:
			return calling.pick(rng, d)
		}
		return tight.pick(rng, d)
	}

	rank, err := poker.Evaluate(append(append([]poker.Card(nil), d.hole...), d.board...)...)
	if err != nil {
		return tight.pick(rng, d)
	}
	switch t := rank.Type(); {
	case t >= poker.TwoPair:
		return aggressive.pick(rng, d)
	case t == poker.Pair:
		return calling.pick(rng, d)
	}
	return tight.pick(rng, d)
}

func (w weights) pick(rng *rand.Rand, d decision) game.ActionRequest {
	opts := d.opts
	req := game.ActionRequest{Seat: opts.Seat, Type: w.choose(rng, opts)}
	if req.Type == game.Raise {
		// Mostly small raises, occasionally up to the whole stack.
		spread := (opts.MaxRaiseTo - opts.MinRaiseTo) / 4
		if rng.IntN(10) == 0 {
			spread = opts.MaxRaiseTo - opts.MinRaiseTo
		}
		req.Amount = opts.MinRaiseTo + rng.IntN(spread+1)
	}
	return req
}

func (w weights) choose(rng *rand.Rand, opts game.ActionOptions) game.ActionType {
	total := 0
	for _, a := range opts.Legal {
		total += w.weight(a, opts)
	}
	if total == 0 {
		return opts.Legal[0]
	}
	n := rng.IntN(total)
	for _, a := range opts.Legal {
		if n -= w.weight(a, opts); n < 0 {
			return a
		}
	}
	return opts.Legal[len(opts.Legal)-1]
}

func (w weights) weight(a game.ActionType, opts game.ActionOptions) int {
	// Never fold when checking is free.
	if a == game.Fold && opts.Allows(game.Check) {
		return 0
	}
	return w[a]
}
