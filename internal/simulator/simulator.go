package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/table"
	"github.com/lox/holdemtable/poker"
)

// Config holds configuration for running simulations
type Config struct {
	Tables   int
	Hands    int // per table
	Seats    int
	BuyIn    int
	Strategy string
	Seed     int64
	Timeout  time.Duration // per table
	Logger   *log.Logger
}

// TableResult summarises one simulated table.
type TableResult struct {
	Table      string
	Hands      int
	Showdowns  int
	Voided     int
	Actions    int
	Rebuys     int
	BiggestPot int
	ChipsIn    int
	ChipsOut   int
	Duration   time.Duration
}

// Conserved reports whether every chip bought in is still on the table.
func (r TableResult) Conserved() bool {
	return r.ChipsIn == r.ChipsOut
}

// Simulator plays bots against each other on live table actors.
type Simulator struct {
	config Config
}

// New creates a simulator, filling in defaults.
func New(config Config) *Simulator {
	if config.Tables <= 0 {
		config.Tables = 1
	}
	if config.Seats < 2 {
		config.Seats = 6
	}
	if config.BuyIn <= 0 {
		config.BuyIn = 1000
	}
	if config.Strategy == "" {
		config.Strategy = "random"
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every table concurrently and returns per-table results in
// table order.
func (s *Simulator) Run(ctx context.Context) ([]TableResult, error) {
	if _, err := strategyFor(s.config.Strategy); err != nil {
		return nil, err
	}
	cfg := table.Config{
		Config: game.Config{
			MaxSeats:   s.config.Seats,
			SmallBlind: 5,
			BigBlind:   10,
			MinBuyIn:   s.config.BuyIn,
			MaxBuyIn:   s.config.BuyIn,
		},
	}

	manager := table.NewManager(s.config.Logger, quartz.NewReal())
	actors := make([]*table.Actor, s.config.Tables)
	for i := range actors {
		a, err := manager.CreateTable(fmt.Sprintf("sim-%d", i+1), cfg, game.WithRNG(randutil.New(s.config.Seed+int64(i))))
		if err != nil {
			return nil, err
		}
		actors[i] = a
	}
	manager.Start(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = manager.Shutdown(shutdownCtx)
	}()

	results := make([]TableResult, len(actors))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range actors {
		rng := randutil.New(s.config.Seed ^ int64(i+1)<<32)
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, s.config.Timeout)
			defer cancel()
			res, err := s.playTable(tctx, a, rng)
			if err != nil {
				return fmt.Errorf("table %s: %w", a.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Simulator) playTable(ctx context.Context, a *table.Actor, rng *rand.Rand) (TableResult, error) {
	start := time.Now()
	res := TableResult{Table: a.ID()}
	pick, _ := strategyFor(s.config.Strategy)
	logger := s.config.Logger.With("table", a.ID())

	sub := a.SubscribeAll()
	defer sub.Close()

	for i := range s.config.Seats {
		if _, err := a.Join(ctx, fmt.Sprintf("bot-%d", i+1), i, s.config.BuyIn); err != nil {
			return res, err
		}
		res.ChipsIn += s.config.BuyIn
	}

	p := &player{actor: a, sub: sub, rng: rng, pick: pick, seqs: make(map[int]uint64), holes: make(map[int][]poker.Card)}
	for res.Hands+res.Voided < s.config.Hands {
		if err := a.StartHand(ctx); err != nil {
			return res, err
		}
		if err := p.playHand(ctx, &res); err != nil {
			return res, err
		}
		if err := s.rebuy(ctx, a, &res); err != nil {
			return res, err
		}
	}

	snap, err := a.Snapshot(ctx)
	if err != nil {
		return res, err
	}
	for _, seat := range snap.Seats {
		res.ChipsOut += seat.Stack
	}
	res.Duration = time.Since(start)
	logger.Debug("Table finished", "hands", res.Hands, "rebuys", res.Rebuys, "conserved", res.Conserved())
	return res, nil
}

// rebuy replaces every busted bot with a fresh stack.
func (s *Simulator) rebuy(ctx context.Context, a *table.Actor, res *TableResult) error {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, seat := range snap.Seats {
		if seat.Player == "" || seat.Stack > 0 {
			continue
		}
		if err := a.Leave(ctx, seat.Index); err != nil {
			return err
		}
		if _, err := a.Join(ctx, seat.Player, seat.Index, s.config.BuyIn); err != nil {
			return err
		}
		res.Rebuys++
		res.ChipsIn += s.config.BuyIn
	}
	return nil
}

type player struct {
	actor *table.Actor
	sub   *table.Subscription
	rng   *rand.Rand
	pick  strategy
	seqs  map[int]uint64
	holes map[int][]poker.Card
	board []poker.Card
}

var errDropped = errors.New("event subscription dropped")

// playHand answers action requests until the hand ends.
func (p *player) playHand(ctx context.Context, res *TableResult) error {
	for {
		var e game.Event
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-p.sub.C:
			if !ok {
				return errDropped
			}
			e = ev
		}

		switch e.Type {
		case game.EventHandStarted:
			clear(p.holes)
			p.board = nil
		case game.EventHoleCardsDealt:
			hole := e.Payload.(game.HoleCardsPayload)
			p.holes[hole.Seat] = hole.Cards
		case game.EventStreetDealt:
			p.board = e.Payload.(game.StreetDealtPayload).Board
		case game.EventActionRequested:
			opts := e.Payload.(game.ActionOptions)
			req := p.pick(p.rng, decision{opts: opts, hole: p.holes[opts.Seat], board: p.board})
			p.seqs[opts.Seat]++
			req.ClientSeq = p.seqs[opts.Seat]
			if err := p.actor.Act(ctx, req); err != nil {
				return fmt.Errorf("seat %d %s: %w", req.Seat, req.Type, err)
			}
		case game.EventActionApplied:
			res.Actions++
		case game.EventShowdown:
			res.Showdowns++
		case game.EventPotAwarded:
			if award := e.Payload.(game.PotAward); award.Amount > res.BiggestPot {
				res.BiggestPot = award.Amount
			}
		case game.EventHandSettled:
			res.Hands++
			return nil
		case game.EventHandVoided:
			res.Voided++
			return nil
		case game.EventTableFrozen:
			return fmt.Errorf("table frozen: %v", e.Payload.(game.TableFrozenPayload).Reason)
		}
	}
}
