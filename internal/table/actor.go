package table

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/game"
)

// ErrClosed is returned by commands sent to an actor that has stopped.
var ErrClosed = errors.New("table actor stopped")

// Option configures an Actor.
type Option func(*Actor)

// WithLogger sets the logger used by the actor and its table.
func WithLogger(logger *log.Logger) Option {
	return func(a *Actor) { a.logger = logger }
}

// WithClock sets the clock driving deadlines and timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(a *Actor) { a.clock = clock }
}

// WithTableOptions passes options through to the underlying game.Table.
func WithTableOptions(opts ...game.TableOption) Option {
	return func(a *Actor) { a.tableOpts = append(a.tableOpts, opts...) }
}

// WithBuffer sets the per-subscriber event buffer.
func WithBuffer(n int) Option {
	return func(a *Actor) { a.buffer = n }
}

type command struct {
	name  string
	fn    func(*game.Table) error
	reply chan error
}

// Actor serializes every operation on one table through a single goroutine.
// Commands are applied in arrival order; each reply is sent only after the
// command's events are published and the turn deadline is re-armed.
type Actor struct {
	id        string
	cfg       Config
	table     *game.Table
	hub       *Hub
	logger    *log.Logger
	clock     quartz.Clock
	tableOpts []game.TableOption
	buffer    int

	cmds    chan command
	done    chan struct{}
	running chan struct{}

	// Owned by the Run goroutine.
	paused     bool
	turnTimer  *quartz.Timer
	armedSeat  int
	armedTurn  int
	armedConn  bool
	startTimer *quartz.Timer
	startGen   int
}

// NewActor creates the table and its actor. Call Run to start processing.
func NewActor(id string, cfg Config, opts ...Option) (*Actor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	a := &Actor{
		id:        id,
		cfg:       cfg,
		logger:    log.New(io.Discard),
		clock:     quartz.NewReal(),
		buffer:    DefaultBuffer,
		cmds:      make(chan command, 64),
		done:      make(chan struct{}),
		running:   make(chan struct{}),
		armedSeat: -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	base := a.logger
	a.logger = base.With("table", id)

	tableOpts := append([]game.TableOption{game.WithLogger(base), game.WithClock(a.clock)}, a.tableOpts...)
	t, err := game.NewTable(id, cfg.Config, tableOpts...)
	if err != nil {
		return nil, err
	}
	a.table = t
	a.hub = NewHub(a.buffer, a.logger)
	return a, nil
}

func (a *Actor) ID() string            { return a.id }
func (a *Actor) Config() Config        { return a.cfg }
func (a *Actor) Hub() *Hub             { return a.hub }
func (a *Actor) Done() <-chan struct{} { return a.done }

// Run processes commands until ctx is cancelled. It closes every
// subscription on return.
func (a *Actor) Run(ctx context.Context) error {
	select {
	case <-a.running:
		return fmt.Errorf("table %s: actor already running", a.id)
	default:
		close(a.running)
	}
	defer close(a.done)
	defer a.hub.Close()
	defer a.stopTimers()

	a.logger.Info("Table open", "seats", a.cfg.MaxSeats, "blinds", fmt.Sprintf("%d/%d", a.cfg.SmallBlind, a.cfg.BigBlind))
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Table closed")
			return nil
		case cmd := <-a.cmds:
			err := cmd.fn(a.table)
			if err != nil && game.IsFatal(err) {
				a.logger.Error("Command failed", "command", cmd.name, "error", err)
			}
			a.settle()
			if cmd.reply != nil {
				cmd.reply <- err
			}
		}
	}
}

// settle runs after every command: publish, then re-arm timers.
func (a *Actor) settle() {
	a.hub.Publish(a.table.Drain(), a.table.SeatOf)
	a.armTurn()
	a.armStart()
}

func (a *Actor) armTurn() {
	seat, turn, ok := a.table.Turn()
	connected := true
	if ok {
		if view, err := a.table.Seat(seat); err == nil {
			connected = view.Connected
		}
	}
	if ok && a.turnTimer != nil && seat == a.armedSeat && turn == a.armedTurn && connected == a.armedConn {
		return
	}
	if a.turnTimer != nil {
		a.turnTimer.Stop()
		a.turnTimer = nil
	}
	a.armedSeat, a.armedTurn, a.armedConn = seat, turn, connected
	if !ok {
		return
	}
	d := a.cfg.turnTimeout(connected)
	if d <= 0 {
		return
	}
	a.turnTimer = a.clock.AfterFunc(d, func() {
		a.enqueue("timeout", func(t *game.Table) error {
			err := t.Timeout(seat, turn)
			if errors.Is(err, game.ErrStaleTimeout) {
				return nil
			}
			return err
		})
	}, "table", "turn")
}

func (a *Actor) armStart() {
	if !a.cfg.AutoStart || a.paused || a.startTimer != nil || !a.table.CanStart() {
		return
	}
	a.startGen++
	gen := a.startGen
	a.startTimer = a.clock.AfterFunc(a.cfg.HandDelay, func() {
		a.enqueue("autostart", func(t *game.Table) error {
			if gen != a.startGen {
				return nil
			}
			a.startTimer = nil
			if a.paused || !t.CanStart() {
				return nil
			}
			return t.StartHand()
		})
	}, "table", "start")
}

func (a *Actor) stopTimers() {
	if a.turnTimer != nil {
		a.turnTimer.Stop()
	}
	if a.startTimer != nil {
		a.startTimer.Stop()
	}
}

// enqueue submits an internal command without waiting for its result.
func (a *Actor) enqueue(name string, fn func(*game.Table) error) {
	select {
	case a.cmds <- command{name: name, fn: fn}:
	case <-a.done:
	}
}

func (a *Actor) do(ctx context.Context, name string, fn func(*game.Table) error) error {
	cmd := command{name: name, fn: fn, reply: make(chan error, 1)}
	select {
	case a.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrClosed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrClosed
		}
	}
}

// Subscribe returns public events plus the private events of seat.
func (a *Actor) Subscribe(seat int) *Subscription { return a.hub.Subscribe(seat) }

// SubscribePlayer follows player's seat, including seats taken later.
func (a *Actor) SubscribePlayer(player string) *Subscription {
	return a.hub.SubscribePlayer(player)
}

// SubscribeAll returns every event, private ones included.
func (a *Actor) SubscribeAll() *Subscription { return a.hub.SubscribeAll() }

// Join seats player and returns the seat taken. A negative seat takes the
// first open one.
func (a *Actor) Join(ctx context.Context, player string, seat, buyIn int) (int, error) {
	taken := -1
	err := a.do(ctx, "join", func(t *game.Table) error {
		var err error
		taken, err = t.Join(player, seat, buyIn)
		return err
	})
	if err != nil {
		return -1, err
	}
	return taken, nil
}

func (a *Actor) Leave(ctx context.Context, seat int) error {
	return a.do(ctx, "leave", func(t *game.Table) error { return t.Leave(seat) })
}

func (a *Actor) SitOut(ctx context.Context, seat int) error {
	return a.do(ctx, "sit_out", func(t *game.Table) error { return t.SitOut(seat) })
}

func (a *Actor) SitIn(ctx context.Context, seat int) error {
	return a.do(ctx, "sit_in", func(t *game.Table) error { return t.SitIn(seat) })
}

func (a *Actor) Disconnect(ctx context.Context, seat int) error {
	return a.do(ctx, "disconnect", func(t *game.Table) error { return t.Disconnect(seat) })
}

func (a *Actor) Reconnect(ctx context.Context, seat int) error {
	return a.do(ctx, "reconnect", func(t *game.Table) error { return t.Reconnect(seat) })
}

// StartHand deals a hand now, regardless of auto-start.
func (a *Actor) StartHand(ctx context.Context) error {
	return a.do(ctx, "start", func(t *game.Table) error {
		a.paused = false
		return t.StartHand()
	})
}

// Act applies a player action. req.TableID may be empty.
func (a *Actor) Act(ctx context.Context, req game.ActionRequest) error {
	return a.do(ctx, "act", func(t *game.Table) error { return t.Act(req) })
}

// Pause voids any hand in progress and suspends auto-start until Resume.
func (a *Actor) Pause(ctx context.Context, reason string) error {
	return a.do(ctx, "pause", func(t *game.Table) error {
		if err := t.Pause(reason); err != nil {
			return err
		}
		a.paused = true
		if a.startTimer != nil {
			a.startTimer.Stop()
			a.startTimer = nil
			a.startGen++
		}
		a.logger.Info("Table paused", "reason", reason)
		return nil
	})
}

// Resume re-enables auto-start after Pause.
func (a *Actor) Resume(ctx context.Context) error {
	return a.do(ctx, "resume", func(*game.Table) error {
		a.paused = false
		return nil
	})
}

// Unfreeze voids the aborted hand of a frozen table and reopens it.
func (a *Actor) Unfreeze(ctx context.Context) error {
	return a.do(ctx, "unfreeze", func(t *game.Table) error { return t.Unfreeze() })
}

// Snapshot returns the current public state.
func (a *Actor) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := a.do(ctx, "snapshot", func(t *game.Table) error {
		snap = t.Snapshot()
		return nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	return snap, nil
}

// SeatOf returns the seat held by player, or -1.
func (a *Actor) SeatOf(ctx context.Context, player string) (int, error) {
	seat := -1
	err := a.do(ctx, "seat_of", func(t *game.Table) error {
		seat = t.SeatOf(player)
		return nil
	})
	if err != nil {
		return -1, err
	}
	return seat, nil
}
