package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtable/poker"
)

// Config holds the fixed parameters of a table.
type Config struct {
	MaxSeats   int
	SmallBlind int
	BigBlind   int
	MinBuyIn   int
	MaxBuyIn   int
}

// DefaultConfig returns a six-handed 5/10 table.
func DefaultConfig() Config {
	return Config{
		MaxSeats:   6,
		SmallBlind: 5,
		BigBlind:   10,
		MinBuyIn:   200,
		MaxBuyIn:   2000,
	}
}

// Validate checks the table parameters are playable.
func (c Config) Validate() error {
	switch {
	case c.MaxSeats < 2 || c.MaxSeats > 10:
		return fmt.Errorf("max seats must be between 2 and 10, got %d", c.MaxSeats)
	case c.SmallBlind <= 0:
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	case c.BigBlind < c.SmallBlind:
		return fmt.Errorf("big blind %d is below small blind %d", c.BigBlind, c.SmallBlind)
	case c.MinBuyIn < c.BigBlind:
		return fmt.Errorf("minimum buy-in %d is below the big blind %d", c.MinBuyIn, c.BigBlind)
	case c.MaxBuyIn < c.MinBuyIn:
		return fmt.Errorf("maximum buy-in %d is below minimum %d", c.MaxBuyIn, c.MinBuyIn)
	}
	return nil
}

// Table owns the seats of one table and the hand in progress. It is not
// safe for concurrent use; callers serialize access.
type Table struct {
	id     string
	cfg    Config
	seats  []*Seat
	button int
	status TableStatus
	hand   *Hand
	hands  int
	frozen error

	outbox []Event
	seq    uint64

	logger  *log.Logger
	clock   quartz.Clock
	newDeck func() *poker.Deck
	handID  func() string
}

// NewTable creates an empty table.
func NewTable(id string, cfg Config, opts ...TableOption) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	tc := defaultTableConfig()
	for _, opt := range opts {
		opt(tc)
	}
	t := &Table{
		id:      id,
		cfg:     cfg,
		seats:   make([]*Seat, cfg.MaxSeats),
		button:  -1,
		logger:  tc.logger.WithPrefix("table").With("table", id),
		clock:   tc.clock,
		newDeck: tc.newDeck,
		handID:  tc.handID,
	}
	for i := range t.seats {
		t.seats[i] = &Seat{Index: i}
	}
	return t, nil
}

func (t *Table) ID() string          { return t.id }
func (t *Table) Config() Config      { return t.cfg }
func (t *Table) Status() TableStatus { return t.status }
func (t *Table) Button() int         { return t.button }

// Hand returns the hand in progress, or nil.
func (t *Table) Hand() *Hand {
	return t.hand
}

// Seat returns the public view of seat i.
func (t *Table) Seat(i int) (SeatView, error) {
	if i < 0 || i >= len(t.seats) {
		return SeatView{}, ErrInvalidSeat.withf("seat %d", i)
	}
	return t.seats[i].view(), nil
}

// SeatOf returns the seat held by player, or -1.
func (t *Table) SeatOf(player string) int {
	for _, s := range t.seats {
		if s.Occupied() && s.Player == player {
			return s.Index
		}
	}
	return -1
}

// HoleCards returns the cards dealt to seat in the current hand.
func (t *Table) HoleCards(seat int) []poker.Card {
	if seat < 0 || seat >= len(t.seats) {
		return nil
	}
	return t.seats[seat].Hole
}

// Drain returns and clears the events produced since the last call.
func (t *Table) Drain() []Event {
	out := t.outbox
	t.outbox = nil
	return out
}

func (t *Table) emit(handID string, typ EventType, to int, payload any) {
	t.seq++
	t.outbox = append(t.outbox, Event{
		Seq:     t.seq,
		TableID: t.id,
		HandID:  handID,
		Type:    typ,
		To:      to,
		Time:    t.clock.Now(),
		Payload: payload,
	})
}

func (t *Table) occupied(seat int) (*Seat, error) {
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return nil, ErrNotSeated.withf("seat %d", seat)
	}
	return t.seats[seat], nil
}

func (t *Table) inHand(seat int) bool {
	return t.hand != nil && !t.hand.Done() && t.hand.participates(seat)
}

// Join seats player with buyIn chips. A negative seat takes the first open
// seat. It returns the seat taken.
func (t *Table) Join(player string, seat, buyIn int) (int, error) {
	if player == "" {
		return -1, ErrInvalidPlayer.withf("player id is empty")
	}
	if t.status == TableFrozen {
		return -1, ErrTableFrozen
	}
	if t.SeatOf(player) >= 0 {
		return -1, ErrAlreadySeated.withf("%s is at seat %d", player, t.SeatOf(player))
	}
	if buyIn < t.cfg.MinBuyIn {
		return -1, ErrBuyInTooLow.withf("minimum is %d", t.cfg.MinBuyIn)
	}
	if buyIn > t.cfg.MaxBuyIn {
		return -1, ErrBuyInTooHigh.withf("maximum is %d", t.cfg.MaxBuyIn)
	}

	if seat >= len(t.seats) {
		return -1, ErrInvalidSeat.withf("seat %d of %d", seat, len(t.seats))
	}
	if seat >= 0 && t.seats[seat].Occupied() {
		return -1, ErrSeatTaken.withf("seat %d", seat)
	}
	if seat < 0 {
		for _, s := range t.seats {
			if !s.Occupied() {
				seat = s.Index
				break
			}
		}
		if seat < 0 {
			return -1, ErrRoomFull
		}
	}

	s := t.seats[seat]
	*s = Seat{Index: seat, Player: player, Stack: buyIn, Status: StatusWaiting, Connected: true}
	t.emit("", EventPlayerSeated, Public, PlayerSeatedPayload{Seat: seat, Player: player, Stack: buyIn})
	t.logger.Info("Player joined", "player", player, "seat", seat, "buyIn", buyIn)
	return seat, nil
}

// Leave removes the occupant of seat. Mid-hand the seat is folded at once
// and vacated when the hand settles.
func (t *Table) Leave(seat int) error {
	s, err := t.occupied(seat)
	if err != nil {
		return err
	}
	if !t.inHand(seat) {
		t.vacate(s)
		return nil
	}
	if t.status == TableFrozen {
		return ErrTableFrozen
	}

	s.leaving = true
	if t.allLeaving() {
		t.hand.void("all players left")
		t.finishHand()
		return nil
	}
	if err := t.hand.forceFold(seat); err != nil {
		return t.handFailed(err)
	}
	if t.hand.Done() {
		t.finishHand()
	}
	return nil
}

func (t *Table) allLeaving() bool {
	for _, i := range t.hand.participants {
		if !t.seats[i].leaving {
			return false
		}
	}
	return true
}

func (t *Table) vacate(s *Seat) {
	player, cashOut := s.Player, s.Stack
	s.vacate()
	t.emit("", EventPlayerLeft, Public, PlayerLeftPayload{Seat: s.Index, Player: player, CashOut: cashOut})
	t.logger.Info("Player left", "player", player, "seat", s.Index, "cashOut", cashOut)
}

// SitOut keeps the seat but skips it when dealing. A seat in the current
// hand plays it out.
func (t *Table) SitOut(seat int) error {
	s, err := t.occupied(seat)
	if err != nil {
		return err
	}
	s.sittingOut = true
	if !t.inHand(seat) {
		s.Status = StatusSeatedOut
	}
	t.emitStatus(s)
	return nil
}

// SitIn reverses SitOut.
func (t *Table) SitIn(seat int) error {
	s, err := t.occupied(seat)
	if err != nil {
		return err
	}
	s.sittingOut = false
	if !t.inHand(seat) {
		s.Status = t.idleStatus(s)
	}
	t.emitStatus(s)
	return nil
}

// Disconnect marks the seat's connection lost. A seat in the hand stays in
// it and is timed out on its turn.
func (t *Table) Disconnect(seat int) error {
	s, err := t.occupied(seat)
	if err != nil {
		return err
	}
	if !s.Connected {
		return nil
	}
	s.Connected = false
	if !t.inHand(seat) {
		s.Status = StatusDisconnected
	}
	t.emitStatus(s)
	t.logger.Info("Player disconnected", "player", s.Player, "seat", seat)
	return nil
}

// Reconnect restores the seat's connection. Mid-hand the hole cards are
// sent to the seat again.
func (t *Table) Reconnect(seat int) error {
	s, err := t.occupied(seat)
	if err != nil {
		return err
	}
	s.Connected = true
	if t.inHand(seat) {
		t.emit(t.hand.ID, EventHoleCardsDealt, seat, HoleCardsPayload{Seat: seat, Cards: s.Hole})
	} else {
		s.Status = t.idleStatus(s)
	}
	t.emitStatus(s)
	t.logger.Info("Player reconnected", "player", s.Player, "seat", seat)
	return nil
}

func (t *Table) idleStatus(s *Seat) SeatStatus {
	switch {
	case !s.Connected:
		return StatusDisconnected
	case s.sittingOut || s.Stack == 0:
		return StatusSeatedOut
	}
	return StatusWaiting
}

func (t *Table) emitStatus(s *Seat) {
	handID := ""
	if t.hand != nil {
		handID = t.hand.ID
	}
	t.emit(handID, EventSeatStatusChanged, Public, SeatStatusPayload{Seat: s.Index, Status: s.PublicStatus(), Connected: s.Connected})
}

// CanStart reports whether StartHand would succeed.
func (t *Table) CanStart() bool {
	return t.status == TableWaiting && t.hand == nil && len(t.eligible()) >= 2
}

func (t *Table) eligible() []int {
	var out []int
	for _, s := range t.seats {
		if s.canStart() {
			out = append(out, s.Index)
		}
	}
	return out
}

// StartHand moves the button and deals a new hand to every eligible seat.
func (t *Table) StartHand() error {
	if t.status == TableFrozen {
		return ErrTableFrozen
	}
	if t.hand != nil {
		return ErrHandInProgress
	}
	eligible := t.eligible()
	if len(eligible) < 2 {
		return ErrNotEnoughPlayers.withf("%d eligible", len(eligible))
	}

	t.button = nextIn(eligible, t.button, len(t.seats))
	for _, s := range t.seats {
		s.Hole = nil
		if !s.Occupied() {
			continue
		}
		if s.canStart() {
			s.Status = StatusActive
		} else {
			s.Status = t.idleStatus(s)
		}
	}

	t.hands++
	t.status = TablePlaying
	h := newHand(handParams{
		id:           t.handID(),
		number:       t.hands,
		seats:        t.seats,
		participants: eligible,
		button:       t.button,
		smallBlind:   t.cfg.SmallBlind,
		bigBlind:     t.cfg.BigBlind,
		deck:         t.newDeck(),
		logger:       t.logger,
	})
	h.emit = func(typ EventType, to int, payload any) { t.emit(h.ID, typ, to, payload) }
	t.hand = h
	t.logger.Info("Hand started", "hand", h.ID, "number", h.Number, "button", t.button, "players", len(eligible))

	if err := h.start(); err != nil {
		return t.handFailed(err)
	}
	if h.Done() {
		t.finishHand()
	}
	return nil
}

// nextIn returns the first seat of sorted that comes clockwise after from.
func nextIn(sorted []int, from, n int) int {
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		for _, s := range sorted {
			if s == i {
				return i
			}
		}
	}
	return sorted[0]
}

// Act applies a player's action.
func (t *Table) Act(req ActionRequest) error {
	if t.status == TableFrozen {
		return ErrTableFrozen
	}
	if req.TableID != "" && req.TableID != t.id {
		return ErrWrongTable.withf("request for %s sent to %s", req.TableID, t.id)
	}
	if t.hand == nil {
		return ErrHandNotActive
	}
	s, err := t.occupied(req.Seat)
	if err != nil {
		return err
	}
	if req.ClientSeq <= s.lastSeq {
		return ErrStaleSequence.withf("sequence %d already consumed (last %d)", req.ClientSeq, s.lastSeq)
	}
	if t.hand.actor != req.Seat {
		return ErrNotYourTurn.withf("seat %d is to act", t.hand.actor)
	}
	if err := t.apply(req.Seat, req.Type, req.Amount, false); err != nil {
		return err
	}
	s.lastSeq = req.ClientSeq
	return nil
}

// Timeout acts for a seat whose deadline passed: CHECK when legal,
// otherwise FOLD. turn must match the request being timed out.
func (t *Table) Timeout(seat, turn int) error {
	if t.status == TableFrozen {
		return ErrTableFrozen
	}
	if t.hand == nil {
		return ErrHandNotActive
	}
	if t.hand.actor != seat || t.hand.turn != turn {
		return ErrStaleTimeout.withf("seat %d turn %d", seat, turn)
	}
	action := Fold
	if opts, _ := t.hand.Options(); opts.Allows(Check) {
		action = Check
	}
	t.logger.Debug("Action timed out", "seat", seat, "turn", turn, "action", action)
	return t.apply(seat, action, 0, true)
}

func (t *Table) apply(seat int, typ ActionType, amount int, timeout bool) error {
	if err := t.hand.apply(seat, typ, amount, timeout); err != nil {
		if IsFatal(err) {
			return t.handFailed(err)
		}
		return err
	}
	if t.hand.Done() {
		t.finishHand()
	}
	return nil
}

// handFailed freezes the table after a fatal error and returns it.
func (t *Table) handFailed(err error) error {
	if !IsFatal(err) {
		return err
	}
	var e *Error
	errors.As(err, &e)
	t.status = TableFrozen
	t.frozen = err
	handID := ""
	if t.hand != nil {
		handID = t.hand.ID
	}
	t.emit(handID, EventTableFrozen, Public, TableFrozenPayload{Code: e.Code, Reason: e.Msg})
	t.logger.Error("Table frozen", "hand", handID, "error", err)
	return err
}

// FrozenReason returns the error that froze the table, or nil.
func (t *Table) FrozenReason() error {
	return t.frozen
}

// Pause voids the hand in progress and refunds every contribution.
func (t *Table) Pause(reason string) error {
	if t.status == TableFrozen {
		return ErrTableFrozen
	}
	if t.hand == nil {
		return nil
	}
	t.hand.void(reason)
	t.finishHand()
	return nil
}

// Unfreeze voids the aborted hand and returns a frozen table to service.
func (t *Table) Unfreeze() error {
	if t.status != TableFrozen {
		return ErrTableNotFrozen
	}
	if t.hand != nil {
		t.hand.void("table unfrozen")
	}
	t.frozen = nil
	t.finishHand()
	t.logger.Warn("Table unfrozen")
	return nil
}

func (t *Table) finishHand() {
	if h := t.hand; h != nil {
		t.logger.Info("Hand complete", "hand", h.ID, "number", h.Number, "showdown", h.showdown)
	}
	t.hand = nil
	t.status = TableWaiting
	for _, s := range t.seats {
		if !s.Occupied() {
			continue
		}
		s.Hole = nil
		if s.leaving {
			t.vacate(s)
			continue
		}
		s.Status = t.idleStatus(s)
	}
}

// Turn returns the seat to act and its turn counter.
func (t *Table) Turn() (seat, turn int, ok bool) {
	if t.hand == nil || t.hand.actor < 0 {
		return -1, 0, false
	}
	return t.hand.actor, t.hand.turn, true
}

// Options returns the legal actions for the seat to act.
func (t *Table) Options() (ActionOptions, bool) {
	if t.hand == nil {
		return ActionOptions{}, false
	}
	return t.hand.Options()
}

// Snapshot is a public, point-in-time view of a table.
type Snapshot struct {
	ID         string       `json:"id"`
	Status     TableStatus  `json:"status"`
	Button     int          `json:"button"`
	SmallBlind int          `json:"smallBlind"`
	BigBlind   int          `json:"bigBlind"`
	Seats      []SeatView   `json:"seats"`
	HandID     string       `json:"handId,omitempty"`
	HandNumber int          `json:"handNumber"`
	Street     Street       `json:"street"`
	Board      []poker.Card `json:"board,omitempty"`
	Pots       []Pot        `json:"pots,omitempty"`
	Actor      int          `json:"actor"`
	Turn       int          `json:"turn"`
	LastSeq    uint64       `json:"lastSeq"`
}

// Snapshot returns the current public state.
func (t *Table) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         t.id,
		Status:     t.status,
		Button:     t.button,
		SmallBlind: t.cfg.SmallBlind,
		BigBlind:   t.cfg.BigBlind,
		HandNumber: t.hands,
		Actor:      -1,
		LastSeq:    t.seq,
	}
	for _, s := range t.seats {
		snap.Seats = append(snap.Seats, s.view())
	}
	if h := t.hand; h != nil {
		snap.HandID = h.ID
		snap.Street = h.Street
		snap.Board = append([]poker.Card(nil), h.Board...)
		snap.Pots = h.Pots()
		snap.Actor = h.actor
		snap.Turn = h.turn
	}
	return snap
}
