package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/poker"
)

// Hand is one deal, from blinds to settlement. It mutates the table's seats
// directly and reports everything it does through emit.
type Hand struct {
	ID             string
	Number         int
	Street         Street
	Button         int
	SmallBlindSeat int
	BigBlindSeat   int
	Board          []poker.Card
	Actions        []Action

	seats        []*Seat
	participants []int
	deck         *poker.Deck
	pots         *PotManager
	betting      *BettingRound
	smallBlind   int
	bigBlind     int
	actor        int
	turn         int
	startTotal   int
	awards       []PotAward
	showdown     bool

	emit   func(typ EventType, to int, payload any)
	logger *log.Logger
}

type handParams struct {
	id           string
	number       int
	seats        []*Seat
	participants []int
	button       int
	smallBlind   int
	bigBlind     int
	deck         *poker.Deck
	emit         func(typ EventType, to int, payload any)
	logger       *log.Logger
}

func newHand(p handParams) *Hand {
	h := &Hand{
		ID:           p.id,
		Number:       p.number,
		Street:       Dealing,
		Button:       p.button,
		seats:        p.seats,
		participants: p.participants,
		deck:         p.deck,
		pots:         NewPotManager(len(p.seats), p.participants),
		smallBlind:   p.smallBlind,
		bigBlind:     p.bigBlind,
		actor:        -1,
		emit:         p.emit,
		logger:       p.logger,
	}
	for _, i := range h.participants {
		h.startTotal += h.seats[i].Stack
	}
	return h
}

// start deals hole cards, posts blinds and requests the first action.
func (h *Hand) start() error {
	if len(h.participants) == 2 {
		// Heads-up: the button posts the small blind and acts first preflop.
		h.SmallBlindSeat = h.Button
		h.BigBlindSeat = h.nextParticipant(h.Button)
	} else {
		h.SmallBlindSeat = h.nextParticipant(h.Button)
		h.BigBlindSeat = h.nextParticipant(h.SmallBlindSeat)
	}

	views := make([]SeatView, 0, len(h.participants))
	for _, i := range h.participants {
		views = append(views, h.seats[i].view())
	}
	h.emit(EventHandStarted, Public, HandStartedPayload{
		Number:       h.Number,
		DealerSeat:   h.Button,
		Button:       h.seats[h.Button].Player,
		SmallBlind:   h.SmallBlindSeat,
		BigBlind:     h.BigBlindSeat,
		Participants: views,
	})

	// One card at a time, twice around, starting left of the button.
	order := h.clockwiseFrom(h.Button)
	for range 2 {
		for _, i := range order {
			cards, err := h.deck.Deal(1)
			if err != nil {
				return ErrDeckFailure.withf("dealing hole cards: %v", err)
			}
			h.seats[i].Hole = append(h.seats[i].Hole, cards[0])
		}
	}
	for _, i := range order {
		h.emit(EventHoleCardsDealt, i, HoleCardsPayload{Seat: i, Cards: h.seats[i].Hole})
	}

	h.Street = Preflop
	h.betting = NewBettingRound(Preflop, h.seats, h.bigBlind)
	sb := h.post(h.SmallBlindSeat, h.smallBlind)
	bb := h.post(h.BigBlindSeat, h.bigBlind)
	h.betting.CurrentBet = h.bigBlind
	if bb < h.bigBlind {
		// A short big blind only sets the bet to the largest blind posted.
		h.betting.CurrentBet = max(sb, bb)
	}
	h.emit(EventBlindsPosted, Public, BlindsPostedPayload{
		SmallBlindSeat:   h.SmallBlindSeat,
		SmallBlindAmount: sb,
		BigBlindSeat:     h.BigBlindSeat,
		BigBlindAmount:   bb,
	})

	if err := h.checkInvariants(); err != nil {
		return err
	}
	return h.advance(h.BigBlindSeat)
}

// post takes a forced bet, capped at the seat's stack.
func (h *Hand) post(seat, amount int) int {
	s := h.seats[seat]
	chips := min(amount, s.Stack)
	s.Stack -= chips
	h.pots.Add(seat, chips)
	h.betting.Post(seat, chips)
	if s.Stack == 0 {
		s.Status = StatusAllIn
	}
	return chips
}

// Actor returns the seat to act, or -1 when no betting round is open.
func (h *Hand) Actor() int {
	return h.actor
}

// Turn is a counter that increases each time an action is requested.
func (h *Hand) Turn() int {
	return h.turn
}

// Participants lists the seats dealt into the hand.
func (h *Hand) Participants() []int {
	return h.participants
}

// Pots returns the current pot layering.
func (h *Hand) Pots() []Pot {
	return h.pots.Pots()
}

// Options returns the legal actions for the seat to act.
func (h *Hand) Options() (ActionOptions, bool) {
	if h.actor < 0 {
		return ActionOptions{}, false
	}
	opts := h.betting.Options(h.actor)
	opts.Turn = h.turn
	return opts, true
}

func (h *Hand) participates(seat int) bool {
	for _, i := range h.participants {
		if i == seat {
			return true
		}
	}
	return false
}

// apply validates and commits an action by the seat to act.
func (h *Hand) apply(seat int, t ActionType, amount int, timeout bool) error {
	if h.actor < 0 {
		return ErrHandNotActive
	}
	if seat != h.actor {
		return ErrNotYourTurn.withf("seat %d is to act", h.actor)
	}
	m, err := h.betting.Validate(seat, t, amount)
	if err != nil {
		return err
	}
	h.commit(seat, m, timeout)
	if err := h.checkInvariants(); err != nil {
		return err
	}
	return h.advance(seat)
}

// forceFold folds a seat regardless of whose turn it is.
func (h *Hand) forceFold(seat int) error {
	if !h.seats[seat].Live() {
		return nil
	}
	if seat == h.actor {
		return h.apply(seat, Fold, 0, false)
	}
	h.commit(seat, Move{Type: Fold, BetTo: h.betting.Bet(seat)}, false)
	if err := h.checkInvariants(); err != nil {
		return err
	}
	if h.contenders() == 1 || h.betting.Complete() {
		return h.advance(h.actor)
	}
	return nil
}

func (h *Hand) commit(seat int, m Move, timeout bool) {
	s := h.seats[seat]
	s.Stack -= m.Chips
	h.pots.Add(seat, m.Chips)
	h.betting.Apply(seat, m)
	switch {
	case m.Type == Fold:
		s.Status = StatusFolded
		h.pots.Fold(seat)
	case s.Stack == 0:
		s.Status = StatusAllIn
	}

	h.Actions = append(h.Actions, Action{
		Seq:     len(h.Actions) + 1,
		Seat:    seat,
		Type:    m.Type,
		Amount:  m.Chips,
		BetTo:   m.BetTo,
		Street:  h.Street,
		Timeout: timeout,
	})

	pots := h.pots.Pots()
	totals := make([]int, len(pots))
	for i, p := range pots {
		totals[i] = p.Amount
	}
	h.emit(EventActionApplied, Public, ActionAppliedPayload{
		Seat:      seat,
		Type:      m.Type,
		Amount:    m.Chips,
		BetTo:     m.BetTo,
		Stack:     s.Stack,
		Timeout:   timeout,
		PotTotals: totals,
	})
	h.logger.Debug("Player action", "seat", seat, "action", m.Type, "amount", m.Chips, "street", h.Street, "timeout", timeout)
}

// advance moves play on after seat acted: to the next actor, the next
// street, a run-out, or settlement.
func (h *Hand) advance(from int) error {
	if h.contenders() == 1 {
		return h.finishUncontested()
	}
	if !h.betting.Complete() {
		h.actor = h.betting.NextToAct(from)
		h.turn++
		opts := h.betting.Options(h.actor)
		opts.Turn = h.turn
		h.emit(EventActionRequested, Public, opts)
		return nil
	}

	h.actor = -1
	h.logger.Debug("Betting round complete", "street", h.Street)
	if h.Street == River {
		return h.runShowdown()
	}
	if h.live() < 2 {
		for h.Street < River {
			if err := h.dealStreet(); err != nil {
				return err
			}
		}
		return h.runShowdown()
	}
	if err := h.dealStreet(); err != nil {
		return err
	}
	h.betting = NewBettingRound(h.Street, h.seats, h.bigBlind)
	return h.advance(h.Button)
}

func (h *Hand) dealStreet() error {
	h.Street++
	cards, err := h.deck.Deal(h.Street.boardSize() - len(h.Board))
	if err != nil {
		return ErrDeckFailure.withf("dealing %s: %v", h.Street, err)
	}
	h.Board = append(h.Board, cards...)
	h.emit(EventStreetDealt, Public, StreetDealtPayload{
		Street: h.Street,
		Cards:  cards,
		Board:  append([]poker.Card(nil), h.Board...),
	})
	h.logger.Debug("Dealt street", "street", h.Street, "cards", poker.FormatCards(cards))
	return nil
}

func (h *Hand) contenders() int {
	n := 0
	for _, i := range h.participants {
		if h.seats[i].Contending() {
			n++
		}
	}
	return n
}

func (h *Hand) live() int {
	n := 0
	for _, i := range h.participants {
		if h.seats[i].Live() {
			n++
		}
	}
	return n
}

// nextParticipant returns the first participant clockwise after seat.
func (h *Hand) nextParticipant(seat int) int {
	return h.clockwiseFrom(seat)[0]
}

// clockwiseFrom orders participants clockwise starting after seat.
func (h *Hand) clockwiseFrom(seat int) []int {
	n := len(h.seats)
	out := make([]int, 0, len(h.participants))
	for step := 1; step <= n; step++ {
		i := (seat + step) % n
		if h.participates(i) {
			out = append(out, i)
		}
	}
	return out
}

// checkInvariants verifies chip conservation and pot accounting.
func (h *Hand) checkInvariants() error {
	total := h.pots.Total()
	for _, i := range h.participants {
		total += h.seats[i].Stack
	}
	if total != h.startTotal {
		return ErrChipConservation.withf("stacks plus pots is %d, hand started with %d", total, h.startTotal)
	}
	sum := 0
	for _, p := range h.pots.Pots() {
		sum += p.Amount
	}
	if sum != h.pots.Total() {
		return ErrPotMismatch.withf("pots hold %d, contributions are %d", sum, h.pots.Total())
	}
	return nil
}
