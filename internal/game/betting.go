package game

// BettingRound encapsulates the state for one street of betting.
type BettingRound struct {
	Street        Street
	CurrentBet    int // Street total every live seat must match
	MinRaise      int // Smallest legal raise increment
	LastAggressor int
	BigBlind      int // Store for resetting min raise on new streets

	seats   []*Seat
	bets    []int
	pending []bool // seat still owes an action this street
	closed  []bool // seat acted since the last full raise; it may not re-raise
}

// Move is a validated action, resolved to the chips it moves.
type Move struct {
	Type  ActionType
	Chips int // chips moved from the stack into the pot
	BetTo int // seat's street total after the move
}

// NewBettingRound opens a street. Every live seat owes an action.
func NewBettingRound(street Street, seats []*Seat, bigBlind int) *BettingRound {
	br := &BettingRound{
		Street:        street,
		MinRaise:      bigBlind,
		LastAggressor: -1,
		BigBlind:      bigBlind,
		seats:         seats,
		bets:          make([]int, len(seats)),
		pending:       make([]bool, len(seats)),
		closed:        make([]bool, len(seats)),
	}
	for i, s := range seats {
		br.pending[i] = s.Live()
	}
	return br
}

// Post records a forced bet. It does not count as the seat acting.
func (br *BettingRound) Post(seat, chips int) {
	br.bets[seat] += chips
}

// Bet returns the seat's street total.
func (br *BettingRound) Bet(seat int) int {
	return br.bets[seat]
}

// ToCall returns the chips seat needs to match the current bet.
func (br *BettingRound) ToCall(seat int) int {
	return max(br.CurrentBet-br.bets[seat], 0)
}

// Pending reports whether seat still owes an action this street.
func (br *BettingRound) Pending(seat int) bool {
	return br.pending[seat] && br.seats[seat].Live()
}

func (br *BettingRound) othersCanAct(seat int) bool {
	for i, s := range br.seats {
		if i != seat && s.Live() {
			return true
		}
	}
	return false
}

// canRaise reports whether the seat may increase the bet at all.
func (br *BettingRound) canRaise(seat int) bool {
	s := br.seats[seat]
	return !br.closed[seat] && s.Stack > br.ToCall(seat) && br.othersCanAct(seat)
}

// Validate checks an action for the seat to act and resolves it to a Move.
// A CALL the seat cannot cover, or a RAISE to its whole stack, becomes ALL_IN.
func (br *BettingRound) Validate(seat int, t ActionType, amount int) (Move, error) {
	s := br.seats[seat]
	bet := br.bets[seat]
	toCall := br.ToCall(seat)
	maxTo := bet + s.Stack

	switch t {
	case Fold:
		return Move{Type: Fold, BetTo: bet}, nil

	case Check:
		if toCall > 0 {
			return Move{}, ErrCannotCheck.withf("%d to call", toCall)
		}
		return Move{Type: Check, BetTo: bet}, nil

	case Call:
		if toCall == 0 {
			return Move{}, ErrNothingToCall
		}
		if toCall >= s.Stack {
			return Move{Type: AllIn, Chips: s.Stack, BetTo: maxTo}, nil
		}
		return Move{Type: Call, Chips: toCall, BetTo: br.CurrentBet}, nil

	case Raise:
		if amount <= 0 {
			return Move{}, ErrInvalidAction.withf("raise needs a positive raise-to amount")
		}
		if amount > maxTo {
			return Move{}, ErrNotEnoughChips.withf("raise to %d exceeds stack (max %d)", amount, maxTo)
		}
		if amount == maxTo {
			return br.allIn(seat)
		}
		if !br.canRaise(seat) {
			return Move{}, ErrRaiseNotAllowed
		}
		if amount <= br.CurrentBet || amount-br.CurrentBet < br.MinRaise {
			return Move{}, ErrRaiseTooSmall.withf("minimum raise is to %d", br.CurrentBet+br.MinRaise)
		}
		return Move{Type: Raise, Chips: amount - bet, BetTo: amount}, nil

	case AllIn:
		return br.allIn(seat)
	}
	return Move{}, ErrInvalidAction.withf("unknown action %d", int(t))
}

func (br *BettingRound) allIn(seat int) (Move, error) {
	s := br.seats[seat]
	if s.Stack == 0 {
		return Move{}, ErrNotEnoughChips.withf("no chips behind")
	}
	maxTo := br.bets[seat] + s.Stack
	if maxTo > br.CurrentBet && !br.canRaise(seat) {
		return Move{}, ErrRaiseNotAllowed.withf("all-in for %d would re-open betting", maxTo)
	}
	return Move{Type: AllIn, Chips: s.Stack, BetTo: maxTo}, nil
}

// Apply records a validated move. The caller moves the chips and updates
// the seat's status.
func (br *BettingRound) Apply(seat int, m Move) {
	br.bets[seat] += m.Chips
	br.pending[seat] = false
	br.closed[seat] = true

	if m.BetTo <= br.CurrentBet {
		return
	}
	raiseBy := m.BetTo - br.CurrentBet
	br.CurrentBet = m.BetTo
	br.LastAggressor = seat

	if raiseBy >= br.MinRaise {
		// Full raise: everyone else acts again and may re-raise.
		br.MinRaise = raiseBy
		for i, s := range br.seats {
			if i == seat {
				continue
			}
			br.closed[i] = false
			br.pending[i] = s.Live()
		}
		return
	}
	// Undersized all-in: seats below the new level must respond, but
	// those who already acted only get to call or fold.
	for i, s := range br.seats {
		if i != seat && s.Live() && br.bets[i] < br.CurrentBet {
			br.pending[i] = true
		}
	}
}

// Complete reports whether no further action is owed on this street.
func (br *BettingRound) Complete() bool {
	live := 0
	lastLive := -1
	for i, s := range br.seats {
		if s.Live() {
			live++
			lastLive = i
		}
	}
	if live == 0 {
		return true
	}
	if live == 1 {
		return br.bets[lastLive] >= br.CurrentBet
	}
	for i := range br.seats {
		if br.Pending(i) {
			return false
		}
	}
	return true
}

// NextToAct returns the first pending live seat clockwise after from, or -1.
func (br *BettingRound) NextToAct(from int) int {
	n := len(br.seats)
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if br.Pending(i) {
			return i
		}
	}
	return -1
}

// Options lists the legal actions for seat.
func (br *BettingRound) Options(seat int) ActionOptions {
	s := br.seats[seat]
	toCall := br.ToCall(seat)
	opts := ActionOptions{Seat: seat, ToCall: toCall, Legal: []ActionType{Fold}}

	if toCall == 0 {
		opts.Legal = append(opts.Legal, Check)
	} else if toCall < s.Stack {
		opts.Legal = append(opts.Legal, Call)
	} else {
		opts.Legal = append(opts.Legal, AllIn)
		return opts
	}

	if !br.canRaise(seat) {
		return opts
	}
	maxTo := br.bets[seat] + s.Stack
	minTo := br.CurrentBet + br.MinRaise
	if maxTo > minTo {
		opts.Legal = append(opts.Legal, Raise)
		opts.MinRaiseTo = minTo
	} else {
		opts.MinRaiseTo = maxTo
	}
	opts.MaxRaiseTo = maxTo
	opts.Legal = append(opts.Legal, AllIn)
	return opts
}
