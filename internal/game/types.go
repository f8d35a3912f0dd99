package game

import (
	"fmt"
	"strings"
)

// Street is the position of a hand in its lifecycle. Betting happens on
// Preflop through River.
type Street int

const (
	Dealing Street = iota
	Preflop
	Flop
	Turn
	River
	Showdown
	Settled
)

var streetNames = [...]string{"DEALING", "PREFLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN", "SETTLED"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return fmt.Sprintf("Street(%d)", int(s))
	}
	return streetNames[s]
}

func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// boardSize is the number of community cards visible once s has been dealt.
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	}
	return 0
}

// ActionType represents a player action
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Raise
	AllIn
)

var actionNames = [...]string{"FOLD", "CHECK", "CALL", "RAISE", "ALL_IN"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("ActionType(%d)", int(a))
	}
	return actionNames[a]
}

// ParseActionType decodes the wire name of an action. Unknown names are
// rejected rather than mapped to a default.
func ParseActionType(s string) (ActionType, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return ActionType(i), nil
		}
	}
	return 0, ErrInvalidAction.withf("unknown action %q", s)
}

func (a ActionType) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionNames) {
		return nil, ErrInvalidAction.withf("unknown action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// SeatStatus is the relationship of a seat to the hand being played.
type SeatStatus int

const (
	StatusEmpty SeatStatus = iota
	StatusSeatedOut
	StatusWaiting
	StatusActive
	StatusFolded
	StatusAllIn
	StatusDisconnected
)

var seatStatusNames = [...]string{"EMPTY", "SEATED_OUT", "WAITING", "ACTIVE", "FOLDED", "ALL_IN", "DISCONNECTED"}

func (s SeatStatus) String() string {
	if s < 0 || int(s) >= len(seatStatusNames) {
		return fmt.Sprintf("SeatStatus(%d)", int(s))
	}
	return seatStatusNames[s]
}

func (s SeatStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TableStatus describes whether a table is between hands, mid-hand or
// halted after an integrity failure.
type TableStatus int

const (
	TableWaiting TableStatus = iota
	TablePlaying
	TableFrozen
)

var tableStatusNames = [...]string{"WAITING", "PLAYING", "FROZEN"}

func (s TableStatus) String() string {
	if s < 0 || int(s) >= len(tableStatusNames) {
		return fmt.Sprintf("TableStatus(%d)", int(s))
	}
	return tableStatusNames[s]
}

func (s TableStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Action is one accepted entry of a hand's log. Entries are never modified
// after they are appended.
type Action struct {
	Seq     int        `json:"seq"`
	Seat    int        `json:"seat"`
	Type    ActionType `json:"type"`
	Amount  int        `json:"amount"`
	BetTo   int        `json:"betTo"`
	Street  Street     `json:"street"`
	Timeout bool       `json:"timeout,omitempty"`
}

// ActionRequest is a player's intent as received from the transport.
// For RAISE, Amount is the street total the player is raising to.
type ActionRequest struct {
	TableID   string     `json:"tableId"`
	Seat      int        `json:"seat"`
	Type      ActionType `json:"type"`
	Amount    int        `json:"amount,omitempty"`
	ClientSeq uint64     `json:"clientSeq"`
}

// ActionOptions describes what the seat to act may legally do.
type ActionOptions struct {
	Seat       int          `json:"seat"`
	Turn       int          `json:"turn"`
	ToCall     int          `json:"toCall"`
	MinRaiseTo int          `json:"minRaiseTo,omitempty"`
	MaxRaiseTo int          `json:"maxRaiseTo,omitempty"`
	Legal      []ActionType `json:"legal"`
}

// Allows reports whether a is among the legal actions.
func (o ActionOptions) Allows(a ActionType) bool {
	for _, l := range o.Legal {
		if l == a {
			return true
		}
	}
	return false
}
