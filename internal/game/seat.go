package game

import "github.com/lox/holdemtable/poker"

// Seat is one position at the table.
type Seat struct {
	Index     int
	Player    string
	Stack     int
	Hole      []poker.Card
	Status    SeatStatus
	Connected bool

	sittingOut bool
	leaving    bool
	lastSeq    uint64
}

// Occupied reports whether a player holds the seat.
func (s *Seat) Occupied() bool {
	return s.Player != ""
}

// Live reports whether the seat is still in the betting rotation.
func (s *Seat) Live() bool {
	return s.Status == StatusActive
}

// Contending reports whether the seat can still win a pot.
func (s *Seat) Contending() bool {
	return s.Status == StatusActive || s.Status == StatusAllIn
}

func (s *Seat) canStart() bool {
	return s.Occupied() && s.Stack > 0 && s.Connected && !s.sittingOut && !s.leaving
}

func (s *Seat) vacate() {
	*s = Seat{Index: s.Index, Status: StatusEmpty}
}

// SeatView is the public projection of a seat. Hole cards are never included.
type SeatView struct {
	Index      int        `json:"index"`
	Player     string     `json:"player,omitempty"`
	Stack      int        `json:"stack"`
	Status     SeatStatus `json:"status"`
	Connected  bool       `json:"connected"`
	SittingOut bool       `json:"sittingOut,omitempty"`
	HasCards   bool       `json:"hasCards,omitempty"`
}

// PublicStatus is the status other players see. A seat still live in the
// hand reports DISCONNECTED while its connection is down; it keeps its cards
// and is timed out on its turn.
func (s *Seat) PublicStatus() SeatStatus {
	if s.Status == StatusActive && !s.Connected {
		return StatusDisconnected
	}
	return s.Status
}

func (s *Seat) view() SeatView {
	return SeatView{
		Index:      s.Index,
		Player:     s.Player,
		Stack:      s.Stack,
		Status:     s.PublicStatus(),
		Connected:  s.Connected,
		SittingOut: s.sittingOut,
		HasCards:   len(s.Hole) > 0,
	}
}
