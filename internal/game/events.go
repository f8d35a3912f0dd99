package game

import (
	"time"

	"github.com/lox/holdemtable/poker"
)

// EventType represents a table event type with type safety
type EventType string

const (
	EventPlayerSeated      EventType = "PLAYER_SEATED"
	EventPlayerLeft        EventType = "PLAYER_LEFT"
	EventSeatStatusChanged EventType = "SEAT_STATUS_CHANGED"
	EventHandStarted       EventType = "HAND_STARTED"
	EventHoleCardsDealt    EventType = "HOLE_CARDS_DEALT"
	EventBlindsPosted      EventType = "BLINDS_POSTED"
	EventActionRequested   EventType = "ACTION_REQUESTED"
	EventActionApplied     EventType = "ACTION_APPLIED"
	EventStreetDealt       EventType = "STREET_DEALT"
	EventBetReturned       EventType = "BET_RETURNED"
	EventShowdown          EventType = "SHOWDOWN"
	EventPotAwarded        EventType = "POT_AWARDED"
	EventHandSettled       EventType = "HAND_SETTLED"
	EventHandVoided        EventType = "HAND_VOIDED"
	EventTableFrozen       EventType = "TABLE_FROZEN"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Public is the recipient of events every observer may see.
const Public = -1

// Event is one entry of a table's ordered outbound stream. Seq increases by
// one per event on a table.
type Event struct {
	Seq     uint64    `json:"seq"`
	TableID string    `json:"tableId"`
	HandID  string    `json:"handId,omitempty"`
	Type    EventType `json:"type"`
	To      int       `json:"to"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Visible reports whether the occupant of seat may see the event. Pass
// Public for spectators.
func (e Event) Visible(seat int) bool {
	return e.To == Public || (seat != Public && e.To == seat)
}

type PlayerSeatedPayload struct {
	Seat   int    `json:"seat"`
	Player string `json:"player"`
	Stack  int    `json:"stack"`
}

type PlayerLeftPayload struct {
	Seat    int    `json:"seat"`
	Player  string `json:"player"`
	CashOut int    `json:"cashOut"`
}

// SeatStatusPayload carries the seat's public status. A seat that drops
// mid-hand reports DISCONNECTED with Connected false and ACTIVE again on
// return.
type SeatStatusPayload struct {
	Seat      int        `json:"seat"`
	Status    SeatStatus `json:"status"`
	Connected bool       `json:"connected"`
}

type HandStartedPayload struct {
	Number       int        `json:"number"`
	DealerSeat   int        `json:"dealerSeat"`
	Button       string     `json:"button"`
	SmallBlind   int        `json:"smallBlindSeat"`
	BigBlind     int        `json:"bigBlindSeat"`
	Participants []SeatView `json:"participants"`
}

type HoleCardsPayload struct {
	Seat  int          `json:"seat"`
	Cards []poker.Card `json:"cards"`
}

type BlindsPostedPayload struct {
	SmallBlindSeat   int `json:"smallBlindSeat"`
	SmallBlindAmount int `json:"smallBlindAmount"`
	BigBlindSeat     int `json:"bigBlindSeat"`
	BigBlindAmount   int `json:"bigBlindAmount"`
}

type ActionAppliedPayload struct {
	Seat      int        `json:"seat"`
	Type      ActionType `json:"type"`
	Amount    int        `json:"amount"`
	BetTo     int        `json:"betTo"`
	Stack     int        `json:"stack"`
	Timeout   bool       `json:"timeout,omitempty"`
	PotTotals []int      `json:"potTotals"`
}

type StreetDealtPayload struct {
	Street Street       `json:"street"`
	Cards  []poker.Card `json:"cards"`
	Board  []poker.Card `json:"board"`
}

type BetReturnedPayload struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

type ShowdownHand struct {
	Seat        int            `json:"seat"`
	Cards       []poker.Card   `json:"cards"`
	Rank        poker.HandRank `json:"rank"`
	Description string         `json:"description"`
}

type ShowdownPayload struct {
	Board []poker.Card   `json:"board"`
	Hands []ShowdownHand `json:"hands"`
}

// PotAward records how one pot was divided.
type PotAward struct {
	PotIndex int         `json:"potIndex"`
	Amount   int         `json:"amount"`
	Winners  []int       `json:"winners"`
	Shares   map[int]int `json:"shares"`
}

type HandSettledPayload struct {
	FinalStacks map[int]int  `json:"finalStacks"`
	Board       []poker.Card `json:"board"`
	Actions     []Action     `json:"actions"`
	Awards      []PotAward   `json:"awards"`
	Showdown    bool         `json:"showdown"`
}

type HandVoidedPayload struct {
	Reason  string      `json:"reason"`
	Refunds map[int]int `json:"refunds"`
}

type TableFrozenPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
