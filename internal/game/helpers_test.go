package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/poker"
)

func testConfig(seats int) Config {
	return Config{MaxSeats: seats, SmallBlind: 5, BigBlind: 10, MinBuyIn: 10, MaxBuyIn: 10000}
}

// stackedDeck deals holes[i] to the i-th seat dealt (clockwise from the
// button) and then the board in order.
func stackedDeck(holes []string, board string) TableOption {
	parsed := make([][]poker.Card, len(holes))
	for i, h := range holes {
		parsed[i] = poker.MustParseCards(h)
	}
	var top []poker.Card
	for round := range 2 {
		for i := range parsed {
			top = append(top, parsed[i][round])
		}
	}
	top = append(top, poker.MustParseCards(board)...)
	return WithDeckFactory(func() *poker.Deck { return poker.NewStackedDeck(top...) })
}

// newTestTable seats one player per stack in seats 0..n-1.
func newTestTable(t *testing.T, stacks []int, opts ...TableOption) *Table {
	t.Helper()
	seats := max(len(stacks), 2)
	opts = append([]TableOption{WithHandIDs(sequentialIDs())}, opts...)
	tbl, err := NewTable("t1", testConfig(seats), opts...)
	require.NoError(t, err)
	for i, stack := range stacks {
		_, err := tbl.Join(fmt.Sprintf("p%d", i), i, stack)
		require.NoError(t, err)
	}
	tbl.Drain()
	return tbl
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("hand-%d", n)
	}
}

type actor struct {
	t    *testing.T
	tbl  *Table
	seqs map[int]uint64
}

func newActor(t *testing.T, tbl *Table) *actor {
	return &actor{t: t, tbl: tbl, seqs: make(map[int]uint64)}
}

func (a *actor) try(seat int, typ ActionType, amount int) error {
	a.seqs[seat]++
	return a.tbl.Act(ActionRequest{TableID: a.tbl.ID(), Seat: seat, Type: typ, Amount: amount, ClientSeq: a.seqs[seat]})
}

func (a *actor) do(seat int, typ ActionType, amount int) {
	a.t.Helper()
	require.NoError(a.t, a.try(seat, typ, amount), "seat %d %s %d", seat, typ, amount)
}

func stacks(tbl *Table) []int {
	out := make([]int, len(tbl.seats))
	for i, s := range tbl.seats {
		out[i] = s.Stack
	}
	return out
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func eventsOf(events []Event, typ EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func describe(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%d %s to=%d %+v\n", e.Seq, e.Type, e.To, e.Payload)
	}
	return b.String()
}
