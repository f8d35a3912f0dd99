package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	tbl, err := NewTable("t1", Config{MaxSeats: 2, SmallBlind: 5, BigBlind: 10, MinBuyIn: 100, MaxBuyIn: 1000})
	require.NoError(t, err)

	tests := []struct {
		name    string
		player  string
		seat    int
		buyIn   int
		want    int
		wantErr error
	}{
		{name: "explicit seat", player: "alice", seat: 1, buyIn: 500, want: 1},
		{name: "already seated", player: "alice", seat: -1, buyIn: 500, wantErr: ErrAlreadySeated},
		{name: "seat taken", player: "bob", seat: 1, buyIn: 500, wantErr: ErrSeatTaken},
		{name: "seat out of range", player: "bob", seat: 7, buyIn: 500, wantErr: ErrInvalidSeat},
		{name: "buy-in too low", player: "bob", seat: -1, buyIn: 99, wantErr: ErrBuyInTooLow},
		{name: "buy-in too high", player: "bob", seat: -1, buyIn: 1001, wantErr: ErrBuyInTooHigh},
		{name: "empty player", player: "", seat: -1, buyIn: 500, wantErr: ErrInvalidPlayer},
		{name: "first open seat", player: "bob", seat: -1, buyIn: 100, want: 0},
		{name: "room full", player: "carol", seat: -1, buyIn: 500, wantErr: ErrRoomFull},
	}

	// Cases build on each other, so they run in order.
	for _, tc := range tests {
		seat, err := tbl.Join(tc.player, tc.seat, tc.buyIn)
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, seat, tc.name)
	}

	seated := eventsOf(tbl.Drain(), EventPlayerSeated)
	require.Len(t, seated, 2)
	assert.Equal(t, PlayerSeatedPayload{Seat: 1, Player: "alice", Stack: 500}, seated[0].Payload)
	assert.Equal(t, 0, tbl.SeatOf("bob"))
	assert.Equal(t, -1, tbl.SeatOf("carol"))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{MaxSeats: 1, SmallBlind: 5, BigBlind: 10, MinBuyIn: 100, MaxBuyIn: 1000},
		{MaxSeats: 6, SmallBlind: 0, BigBlind: 10, MinBuyIn: 100, MaxBuyIn: 1000},
		{MaxSeats: 6, SmallBlind: 10, BigBlind: 5, MinBuyIn: 100, MaxBuyIn: 1000},
		{MaxSeats: 6, SmallBlind: 5, BigBlind: 10, MinBuyIn: 5, MaxBuyIn: 1000},
		{MaxSeats: 6, SmallBlind: 5, BigBlind: 10, MinBuyIn: 100, MaxBuyIn: 50},
	}
	for _, cfg := range bad {
		assert.Error(t, cfg.Validate(), "%+v", cfg)
		_, err := NewTable("x", cfg)
		assert.Error(t, err)
	}
}

func TestStartHandPreconditions(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000})
	err := tbl.StartHand()
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, KindState, KindOf(err))

	_, err = tbl.Join("p1", 1, 1000)
	require.NoError(t, err)
	require.NoError(t, tbl.StartHand())
	require.ErrorIs(t, tbl.StartHand(), ErrHandInProgress)
	assert.Equal(t, TablePlaying, tbl.Status())
}

func TestActRejections(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.ErrorIs(t, tbl.Act(ActionRequest{Seat: 0, Type: Call, ClientSeq: 1}), ErrHandNotActive)

	require.NoError(t, tbl.StartHand())
	require.ErrorIs(t, tbl.Act(ActionRequest{TableID: "other", Seat: 0, Type: Call, ClientSeq: 1}), ErrWrongTable)
	require.ErrorIs(t, tbl.Act(ActionRequest{Seat: 5, Type: Call, ClientSeq: 1}), ErrNotSeated)
	require.ErrorIs(t, tbl.Act(ActionRequest{Seat: 0, Type: Call, ClientSeq: 0}), ErrStaleSequence)
}

func TestSequenceIDsAreConsumedOnce(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.NoError(t, tbl.StartHand())

	// Rejected requests do not consume their sequence id.
	require.ErrorIs(t, tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 5}), ErrNotYourTurn)
	require.NoError(t, tbl.Act(ActionRequest{Seat: 0, Type: Call, ClientSeq: 1}))
	require.NoError(t, tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 5}))

	// Flop: seat 1 acts first. Replaying an id is a conflict, not a second action.
	before := stacks(tbl)
	err := tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 5})
	require.ErrorIs(t, err, ErrStaleSequence)
	assert.Equal(t, KindConflict, KindOf(err))
	err = tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 4})
	require.ErrorIs(t, err, ErrStaleSequence)
	assert.Equal(t, before, stacks(tbl))
	assert.Len(t, tbl.Hand().Actions, 2)

	require.NoError(t, tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 6}))
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("folds when facing a bet", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 1000})
		require.NoError(t, tbl.StartHand())
		seat, turn, ok := tbl.Turn()
		require.True(t, ok)

		require.ErrorIs(t, tbl.Timeout(seat, turn-1), ErrStaleTimeout)
		require.ErrorIs(t, tbl.Timeout(1, turn), ErrStaleTimeout)
		require.NoError(t, tbl.Timeout(seat, turn))

		require.Nil(t, tbl.Hand())
		applied := eventsOf(tbl.Drain(), EventActionApplied)
		require.Len(t, applied, 1)
		p := applied[0].Payload.(ActionAppliedPayload)
		assert.Equal(t, Fold, p.Type)
		assert.True(t, p.Timeout)
	})

	t.Run("checks when free", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 1000})
		require.NoError(t, tbl.StartHand())
		newActor(t, tbl).do(0, Call, 0)

		seat, turn, _ := tbl.Turn()
		require.Equal(t, 1, seat)
		require.NoError(t, tbl.Timeout(seat, turn))
		assert.Equal(t, Flop, tbl.Hand().Street)
		last := tbl.Hand().Actions[len(tbl.Hand().Actions)-1]
		assert.Equal(t, Check, last.Type)
		assert.True(t, last.Timeout)

		// The old turn can no longer fire.
		require.ErrorIs(t, tbl.Timeout(seat, turn), ErrStaleTimeout)
	})
}

func TestPauseVoidsHand(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000, 1000})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)
	a.do(0, Raise, 50)
	tbl.Drain()

	require.NoError(t, tbl.Pause("operator"))
	assert.Nil(t, tbl.Hand())
	assert.Equal(t, TableWaiting, tbl.Status())
	assert.Equal(t, []int{1000, 1000, 1000}, stacks(tbl))

	voided := eventsOf(tbl.Drain(), EventHandVoided)
	require.Len(t, voided, 1)
	assert.Equal(t, HandVoidedPayload{Reason: "operator", Refunds: map[int]int{0: 50, 1: 5, 2: 10}}, voided[0].Payload)
}

func TestLeave(t *testing.T) {
	t.Parallel()

	t.Run("between hands", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 700})
		require.NoError(t, tbl.Leave(1))
		left := eventsOf(tbl.Drain(), EventPlayerLeft)
		require.Len(t, left, 1)
		assert.Equal(t, PlayerLeftPayload{Seat: 1, Player: "p1", CashOut: 700}, left[0].Payload)
		assert.Equal(t, -1, tbl.SeatOf("p1"))
		require.ErrorIs(t, tbl.Leave(1), ErrNotSeated)
	})

	t.Run("mid-hand folds and vacates at settlement", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 1000, 1000})
		require.NoError(t, tbl.StartHand())

		require.NoError(t, tbl.Leave(1)) // small blind, not on turn
		assert.Equal(t, StatusFolded, tbl.seats[1].Status)
		assert.Equal(t, 1, tbl.SeatOf("p1"), "seat is held until the hand ends")

		newActor(t, tbl).do(0, Fold, 0)
		require.Nil(t, tbl.Hand())
		events := tbl.Drain()
		left := eventsOf(events, EventPlayerLeft)
		require.Len(t, left, 1)
		assert.Equal(t, PlayerLeftPayload{Seat: 1, Player: "p1", CashOut: 995}, left[0].Payload)
		assert.Equal(t, []int{1000, 0, 1005}, stacks(tbl))
	})

	t.Run("leaving on turn ends the hand", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 1000})
		require.NoError(t, tbl.StartHand())
		require.NoError(t, tbl.Leave(0))
		assert.Nil(t, tbl.Hand())
		assert.Equal(t, []int{0, 1005}, stacks(tbl))
	})

	t.Run("everyone leaving voids the hand", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable(t, []int{1000, 1000, 1000})
		require.NoError(t, tbl.StartHand())
		a := newActor(t, tbl)
		a.do(0, AllIn, 0)
		a.do(1, AllIn, 0)
		// Seats 0 and 1 are all-in; seat 2 folds by leaving and the other two leave.
		require.NoError(t, tbl.Leave(0))
		require.NoError(t, tbl.Leave(1))
		require.NotNil(t, tbl.Hand())
		require.NoError(t, tbl.Leave(2))
		assert.Nil(t, tbl.Hand())
		events := tbl.Drain()
		assert.Len(t, eventsOf(events, EventHandVoided), 1)
		assert.Len(t, eventsOf(events, EventPlayerLeft), 3)
	})
}

func TestDisconnectAndReconnect(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000, 1000})
	require.NoError(t, tbl.Disconnect(2))
	view, err := tbl.Seat(2)
	require.NoError(t, err)
	assert.Equal(t, StatusDisconnected, view.Status)
	assert.False(t, view.Connected)

	require.NoError(t, tbl.StartHand())
	assert.Equal(t, []int{0, 1}, tbl.Hand().Participants(), "disconnected seats are not dealt in")
	require.NoError(t, tbl.Pause("test"))

	require.NoError(t, tbl.Reconnect(2))
	view, _ = tbl.Seat(2)
	assert.Equal(t, StatusWaiting, view.Status)

	require.NoError(t, tbl.StartHand())
	require.Len(t, tbl.Hand().Participants(), 3)

	// Mid-hand the seat stays in and gets its cards again on return.
	tbl.Drain()
	require.NoError(t, tbl.Disconnect(0))
	assert.Equal(t, StatusActive, tbl.seats[0].Status)
	view, _ = tbl.Seat(0)
	assert.Equal(t, StatusDisconnected, view.Status)
	changed := eventsOf(tbl.Drain(), EventSeatStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, SeatStatusPayload{Seat: 0, Status: StatusDisconnected, Connected: false}, changed[0].Payload)

	require.NoError(t, tbl.Reconnect(0))
	events := tbl.Drain()
	holes := eventsOf(events, EventHoleCardsDealt)
	require.Len(t, holes, 1)
	assert.Equal(t, 0, holes[0].To)
	changed = eventsOf(events, EventSeatStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, StatusActive, changed[0].Payload.(SeatStatusPayload).Status)
}

func TestSitOut(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000, 1000})
	require.NoError(t, tbl.SitOut(1))
	require.NoError(t, tbl.StartHand())
	assert.Equal(t, []int{0, 2}, tbl.Hand().Participants())
	require.NoError(t, tbl.Pause("test"))

	require.NoError(t, tbl.SitIn(1))
	assert.True(t, tbl.CanStart())
	require.NoError(t, tbl.StartHand())
	assert.Len(t, tbl.Hand().Participants(), 3)
}

func TestBustedSeatSitsOut(t *testing.T) {
	t.Parallel()

	// Seat 1 is dealt first and holds aces; seat 0 is the short button.
	tbl := newTestTable(t, []int{20, 1000},
		stackedDeck([]string{"As Ad", "7c 2d"}, "Ks 9h 4c 3s Jd"))
	require.NoError(t, tbl.StartHand())
	newActor(t, tbl).do(0, AllIn, 0)
	newActor(t, tbl).do(1, Call, 0)

	require.Nil(t, tbl.Hand())
	view, _ := tbl.Seat(0)
	assert.Equal(t, 0, view.Stack)
	assert.Equal(t, StatusSeatedOut, view.Status)
	assert.False(t, tbl.CanStart())
}

func TestFatalErrorFreezesTable(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.NoError(t, tbl.StartHand())
	tbl.Drain()

	tbl.seats[1].Stack += 7 // chips from nowhere
	err := tbl.Act(ActionRequest{Seat: 0, Type: Call, ClientSeq: 1})
	require.ErrorIs(t, err, ErrChipConservation)
	assert.True(t, IsFatal(err))
	assert.Equal(t, TableFrozen, tbl.Status())
	assert.ErrorIs(t, tbl.FrozenReason(), ErrChipConservation)

	frozen := eventsOf(tbl.Drain(), EventTableFrozen)
	require.Len(t, frozen, 1)
	assert.Equal(t, "CHIP_CONSERVATION", frozen[0].Payload.(TableFrozenPayload).Code)

	require.ErrorIs(t, tbl.Act(ActionRequest{Seat: 1, Type: Check, ClientSeq: 1}), ErrTableFrozen)
	require.ErrorIs(t, tbl.StartHand(), ErrTableFrozen)
	_, err = tbl.Join("late", -1, 100)
	require.ErrorIs(t, err, ErrTableFrozen)

	require.NoError(t, tbl.Unfreeze())
	assert.Equal(t, TableWaiting, tbl.Status())
	assert.Nil(t, tbl.Hand())
	assert.Len(t, eventsOf(tbl.Drain(), EventHandVoided), 1)
	require.ErrorIs(t, tbl.Unfreeze(), ErrTableNotFrozen)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.NoError(t, tbl.StartHand())
	snap := tbl.Snapshot()

	assert.Equal(t, "t1", snap.ID)
	assert.Equal(t, TablePlaying, snap.Status)
	assert.Equal(t, "hand-1", snap.HandID)
	assert.Equal(t, Preflop, snap.Street)
	assert.Equal(t, 0, snap.Actor)
	// The unmatched part of the big blind is its own layer until called.
	assert.Equal(t, []Pot{{Amount: 10, Eligible: []int{0, 1}}, {Amount: 5, Eligible: []int{1}}}, snap.Pots)
	require.Len(t, snap.Seats, 2)
	assert.True(t, snap.Seats[0].HasCards)
	assert.Equal(t, 995, snap.Seats[0].Stack)
}
