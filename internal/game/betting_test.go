package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinRaiseEnforcement(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	// Heads-up: the button (seat 0) posted the small blind and acts first.
	seat, _, ok := tbl.Turn()
	require.True(t, ok)
	require.Equal(t, 0, seat)

	require.ErrorIs(t, a.try(0, Raise, 15), ErrRaiseTooSmall)
	a.do(0, Raise, 20)

	a.do(1, Raise, 50) // raise of 30 sets the new minimum
	err := a.try(0, Raise, 70)
	require.ErrorIs(t, err, ErrRaiseTooSmall)
	assert.Equal(t, KindValidation, KindOf(err))
	a.do(0, Raise, 80)

	opts, ok := tbl.Options()
	require.True(t, ok)
	assert.Equal(t, 1, opts.Seat)
	assert.Equal(t, 30, opts.ToCall)
	assert.Equal(t, 110, opts.MinRaiseTo)
	assert.Equal(t, 1000, opts.MaxRaiseTo)
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	require.ErrorIs(t, a.try(0, Check, 0), ErrCannotCheck)
	require.ErrorIs(t, a.try(0, Raise, 5000), ErrNotEnoughChips)
	require.ErrorIs(t, a.try(0, Raise, 0), ErrInvalidAction)
	require.ErrorIs(t, a.try(1, Call, 0), ErrNotYourTurn)

	a.do(0, Call, 0)
	require.ErrorIs(t, a.try(1, Call, 0), ErrNothingToCall)
	a.do(1, Check, 0)

	// Rejections leave the state untouched.
	assert.Equal(t, []int{990, 990}, stacks(tbl))
	assert.Equal(t, Flop, tbl.Hand().Street)
}

func TestShortCallBecomesAllIn(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 60})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	a.do(0, Raise, 200)
	a.do(1, Call, 0)

	require.Nil(t, tbl.Hand(), "hand should have run out and settled")
	events := tbl.Drain()
	applied := eventsOf(events, EventActionApplied)
	require.Len(t, applied, 2)
	last := applied[1].Payload.(ActionAppliedPayload)
	assert.Equal(t, AllIn, last.Type)
	assert.Equal(t, 50, last.Amount)

	returned := eventsOf(events, EventBetReturned)
	require.Len(t, returned, 1)
	assert.Equal(t, BetReturnedPayload{Seat: 0, Amount: 140}, returned[0].Payload)
	assert.Len(t, eventsOf(events, EventStreetDealt), 3)
	assert.Len(t, eventsOf(events, EventShowdown), 1)

	total := 0
	for _, s := range stacks(tbl) {
		total += s
	}
	assert.Equal(t, 1060, total)
}

func TestIncompleteAllInDoesNotReopenBetting(t *testing.T) {
	t.Parallel()

	// Button 0, small blind 1, big blind 2 with 45 chips.
	tbl := newTestTable(t, []int{1000, 1000, 45})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	a.do(0, Raise, 30) // full raise of 20
	a.do(1, Call, 0)   // small blind completes to 30
	a.do(2, AllIn, 0)  // 45 is only 15 more: not a full raise

	require.ErrorIs(t, a.try(0, Raise, 100), ErrRaiseNotAllowed)
	require.ErrorIs(t, a.try(0, AllIn, 0), ErrRaiseNotAllowed)

	opts, ok := tbl.Options()
	require.True(t, ok)
	assert.Equal(t, []ActionType{Fold, Call}, opts.Legal)
	assert.Equal(t, 15, opts.ToCall)

	a.do(0, Call, 0)
	a.do(1, Call, 0)
	assert.Equal(t, Flop, tbl.Hand().Street)
}

func TestUnactedSeatMayRaiseAfterIncompleteAllIn(t *testing.T) {
	t.Parallel()

	// Seat 0 is on the button; seat 3 acts first preflop and goes all-in short.
	tbl := newTestTable(t, []int{1000, 1000, 1000, 15})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	a.do(3, AllIn, 0) // 15 against a 10 bet
	opts, ok := tbl.Options()
	require.True(t, ok)
	assert.Equal(t, 0, opts.Seat)
	assert.Contains(t, opts.Legal, Raise)
	assert.Equal(t, 25, opts.MinRaiseTo)
	a.do(0, Raise, 25)
}

func TestBigBlindOption(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []int{1000, 1000, 1000})
	require.NoError(t, tbl.StartHand())
	a := newActor(t, tbl)

	a.do(0, Call, 0)
	a.do(1, Call, 0)

	seat, _, ok := tbl.Turn()
	require.True(t, ok)
	assert.Equal(t, 2, seat, "big blind keeps the option after limps")
	opts, _ := tbl.Options()
	assert.Equal(t, []ActionType{Fold, Check, Raise, AllIn}, opts.Legal)

	a.do(2, Raise, 40)
	seat, _, _ = tbl.Turn()
	assert.Equal(t, 0, seat)
}

func TestActionTypeText(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"FOLD", "CHECK", "CALL", "RAISE", "ALL_IN", "all_in"} {
		_, err := ParseActionType(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseActionType("BET")
	require.ErrorIs(t, err, ErrInvalidAction)

	var a ActionType
	require.NoError(t, a.UnmarshalText([]byte("ALL_IN")))
	assert.Equal(t, AllIn, a)
	text, err := Raise.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RAISE", string(text))
}
