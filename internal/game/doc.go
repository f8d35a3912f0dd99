// Package game implements an authoritative Texas Hold'em table.
//
// A Table owns its seats and at most one Hand. Every mutation goes through a
// Table method, which either applies the change and queues events or returns
// a typed *Error and leaves state untouched. Tables are not safe for
// concurrent use; see package table for the serialized actor that owns one.
//
// # Basic Usage
//
//	t, _ := game.NewTable("t1", game.Config{MaxSeats: 6, SmallBlind: 5, BigBlind: 10, MinBuyIn: 200, MaxBuyIn: 2000})
//	t.Join("alice", 0, 1000)
//	t.Join("bob", 1, 1000)
//	t.StartHand()
//	seat, _, _ := t.Turn()
//	t.Act(game.ActionRequest{Seat: seat, Type: game.Call, ClientSeq: 1})
//	for _, e := range t.Drain() {
//	    // publish e
//	}
//
// # Deterministic Testing
//
// Shuffles use a ChaCha8 source seeded from crypto/rand. Tests inject a
// seeded RNG or a stacked deck:
//
//	t, _ := game.NewTable("t1", cfg, game.WithRNG(randutil.New(42)))
//	t, _ := game.NewTable("t1", cfg, game.WithDeckFactory(func() *poker.Deck {
//	    return poker.NewStackedDeck(poker.MustParseCards("As Kd Ah Kc")...)
//	}))
//
// # Chips
//
// Chips are integers. After every accepted action the participants' stacks
// plus the pots equal what they brought to the hand. A violation aborts the
// hand and freezes the table until Unfreeze.
package game
