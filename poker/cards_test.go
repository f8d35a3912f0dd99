package poker

import (
	"encoding/json"
	"testing"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank() != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank())
	}
	if aceSpades.Suit() != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit())
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}

	twoClubs := NewCard(Two, Clubs)
	if twoClubs.String() != "2c" {
		t.Errorf("Expected '2c', got %s", twoClubs.String())
	}

	var bogus Card = 3
	assert.False(t, bogus.Valid())
	assert.Equal(t, "??", bogus.String())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "lowercase ten", input: "td", wantCard: NewCard(Ten, Diamonds)},
		{name: "uppercase suit", input: "KC", wantCard: NewCard(King, Clubs)},
		{name: "mixed case", input: "qH", wantCard: NewCard(Queen, Hearts)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCard, card)
		})
	}
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			card := NewCard(rank, suit)
			str := card.String()
			if seen[str] {
				t.Errorf("Duplicate card: %s", str)
			}
			seen[str] = true

			parsed, err := ParseCard(str)
			require.NoError(t, err)
			assert.Equal(t, card, parsed, "round trip for %s", str)
		}
	}
	assert.Len(t, seen, 52)
}

func TestCardJSON(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("As Td 2c")
	data, err := json.Marshal(cards)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Td","2c"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cards, decoded)

	require.Error(t, json.Unmarshal([]byte(`["Zz"]`), &decoded))
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("As Kh")
	queenDiamonds := MustParseCards("Qd")[0]

	hand := NewHand(cards...)
	assert.True(t, hand.HasCard(cards[0]))
	assert.True(t, hand.HasCard(cards[1]))
	assert.False(t, hand.HasCard(queenDiamonds))
	assert.Equal(t, 2, hand.CountCards())

	hand.AddCard(queenDiamonds)
	assert.Equal(t, 3, hand.CountCards())
	assert.Len(t, hand.Cards(), 3)
	assert.Equal(t, uint16(1<<Ace), hand.GetSuitMask(Spades))
}

func TestDeck(t *testing.T) {
	t.Parallel()
	deck := NewDeck(randutil.New(42))

	first, err := deck.Deal(2)
	require.NoError(t, err)
	second, err := deck.Deal(3)
	require.NoError(t, err)
	for _, c1 := range first {
		for _, c2 := range second {
			if c1 == c2 {
				t.Error("Dealt same card twice")
			}
		}
	}

	rest, err := deck.Deal(47)
	require.NoError(t, err)
	assert.Len(t, rest, 47)
	assert.Equal(t, 0, deck.Remaining())

	all := NewHand(append(append(first, second...), rest...)...)
	assert.Equal(t, 52, all.CountCards())

	_, err = deck.Deal(1)
	require.ErrorIs(t, err, ErrDeckExhausted)

	deck.Shuffle()
	assert.Equal(t, 52, deck.Remaining())
}

func TestDeckSeedIsReproducible(t *testing.T) {
	t.Parallel()
	a, _ := NewDeck(randutil.New(7)).Deal(52)
	b, _ := NewDeck(randutil.New(7)).Deal(52)
	assert.Equal(t, a, b)
}

func TestNilRNGDeckIsComplete(t *testing.T) {
	t.Parallel()
	cards, err := NewDeck(nil).Deal(52)
	require.NoError(t, err)
	assert.Equal(t, 52, NewHand(cards...).CountCards())
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()
	top := MustParseCards("As Ks Qs Js Ts 9s")
	deck := NewStackedDeck(top...)
	got, err := deck.Deal(len(top))
	require.NoError(t, err)
	assert.Equal(t, top, got)

	deck.Shuffle()
	again, _ := deck.Deal(len(top))
	assert.Equal(t, top, again, "stacked decks ignore shuffles")

	rest, _ := deck.Deal(deck.Remaining())
	assert.Equal(t, 52, NewHand(append(again, rest...)...).CountCards())
}

func BenchmarkParseCard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseCard("As")
	}
}
