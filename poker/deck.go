package poker

import (
	"errors"
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/randutil"
)

// ErrDeckExhausted is returned when a deal asks for more cards than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck
type Deck struct {
	cards   [52]Card
	next    int
	rng     *rand.Rand
	stacked int // leading cards that Shuffle leaves in place
}

// NewDeck creates a new shuffled deck. A nil rng draws from a
// cryptographically seeded source.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.NewSecure()
	}
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewStackedDeck returns a deck whose first cards are top, in order, followed
// by the remaining cards in a fixed order. Used for reproducible hands.
func NewStackedDeck(top ...Card) *Deck {
	d := &Deck{}
	d.fill()
	for i, c := range top {
		for j := i; j < len(d.cards); j++ {
			if d.cards[j] == c {
				d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
				break
			}
		}
	}
	d.stacked = len(d.cards)
	return d
}

func (d *Deck) fill() {
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
}

// Shuffle shuffles the deck using Fisher-Yates and resets the deal position.
func (d *Deck) Shuffle() {
	d.next = 0
	if d.stacked > 0 || d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
