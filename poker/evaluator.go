package poker

import (
	"fmt"
	"math/bits"
)

// HandRank represents the strength of a poker hand. Higher values are
// stronger. The category sits above bit 20 and the five tie-break ranks
// follow as 4-bit fields, most significant first.
type HandRank uint32

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

const categoryShift = 20

const wheelMask = 1<<Ace | 1<<Two | 1<<Three | 1<<Four | 1<<Five

func (t HandType) String() string {
	if int(t) >= len(handTypeNames) {
		return "Unknown"
	}
	return handTypeNames[t]
}

var handTypeNames = [...]string{
	"High Card",
	"Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
}

// Type returns the category of the hand.
func (hr HandRank) Type() HandType {
	return HandType(hr >> categoryShift)
}

// Ranks returns the five tie-break ranks, most significant first. Unused
// trailing slots are zero.
func (hr HandRank) Ranks() [5]uint8 {
	var out [5]uint8
	for i := range out {
		out[i] = uint8(hr>>(16-4*i)) & 0xF
	}
	return out
}

// String returns a human-readable hand description, e.g. "Full House (K over 7)".
func (hr HandRank) String() string {
	r := hr.Ranks()
	name := hr.Type().String()
	switch hr.Type() {
	case Straight, StraightFlush:
		return fmt.Sprintf("%s (%c high)", name, rankChars[r[0]])
	case FullHouse:
		return fmt.Sprintf("%s (%c over %c)", name, rankChars[r[0]], rankChars[r[1]])
	case FourOfAKind, ThreeOfAKind, Pair:
		return fmt.Sprintf("%s (%c)", name, rankChars[r[0]])
	case TwoPair:
		return fmt.Sprintf("%s (%c and %c)", name, rankChars[r[0]], rankChars[r[1]])
	default:
		return fmt.Sprintf("%s (%c high)", name, rankChars[r[0]])
	}
}

// Evaluate ranks the best five-card hand that can be made from 5 to 7
// distinct cards.
func Evaluate(cards ...Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("evaluate: need 5 to 7 cards, got %d", len(cards))
	}
	var h Hand
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("evaluate: invalid card %#x", uint64(c))
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("evaluate: duplicate card %s", c)
		}
		h.AddCard(c)
	}
	return evaluateUnchecked(h), nil
}

// EvaluateHand ranks a hand bitset holding 5 to 7 cards. Any other size
// yields zero, which is weaker than every real hand.
func EvaluateHand(h Hand) HandRank {
	if n := h.CountCards(); n < 5 || n > 7 {
		return 0
	}
	return evaluateUnchecked(h)
}

func evaluateUnchecked(h Hand) HandRank {
	var counts [13]uint8
	var all uint16
	flushSuit := -1
	for suit := range uint8(4) {
		mask := h.GetSuitMask(suit)
		all |= mask
		if bits.OnesCount16(mask) >= 5 {
			flushSuit = int(suit)
		}
		for m := mask; m != 0; m &= m - 1 {
			counts[bits.TrailingZeros16(m)]++
		}
	}

	if flushSuit >= 0 {
		if high, ok := straightHigh(h.GetSuitMask(uint8(flushSuit))); ok {
			return pack(StraightFlush, high)
		}
	}

	quad, trips, pairs := -1, -1, []uint8(nil)
	for r := 12; r >= 0; r-- {
		switch {
		case counts[r] == 4 && quad < 0:
			quad = r
		case counts[r] == 3 && trips < 0:
			trips = r
		case counts[r] >= 2:
			pairs = append(pairs, uint8(r))
		}
	}

	if quad >= 0 {
		return pack(FourOfAKind, append([]uint8{uint8(quad)}, topRanks(all&^(1<<quad), 1)...)...)
	}
	if trips >= 0 && len(pairs) > 0 {
		// A second set of trips counts as the pair.
		return pack(FullHouse, uint8(trips), pairs[0])
	}
	if flushSuit >= 0 {
		return pack(Flush, topRanks(h.GetSuitMask(uint8(flushSuit)), 5)...)
	}
	if high, ok := straightHigh(all); ok {
		return pack(Straight, high)
	}
	if trips >= 0 {
		return pack(ThreeOfAKind, append([]uint8{uint8(trips)}, topRanks(all&^(1<<trips), 2)...)...)
	}
	if len(pairs) >= 2 {
		used := uint16(1)<<pairs[0] | uint16(1)<<pairs[1]
		return pack(TwoPair, append([]uint8{pairs[0], pairs[1]}, topRanks(all&^used, 1)...)...)
	}
	if len(pairs) == 1 {
		return pack(Pair, append([]uint8{pairs[0]}, topRanks(all&^(1<<pairs[0]), 3)...)...)
	}
	return pack(HighCard, topRanks(all, 5)...)
}

func pack(t HandType, ranks ...uint8) HandRank {
	hr := HandRank(t) << categoryShift
	for i, r := range ranks {
		if i == 5 {
			break
		}
		hr |= HandRank(r) << (16 - 4*i)
	}
	return hr
}

// straightHigh returns the top rank of the best straight in mask. The wheel
// (A-2-3-4-5) reports Five as its high card.
func straightHigh(mask uint16) (uint8, bool) {
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4, true
	}
	if mask&wheelMask == wheelMask {
		return Five, true
	}
	return 0, false
}

// topRanks returns the n highest ranks set in mask, descending.
func topRanks(mask uint16, n int) []uint8 {
	out := make([]uint8, 0, n)
	for len(out) < n && mask != 0 {
		r := uint8(bits.Len16(mask) - 1)
		out = append(out, r)
		mask &^= 1 << r
	}
	return out
}

// Compare returns 1 if a is stronger, -1 if b is stronger and 0 for a tie.
func Compare(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
