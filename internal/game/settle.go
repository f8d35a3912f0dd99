package game

import (
	"slices"

	"github.com/lox/holdemtable/poker"
)

// returnUncalled gives back the part of the top bet nobody matched.
func (h *Hand) returnUncalled() {
	seat, amount := h.pots.ReturnUncalled()
	if amount == 0 {
		return
	}
	h.seats[seat].Stack += amount
	h.emit(EventBetReturned, Public, BetReturnedPayload{Seat: seat, Amount: amount})
}

// finishUncontested awards everything to the last seat standing. No further
// cards are dealt.
func (h *Hand) finishUncontested() error {
	h.actor = -1
	h.returnUncalled()
	h.awardPots(func(eligible []int) []int { return eligible })
	return h.settle()
}

func (h *Hand) runShowdown() error {
	h.Street = Showdown
	h.showdown = true
	h.returnUncalled()

	ranks := make(map[int]poker.HandRank)
	payload := ShowdownPayload{Board: h.Board}
	for _, i := range h.clockwiseFrom(h.Button) {
		s := h.seats[i]
		if !s.Contending() {
			continue
		}
		rank, err := poker.Evaluate(append(slices.Clone(s.Hole), h.Board...)...)
		if err != nil {
			return ErrDeckFailure.withf("evaluating seat %d: %v", i, err)
		}
		ranks[i] = rank
		payload.Hands = append(payload.Hands, ShowdownHand{
			Seat:        i,
			Cards:       s.Hole,
			Rank:        rank,
			Description: rank.String(),
		})
	}
	h.emit(EventShowdown, Public, payload)

	h.awardPots(func(eligible []int) []int {
		var best poker.HandRank
		var winners []int
		for _, seat := range eligible {
			r, ok := ranks[seat]
			if !ok {
				continue
			}
			switch poker.Compare(r, best) {
			case 1:
				best = r
				winners = []int{seat}
			case 0:
				winners = append(winners, seat)
			}
		}
		return winners
	})
	return h.settle()
}

// awardPots pays every pot to the winners chosen by pick. Split pots are
// divided evenly; odd chips go to the first winner clockwise from the button.
func (h *Hand) awardPots(pick func(eligible []int) []int) {
	for idx, pot := range h.pots.Pots() {
		winners := h.orderFromButton(pick(pot.Eligible))
		if len(winners) == 0 {
			// Unreachable while every pot has a contending seat.
			h.logger.Error("Pot has no winner", "pot", idx, "amount", pot.Amount, "eligible", pot.Eligible)
			continue
		}
		share := pot.Amount / len(winners)
		odd := pot.Amount % len(winners)
		award := PotAward{PotIndex: idx, Amount: pot.Amount, Winners: winners, Shares: make(map[int]int, len(winners))}
		for n, seat := range winners {
			won := share
			if n == 0 {
				won += odd
			}
			h.seats[seat].Stack += won
			award.Shares[seat] = won
		}
		h.awards = append(h.awards, award)
		h.emit(EventPotAwarded, Public, award)
	}
	h.pots.Clear()
}

func (h *Hand) orderFromButton(seats []int) []int {
	n := len(h.seats)
	out := slices.Clone(seats)
	slices.SortFunc(out, func(a, b int) int {
		return (a-h.Button-1+n)%n - (b-h.Button-1+n)%n
	})
	return out
}

func (h *Hand) settle() error {
	h.Street = Settled
	h.actor = -1
	if err := h.checkInvariants(); err != nil {
		return err
	}
	final := make(map[int]int, len(h.participants))
	for _, i := range h.participants {
		final[i] = h.seats[i].Stack
	}
	h.emit(EventHandSettled, Public, HandSettledPayload{
		FinalStacks: final,
		Board:       h.Board,
		Actions:     slices.Clone(h.Actions),
		Awards:      h.awards,
		Showdown:    h.showdown,
	})
	h.logger.Debug("Hand settled", "hand", h.ID, "showdown", h.showdown, "awards", len(h.awards))
	return nil
}

// void returns every contribution and discards the hand.
func (h *Hand) void(reason string) {
	refunds := h.pots.Refunds()
	for seat, amount := range refunds {
		h.seats[seat].Stack += amount
	}
	h.Street = Settled
	h.actor = -1
	h.emit(EventHandVoided, Public, HandVoidedPayload{Reason: reason, Refunds: refunds})
}

// Done reports whether the hand has been settled or voided.
func (h *Hand) Done() bool {
	return h.Street == Settled
}
