package game

import "slices"

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"` // Seat indices, ascending
}

// PotManager records what each seat has put in during a hand and derives
// the main and side pots from those contributions on demand.
type PotManager struct {
	contrib      []int
	folded       []bool
	participants []int
}

// NewPotManager creates a pot manager for a table of numSeats seats.
// participants lists the seats dealt into the hand.
func NewPotManager(numSeats int, participants []int) *PotManager {
	return &PotManager{
		contrib:      make([]int, numSeats),
		folded:       make([]bool, numSeats),
		participants: slices.Clone(participants),
	}
}

// Add records chips committed by seat.
func (pm *PotManager) Add(seat, chips int) {
	pm.contrib[seat] += chips
}

// Fold marks seat as no longer eligible for any pot. Its chips stay in.
func (pm *PotManager) Fold(seat int) {
	pm.folded[seat] = true
}

// Contribution returns the chips seat has committed this hand.
func (pm *PotManager) Contribution(seat int) int {
	return pm.contrib[seat]
}

// Total returns the total amount in all pots
func (pm *PotManager) Total() int {
	total := 0
	for _, c := range pm.contrib {
		total += c
	}
	return total
}

// Pots layers contributions into a main pot and side pots. Each distinct
// contribution level closes a layer; a seat is eligible for a layer when it
// has not folded and contributed at least that level. Adjacent layers with
// the same eligible set are merged. Chips in a layer nobody can win are
// added to the pot below it.
func (pm *PotManager) Pots() []Pot {
	var levels []int
	for _, c := range pm.contrib {
		if c > 0 && !slices.Contains(levels, c) {
			levels = append(levels, c)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	dead := 0
	prev := 0
	for _, level := range levels {
		amount := 0
		var eligible []int
		for seat, c := range pm.contrib {
			if c >= level {
				amount += level - prev
				if !pm.folded[seat] {
					eligible = append(eligible, seat)
				}
			}
		}
		prev = level

		switch {
		case len(eligible) == 0 && len(pots) > 0:
			pots[len(pots)-1].Amount += amount
		case len(eligible) == 0:
			dead += amount
		case len(pots) > 0 && slices.Equal(pots[len(pots)-1].Eligible, eligible):
			pots[len(pots)-1].Amount += amount
		default:
			pots = append(pots, Pot{Amount: amount + dead, Eligible: eligible})
			dead = 0
		}
	}

	if dead > 0 {
		// Everyone who paid in folded; the pot belongs to whoever is left.
		var live []int
		for _, seat := range pm.participants {
			if !pm.folded[seat] {
				live = append(live, seat)
			}
		}
		pots = append(pots, Pot{Amount: dead, Eligible: live})
	}
	return pots
}

// ReturnUncalled refunds the part of the largest contribution that no other
// seat matched. It returns the seat and amount refunded, or (-1, 0). Folded
// seats are never refunded.
func (pm *PotManager) ReturnUncalled() (int, int) {
	top, second := -1, 0
	for seat, c := range pm.contrib {
		switch {
		case top < 0 || c > pm.contrib[top]:
			if top >= 0 {
				second = pm.contrib[top]
			}
			top = seat
		case c > second:
			second = c
		}
	}
	if top < 0 || pm.folded[top] {
		return -1, 0
	}
	excess := pm.contrib[top] - second
	if excess <= 0 {
		return -1, 0
	}
	pm.contrib[top] -= excess
	return top, excess
}

// Clear empties the pots once they have been paid out.
func (pm *PotManager) Clear() {
	clear(pm.contrib)
}

// Refunds zeroes every contribution and returns what each seat put in.
func (pm *PotManager) Refunds() map[int]int {
	out := make(map[int]int)
	for seat, c := range pm.contrib {
		if c > 0 {
			out[seat] = c
			pm.contrib[seat] = 0
		}
	}
	return out
}
