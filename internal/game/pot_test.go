package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPotManagerSidePots(t *testing.T) {
	t.Parallel()

	pm := NewPotManager(3, []int{0, 1, 2})
	pm.Add(0, 30)
	pm.Add(1, 50)
	pm.Add(2, 100)

	assert.Equal(t, []Pot{
		{Amount: 90, Eligible: []int{0, 1, 2}},
		{Amount: 40, Eligible: []int{1, 2}},
		{Amount: 50, Eligible: []int{2}},
	}, pm.Pots())
	assert.Equal(t, 180, pm.Total())
}

func TestPotManagerLayering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		contrib []int
		folded  []int
		want    []Pot
	}{
		{
			name:    "equal contributions make one pot",
			contrib: []int{20, 20, 20},
			want:    []Pot{{Amount: 60, Eligible: []int{0, 1, 2}}},
		},
		{
			name:    "folded blind does not split the pot",
			contrib: []int{5, 10, 10},
			folded:  []int{0},
			want:    []Pot{{Amount: 25, Eligible: []int{1, 2}}},
		},
		{
			name:    "folded top contribution joins the pot below",
			contrib: []int{100, 50, 50},
			folded:  []int{0},
			want:    []Pot{{Amount: 200, Eligible: []int{1, 2}}},
		},
		{
			name:    "all contributors folded leaves pot to the rest",
			contrib: []int{10, 10, 0},
			folded:  []int{0, 1},
			want:    []Pot{{Amount: 20, Eligible: []int{2}}},
		},
		{
			name:    "two all-ins below a live bet",
			contrib: []int{40, 40, 15, 25},
			want: []Pot{
				{Amount: 60, Eligible: []int{0, 1, 2, 3}},
				{Amount: 30, Eligible: []int{0, 1, 3}},
				{Amount: 30, Eligible: []int{0, 1}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			participants := make([]int, len(tc.contrib))
			for i := range participants {
				participants[i] = i
			}
			pm := NewPotManager(len(tc.contrib), participants)
			total := 0
			for seat, c := range tc.contrib {
				pm.Add(seat, c)
				total += c
			}
			for _, seat := range tc.folded {
				pm.Fold(seat)
			}
			pots := pm.Pots()
			assert.Equal(t, tc.want, pots)

			sum := 0
			for _, p := range pots {
				sum += p.Amount
			}
			assert.Equal(t, total, sum, "pots must account for every chip")
		})
	}
}

func TestPotManagerReturnUncalled(t *testing.T) {
	t.Parallel()

	pm := NewPotManager(3, []int{0, 1, 2})
	pm.Add(0, 30)
	pm.Add(1, 50)
	pm.Add(2, 100)
	seat, amount := pm.ReturnUncalled()
	assert.Equal(t, 2, seat)
	assert.Equal(t, 50, amount)
	assert.Equal(t, 50, pm.Contribution(2))

	seat, amount = pm.ReturnUncalled()
	assert.Equal(t, -1, seat, "matched bets are not refunded")
	assert.Zero(t, amount)

	folded := NewPotManager(2, []int{0, 1})
	folded.Add(0, 40)
	folded.Add(1, 10)
	folded.Fold(0)
	seat, _ = folded.ReturnUncalled()
	assert.Equal(t, -1, seat, "a folded seat forfeits its bet")
}

func TestPotManagerRefunds(t *testing.T) {
	t.Parallel()

	pm := NewPotManager(3, []int{0, 1, 2})
	pm.Add(0, 5)
	pm.Add(1, 10)
	assert.Equal(t, map[int]int{0: 5, 1: 10}, pm.Refunds())
	assert.Zero(t, pm.Total())
	assert.Empty(t, pm.Pots())
}
