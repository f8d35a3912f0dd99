package poker

// Category buckets two hole cards by preflop strength. Larger is stronger.
type Category uint8

const (
	Trash Category = iota
	Weak
	Medium
	Strong
	Premium
)

var categoryNames = [...]string{"Trash", "Weak", "Medium", "Strong", "Premium"}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize buckets a starting hand:
//
//	Premium  JJ+, AK
//	Strong   TT, AQ, AJ
//	Medium   77-99, suited broadway
//	Weak     22-66, suited cards at most two ranks apart
//	Trash    everything else
func Categorize(a, b Card) Category {
	lo, hi := a.Rank(), b.Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	suited := a.Suit() == b.Suit()
	pair := lo == hi

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return Premium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return Strong
	case pair && lo >= Seven, suited && lo >= Ten:
		return Medium
	case pair, suited && hi-lo <= 2:
		return Weak
	}
	return Trash
}
