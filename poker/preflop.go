package poker

// HoleCategory is a coarse preflop strength bucket for two hole cards.
type HoleCategory uint8

const (
	CategoryUnknown HoleCategory = iota
	CategoryTrash
	CategoryWeak
	CategoryMedium
	CategoryStrong
	CategoryPremium
)

func (c HoleCategory) String() string {
	return [...]string{"unknown", "trash", "weak", "medium", "strong", "premium"}[c]
}

// Strength maps the category onto [0,1] for use in betting heuristics.
func (c HoleCategory) Strength() float64 {
	return [...]float64{0, 0.15, 0.35, 0.55, 0.75, 0.92}[c]
}

// CategorizeHole buckets two hole cards.
//
//	premium: JJ+, AK
//	strong:  TT, AQ, AJ
//	medium:  77-99, suited broadway
//	weak:    22-66, suited connectors and one-gappers
//	trash:   everything else
func CategorizeHole(hole Hand) HoleCategory {
	cards := hole.Cards()
	if len(cards) != 2 {
		return CategoryUnknown
	}
	hi, lo := cards[0].Value(), cards[1].Value()
	suited := cards[0].Suit() == cards[1].Suit()
	pair := hi == lo

	switch {
	case pair && hi >= 11, hi == 14 && lo == 13:
		return CategoryPremium
	case pair && hi == 10, hi == 14 && lo >= 11:
		return CategoryStrong
	case pair && hi >= 7, suited && lo >= 10:
		return CategoryMedium
	case pair, suited && hi-lo <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}
