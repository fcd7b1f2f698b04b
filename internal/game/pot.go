package game

import (
	"slices"
)

// Pot is the main pot or a side pot. Eligible holds player indexes.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Cap      int   `json:"cap"` // per-player contribution level that closes this pot
}

// CalculatePots partitions cumulative contributions into a main pot and
// side pots. A new level starts at every distinct all-in contribution; the
// last pot takes everything above the highest all-in. Folded players'
// chips stay in the pots they reached but they are never eligible.
func CalculatePots(players []*Player) []Pot {
	var levels []int
	top := 0
	for _, p := range players {
		if p.Status == AllInStatus && p.TotalBet > 0 {
			levels = append(levels, p.TotalBet)
		}
		top = max(top, p.TotalBet)
	}
	if top == 0 {
		return nil
	}
	levels = append(levels, top)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	pots := make([]Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		pot := Pot{Cap: level}
		for i, p := range players {
			pot.Amount += min(p.TotalBet, level) - min(p.TotalBet, prev)
			if p.InHand() && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		prev = level
		if pot.Amount == 0 {
			continue
		}
		// Nobody left to win this layer: fold it into the pot below.
		if len(pot.Eligible) == 0 && len(pots) > 0 {
			pots[len(pots)-1].Amount += pot.Amount
			pots[len(pots)-1].Cap = level
			continue
		}
		pots = append(pots, pot)
	}
	return pots
}

// PotTotal sums a pot list.
func PotTotal(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
