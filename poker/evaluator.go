package poker

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidHand is returned when a hand cannot be evaluated.
var ErrInvalidHand = errors.New("invalid hand")

// HandRank is a comparable hand strength. Higher values are stronger and
// equal values tie. The category sits above five 4-bit rank slots holding
// the tie-break ranks in significance order.
type HandRank uint32

// HandType enumerates hand categories ordered from weakest to strongest.
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

func (t HandType) String() string {
	if int(t) < len(handTypeNames) {
		return handTypeNames[t]
	}
	return "Unknown"
}

const categoryShift = 20

func makeRank(t HandType, ranks ...uint8) HandRank {
	r := HandRank(t) << categoryShift
	for i, v := range ranks {
		r |= HandRank(v) << (16 - 4*i)
	}
	return r
}

// Type returns the hand category.
func (hr HandRank) Type() HandType {
	return HandType(hr >> categoryShift)
}

// ranks returns the tie-break slots in significance order.
func (hr HandRank) ranks() [5]uint8 {
	var out [5]uint8
	for i := range out {
		out[i] = uint8(hr>>(16-4*i)) & 0xF
	}
	return out
}

// String returns the category name.
func (hr HandRank) String() string {
	return hr.Type().String()
}

// Describe returns a longer description such as "Full House, Kings full of Fours".
func (hr HandRank) Describe() string {
	r := hr.ranks()
	switch hr.Type() {
	case StraightFlush:
		if r[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", rankName(r[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", plural(r[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", plural(r[0]), plural(r[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(r[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(r[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", plural(r[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", plural(r[0]), plural(r[1]))
	case Pair:
		return fmt.Sprintf("Pair of %s", plural(r[0]))
	default:
		return fmt.Sprintf("High Card, %s", rankName(r[0]))
	}
}

var rankNames = [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

func rankName(r uint8) string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "?"
}

func plural(r uint8) string {
	if r == Six {
		return "Sixes"
	}
	return rankName(r) + "s"
}

// Evaluate ranks the best five-card hand contained in h, which must hold
// between five and seven cards.
func Evaluate(h Hand) (HandRank, error) {
	if n := h.Count(); n < 5 || n > 7 {
		return 0, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidHand, n)
	}
	if h>>52 != 0 {
		return 0, fmt.Errorf("%w: bits outside the deck", ErrInvalidHand)
	}
	return evaluate(h), nil
}

// EvaluateCards is Evaluate over a card slice. Duplicate cards are rejected.
func EvaluateCards(cards ...Card) (HandRank, error) {
	var h Hand
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: invalid card", ErrInvalidHand)
		}
		if h.Has(c) {
			return 0, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		h.Add(c)
	}
	return Evaluate(h)
}

func evaluate(h Hand) HandRank {
	var suits [4]uint16
	var all uint16
	for s := range suits {
		suits[s] = h.SuitMask(uint8(s))
		all |= suits[s]
	}

	for _, sm := range suits {
		if bits.OnesCount16(sm) < 5 {
			continue
		}
		if high, ok := straightHigh(sm); ok {
			return makeRank(StraightFlush, high)
		}
		// At most seven cards, so only one suit can hold five.
		flush := makeRank(Flush, topRanks(sm, 5)...)
		if quadsOrBoat := pairedRank(suits, all); quadsOrBoat > flush {
			return quadsOrBoat
		}
		return flush
	}

	if made := pairedRank(suits, all); made.Type() >= FullHouse {
		return made
	}
	if high, ok := straightHigh(all); ok {
		return makeRank(Straight, high)
	}
	return pairedRank(suits, all)
}

// pairedRank ranks the hand ignoring straights and flushes.
func pairedRank(suits [4]uint16, all uint16) HandRank {
	s0, s1, s2, s3 := suits[0], suits[1], suits[2], suits[3]
	quads := s0 & s1 & s2 & s3
	trips := ((s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)) &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ (trips | quads)

	if quads != 0 {
		q := highest(quads)
		return makeRank(FourOfAKind, q, highest(all&^(1<<q)))
	}
	if trips != 0 {
		t := highest(trips)
		if rest := (trips &^ (1 << t)) | pairs; rest != 0 {
			return makeRank(FullHouse, t, highest(rest))
		}
		return makeRank(ThreeOfAKind, append([]uint8{t}, topRanks(all&^(1<<t), 2)...)...)
	}
	if bits.OnesCount16(pairs) >= 2 {
		p := topRanks(pairs, 2)
		used := uint16(1)<<p[0] | uint16(1)<<p[1]
		return makeRank(TwoPair, p[0], p[1], highest(all&^used))
	}
	if pairs != 0 {
		p := highest(pairs)
		return makeRank(Pair, append([]uint8{p}, topRanks(all&^(1<<p), 3)...)...)
	}
	return makeRank(HighCard, topRanks(all, 5)...)
}

func highest(mask uint16) uint8 {
	return uint8(bits.Len16(mask) - 1)
}

// topRanks returns up to n ranks from mask, highest first.
func topRanks(mask uint16, n int) []uint8 {
	out := make([]uint8, 0, n)
	for mask != 0 && len(out) < n {
		r := highest(mask)
		out = append(out, r)
		mask &^= 1 << r
	}
	return out
}

// straightHigh returns the top rank of the best straight in mask. The wheel
// (A-2-3-4-5) reports Five as its high card.
func straightHigh(mask uint16) (uint8, bool) {
	const wheel = 1<<Ace | 1<<Two | 1<<Three | 1<<Four | 1<<Five
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return highest(seq) + 4, true
	}
	if mask&wheel == wheel {
		return Five, true
	}
	return 0, false
}

// CompareHands returns 1 if a wins, -1 if b wins and 0 for a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
