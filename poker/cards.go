// Package poker provides the card model, deck and hand evaluator used by
// the table engine. Cards are single bits in a uint64 so that a set of
// cards (a Hand) can be combined and inspected with bitwise operations.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is one bit of a 52-bit set.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], deuce lowest.
type Card uint64

// Hand is a set of cards.
type Hand uint64

// Suits
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

// Ranks, deuce through ace.
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
	rankBits  = 0x1FFF
)

// NewCard builds a card from a rank (Two..Ace) and suit (Clubs..Spades).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// Valid reports whether c holds exactly one of the 52 card bits.
func (c Card) Valid() bool {
	return c != 0 && c&(c-1) == 0 && bits.TrailingZeros64(uint64(c)) < 52
}

func (c Card) index() uint8 {
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns 0 (deuce) through 12 (ace).
func (c Card) Rank() uint8 {
	return c.index() % 13
}

// Suit returns 0 (clubs) through 3 (spades).
func (c Card) Suit() uint8 {
	return c.index() / 13
}

// Value returns the face value from 2 to 14 with the ace high.
func (c Card) Value() int {
	return int(c.Rank()) + 2
}

// String returns the short form, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// MarshalText encodes the card in its short form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %#x", uint64(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses the short form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a two character card such as "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string %q", s)
	}
	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank %q in %q", s[0], s)
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit %q in %q", s[1], s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// MustParseCards parses a space separated card list and panics on error.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// NewHand combines cards into a set.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// ParseHand parses a space separated card list such as "As Kd 7c".
func ParseHand(s string) (Hand, error) {
	var h Hand
	for _, f := range strings.Fields(s) {
		c, err := ParseCard(f)
		if err != nil {
			return 0, err
		}
		if h.Has(c) {
			return 0, fmt.Errorf("duplicate card %s", c)
		}
		h |= Hand(c)
	}
	return h, nil
}

// Add adds c to the hand.
func (h *Hand) Add(c Card) {
	*h |= Hand(c)
}

// Has reports whether the hand contains c.
func (h Hand) Has(c Card) bool {
	return h&Hand(c) != 0
}

// Count returns the number of cards in the hand.
func (h Hand) Count() int {
	return bits.OnesCount64(uint64(h))
}

// SuitMask returns the ranks held in one suit as a 13-bit mask.
func (h Hand) SuitMask(suit uint8) uint16 {
	return uint16(uint64(h)>>(suit*13)) & rankBits
}

// RankMask returns the ranks held in any suit as a 13-bit mask.
func (h Hand) RankMask() uint16 {
	var mask uint16
	for s := Clubs; s <= Spades; s++ {
		mask |= h.SuitMask(s)
	}
	return mask
}

// Cards returns the cards of the hand, highest rank first.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.Count())
	for rank := int(Ace); rank >= 0; rank-- {
		for s := Spades; ; s-- {
			c := NewCard(uint8(rank), s)
			if h.Has(c) {
				cards = append(cards, c)
			}
			if s == Clubs {
				break
			}
		}
	}
	return cards
}

// Strings returns the short forms of the cards, highest rank first.
func (h Hand) Strings() []string {
	cards := h.Cards()
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func (h Hand) String() string {
	return strings.Join(h.Strings(), " ")
}
