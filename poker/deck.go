package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when a deal asks for more cards than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a 52-card deck with a dealing cursor. Dealt cards are never
// returned to the deck until the next Shuffle.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck returns a deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewDeckFromCards returns an unshuffled deck that deals top first, followed
// by the remaining cards in rank order. Subsequent Shuffle calls use rng.
func NewDeckFromCards(rng *rand.Rand, top ...Card) (*Deck, error) {
	d := &Deck{rng: rng}
	var seen Hand
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card at position %d", i)
		}
		if seen.Has(c) {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen.Add(c)
		d.cards[i] = c
		i++
	}
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := NewCard(rank, suit)
			if seen.Has(c) {
				continue
			}
			d.cards[i] = c
			i++
		}
	}
	return d, nil
}

func (d *Deck) fill() {
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.next = 0
}

// Shuffle resets the cursor and shuffles all 52 cards (Fisher-Yates).
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("deal %d with %d remaining: %w", n, d.Remaining(), ErrDeckExhausted)
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Position returns the dealing cursor.
func (d *Deck) Position() int {
	return d.next
}
