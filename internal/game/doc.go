// Package game implements the rules of a single Texas Hold'em hand.
//
// The main type is Hand, which owns the deck, the players' contributions,
// betting rounds, pots and showdown for one deal. A Hand is not safe for
// concurrent use; the table that owns it serializes access.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	h, err := game.NewHand(rng, seats, 0, 10, 20)
//	if err != nil {
//	    return err
//	}
//	for !h.Done() {
//	    acting := h.ActingPlayer()
//	    if _, err := h.Apply(acting.ID, game.CallDecision()); err != nil {
//	        // IllegalAction: state is unchanged, ask again
//	    }
//	}
//	awards := h.Awards()
//
// # Deterministic Testing
//
// Pass a stacked deck with WithDeck to control every card:
//
//	deck, _ := poker.NewDeckFromCards(rng, poker.MustParseCards("As Ks Qd Qc ...")...)
//	h, _ := game.NewHand(rng, seats, 0, 10, 20, game.WithDeck(deck))
//
// Hole cards are dealt two at a time starting left of the button, then the
// flop, turn and river in that order.
//
// # Architecture
//
//   - Decision / ValidAction: the tagged action variant shared by humans and agents
//   - betting.go: legality, minimum raise and round closure
//   - pot.go: main and side pots derived from cumulative contributions
//   - showdown.go: evaluation and pot awards with a remainder policy
//   - history.go: append-only record of every transition
//   - view.go: public and per-seat projections with hidden hole cards
package game
