package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/poker"
)

var playerIDs = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}

func seatsWith(chips ...int) []Seat {
	seats := make([]Seat, len(chips))
	for i, c := range chips {
		seats[i] = Seat{ID: playerIDs[i], Name: "Player " + playerIDs[i], Chips: c}
	}
	return seats
}

// stackedHand deals cards in order: hole cards one at a time starting left
// of the button, then the board.
func stackedHand(t *testing.T, cards string, button, sb, bb int, chips ...int) *Hand {
	t.Helper()
	deck, err := poker.NewDeckFromCards(randutil.New(1), poker.MustParseCards(cards)...)
	require.NoError(t, err)
	h, err := NewHand(nil, seatsWith(chips...), button, sb, bb, WithDeck(deck), WithID("hand-test"))
	require.NoError(t, err)
	return h
}

func mustApply(t *testing.T, h *Hand, playerID string, d Decision) Outcome {
	t.Helper()
	out, err := h.Apply(playerID, d)
	require.NoError(t, err, "%s %s", playerID, d)
	return out
}

func chipsOf(h *Hand) map[string]int {
	out := make(map[string]int, len(h.Players))
	for _, p := range h.Players {
		out[p.ID] = p.Chips
	}
	return out
}
