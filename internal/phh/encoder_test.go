package phh_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/game"
	"github.com/lox/agentholdem/internal/phh"
	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/poker"
)

func TestEncodeHandHistory(t *testing.T) {
	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "main",
		SeatCount:         3,
		Seats:             []int{2, 3, 1},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		FinishingStacks:   []int{199, 198, 203},
		Winnings:          []int{0, 0, 5},
		Actions:           []string{"d dh p1 AhKh", "d dh p2 7c2d", "d dh p3 QsJs", "p3 cbr 6", "p1 f", "p2 f"},
		Players:           []string{"rock", "fish", "shark"},
		HandID:            "hand-00042",
		Time:              "15:22:00",
		TimeZone:          "UTC",
		Day:               14,
		Month:             11,
		Year:              2025,
	}

	var buf bytes.Buffer
	if err := phh.Encode(&buf, hand); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	want := "" +
		"variant = \"NT\"\n" +
		"table = \"main\"\n" +
		"seat_count = 3\n" +
		"seats = [2, 3, 1]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"finishing_stacks = [199, 198, 203]\n" +
		"winnings = [0, 0, 5]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 7c2d\", \"d dh p3 QsJs\", \"p3 cbr 6\", \"p1 f\", \"p2 f\"]\n" +
		"players = [\"rock\", \"fish\", \"shark\"]\n" +
		"hand = \"hand-00042\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 11\n" +
		"year = 2025\n"
	if got := buf.String(); got != want {
		t.Fatalf("Encode output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestEncodeNil(t *testing.T) {
	_, err := phh.Marshal(nil)
	assert.Error(t, err)
}

func TestFromSummaryShowdown(t *testing.T) {
	t.Parallel()

	deck, err := poker.NewDeckFromCards(randutil.New(1), poker.MustParseCards("Kd 5c As Kc 6c Ah 2c 7d 9h Js 3s")...)
	require.NoError(t, err)
	seats := []game.Seat{
		{ID: "A", Name: "Alice", Chips: 1000},
		{ID: "B", Name: "Bob", Chips: 1000},
		{ID: "C", Name: "Cleo", Chips: 1000},
	}
	h, err := game.NewHand(nil, seats, 0, 10, 20, game.WithDeck(deck), game.WithID("hand-1"))
	require.NoError(t, err)

	apply := func(id string, d game.Decision) {
		t.Helper()
		_, err := h.Apply(id, d)
		require.NoError(t, err)
	}
	apply("A", game.RaiseTo(60))
	apply("B", game.CallDecision())
	apply("C", game.FoldDecision())
	for range 3 {
		apply("B", game.CheckDecision())
		apply("A", game.CheckDecision())
	}
	require.True(t, h.Done())

	s := h.Summary()
	hh := phh.FromSummary("main", s)

	assert.Equal(t, []int{2, 3, 1}, hh.Seats)
	assert.Equal(t, []string{"Bob", "Cleo", "Alice"}, hh.Players)
	assert.Equal(t, []int{10, 20, 0}, hh.BlindsOrStraddles)
	assert.Equal(t, []int{1000, 1000, 1000}, hh.StartingStacks)
	assert.Equal(t, []int{940, 980, 1080}, hh.FinishingStacks)
	assert.Equal(t, []int{0, 0, 140}, hh.Winnings)
	assert.Equal(t, 20, hh.MinBet)

	hole := func(i int) string { return strings.Join(s.Seats[i].Hole, "") }
	assert.Equal(t, []string{
		"d dh p1 " + hole(1),
		"d dh p2 " + hole(2),
		"d dh p3 " + hole(0),
		"p3 cbr 60",
		"p1 cc",
		"p2 f",
		"d db 2c7d9h",
		"p1 cc",
		"p3 cc",
		"d db Js",
		"p1 cc",
		"p3 cc",
		"d db 3s",
		"p1 cc",
		"p3 cc",
		"p1 sm " + hole(1),
		"p3 sm " + hole(0),
	}, hh.Actions)

	doc, err := phh.Marshal(hh)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `hand = "hand-1"`)
	assert.Contains(t, string(doc), `year = `+time.Now().UTC().Format("2006"))
}
