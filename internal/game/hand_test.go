package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/randutil"
)

func TestNewHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(42), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, PreFlop, h.Phase)
	assert.Equal(t, 1, h.SmallBlindIndex())
	assert.Equal(t, 2, h.BigBlindIndex())
	assert.Equal(t, 10, h.Players[1].Bet)
	assert.Equal(t, 20, h.Players[2].Bet)
	assert.Equal(t, 30, h.PotTotal())
	assert.Equal(t, 3000, h.ChipsInPlay())
	assert.Equal(t, "A", h.ActingPlayer().ID, "button acts first three-handed")
	for _, p := range h.Players {
		assert.Equal(t, 2, p.Hole.Count())
	}
	assert.Empty(t, h.Board)
}

func TestNewHandHeadsUpButtonIsSmallBlind(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(3), seatsWith(500, 500), 1, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h.SmallBlindIndex())
	assert.Equal(t, 0, h.BigBlindIndex())
	assert.Equal(t, "B", h.ActingPlayer().ID)
}

func TestNewHandValidation(t *testing.T) {
	t.Parallel()

	rng := randutil.New(1)
	_, err := NewHand(rng, seatsWith(100), 0, 1, 2)
	assert.Error(t, err)
	_, err = NewHand(rng, seatsWith(100, 100), 2, 1, 2)
	assert.Error(t, err)
	_, err = NewHand(rng, seatsWith(100, 0), 0, 1, 2)
	assert.Error(t, err)
	_, err = NewHand(rng, seatsWith(100, 100), 0, 5, 2)
	assert.Error(t, err)
	_, err = NewHand(nil, seatsWith(100, 100), 0, 1, 2)
	assert.Error(t, err)
	_, err = NewHand(rng, []Seat{{ID: "x", Chips: 5}, {ID: "x", Chips: 5}}, 0, 1, 2)
	assert.Error(t, err)
}

// Three players, blinds 10/20. A raises to 60, B calls, C folds, then the
// hand is checked down and A's aces beat B's kings.
func TestEndToEndThreePlayerHand(t *testing.T) {
	t.Parallel()

	h := stackedHand(t, "Kd 5c As Kc 6c Ah 2c 7d 9h Js 3s", 0, 10, 20, 1000, 1000, 1000)

	mustApply(t, h, "A", RaiseTo(60))
	mustApply(t, h, "B", CallDecision())
	out := mustApply(t, h, "C", FoldDecision())

	require.Equal(t, Flop, out.Phase)
	require.Len(t, h.Board, 3)
	// A's 60, B's 60 and C's big blind 20, which stays in when C folds.
	assert.Equal(t, 140, h.PotTotal(), "60 from A and B plus C's folded big blind")
	assert.Equal(t, 120, h.Players[0].TotalBet+h.Players[1].TotalBet)

	for _, street := range []Phase{Flop, Turn, River} {
		require.Equal(t, street, h.Phase)
		assert.Equal(t, "B", h.ActingPlayer().ID, "first live seat left of the button acts first")
		mustApply(t, h, "B", CheckDecision())
		mustApply(t, h, "A", CheckDecision())
	}

	require.True(t, h.Done())
	assert.Len(t, h.Board, 5)
	assert.Equal(t, map[string]int{"A": 1080, "B": 940, "C": 980}, chipsOf(h))
	assert.Equal(t, 3000, h.ChipsInPlay())

	awards := h.Awards()
	require.Len(t, awards, 1)
	assert.Equal(t, "A", awards[0].PlayerID)
	assert.Equal(t, 140, awards[0].Amount)
	assert.Equal(t, "Pair of Aces", awards[0].Hand)

	v := h.PublicView()
	_, _, ok := v.Seat("C")
	require.True(t, ok)
	assert.Empty(t, v.Players[2].Hole, "folded hand stays hidden")
	assert.Equal(t, []string{"As", "Ah"}, v.Players[0].Hole, "shown hands are public")
}

func TestSplitPotRemainderGoesLeftOfButton(t *testing.T) {
	t.Parallel()

	// A and C hold the same high-card hand off an A-K-Q-J-9 board.
	h := stackedHand(t, "2c 4d 4c 3c 5c 5d As Ks Qs Js 9h", 0, 5, 10, 1000, 1000, 1000)

	mustApply(t, h, "A", CallDecision())
	mustApply(t, h, "B", FoldDecision())
	mustApply(t, h, "C", CheckDecision())
	for range 3 {
		mustApply(t, h, "C", CheckDecision())
		mustApply(t, h, "A", CheckDecision())
	}

	require.True(t, h.Done())
	assert.Equal(t, map[string]int{"A": 1002, "B": 995, "C": 1003}, chipsOf(h),
		"25 chip pot splits 12/12 with the odd chip to C, nearest clockwise of the button")
}

func TestSplitRemainderPolicies(t *testing.T) {
	t.Parallel()

	paid := split(101, []int{0, 2}, 1, 4, RemainderNearestButton)
	assert.Equal(t, map[int]int{2: 51, 0: 50}, paid)

	paid = split(103, []int{3, 0, 1}, 2, 4, RemainderRoundRobin)
	assert.Equal(t, map[int]int{3: 35, 0: 34, 1: 34}, paid)

	policy, err := ParseRemainderPolicy("round_robin")
	require.NoError(t, err)
	assert.Equal(t, RemainderRoundRobin, policy)
	_, err = ParseRemainderPolicy("dealer")
	assert.Error(t, err)
}

func TestUncontestedHandSettlesWithoutMoreCards(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(5), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", RaiseTo(100))
	mustApply(t, h, "B", FoldDecision())
	out := mustApply(t, h, "C", FoldDecision())

	assert.Equal(t, Settled, out.Phase)
	assert.Empty(t, h.Board, "no community cards on an uncontested pot")
	assert.Equal(t, map[string]int{"A": 1030, "B": 990, "C": 980}, chipsOf(h))
	assert.Nil(t, h.ActingPlayer())

	_, err = h.Apply("A", CheckDecision())
	assert.True(t, errors.Is(err, ErrHandOver))
	assert.True(t, errors.Is(err, ErrIllegalAction))
}

func TestBigBlindOptionPreflop(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(6), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", CallDecision())
	mustApply(t, h, "B", CallDecision())
	require.Equal(t, PreFlop, h.Phase, "big blind still has the option")
	require.Equal(t, "C", h.ActingPlayer().ID)

	_, ok := Find(h.ValidActions(), Check)
	assert.True(t, ok)
	mustApply(t, h, "C", RaiseTo(60))
	assert.Equal(t, "A", h.ActingPlayer().ID, "raise reopens action")
	mustApply(t, h, "A", CallDecision())
	mustApply(t, h, "B", CallDecision())
	assert.Equal(t, Flop, h.Phase)
	assert.Equal(t, 180, h.PotTotal())
}

func TestAllInRunsOutTheBoard(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(8), seatsWith(300, 1000), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", AllInDecision())
	out := mustApply(t, h, "B", CallDecision())

	assert.Equal(t, Settled, out.Phase)
	assert.Len(t, h.Board, 5)
	assert.Equal(t, 1300, h.ChipsInPlay())

	var streets int
	for _, e := range out.Events {
		if e.Kind == EventStreet && len(e.Cards) > 0 {
			streets++
		}
	}
	assert.Equal(t, 3, streets, "flop, turn and river dealt in order")
}

func TestRejectedActionLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(9), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)
	before := h.PublicView()
	events := len(h.History())

	tests := []struct {
		name     string
		playerID string
		decision Decision
		cause    error
	}{
		{"out of turn", "B", CallDecision(), nil},
		{"check facing bet", "A", CheckDecision(), nil},
		{"raise below minimum", "A", RaiseTo(30), nil},
		{"raise not above bet", "A", RaiseTo(20), nil},
		{"raise beyond stack", "A", RaiseTo(5000), ErrInsufficientStack},
	}
	for _, tc := range tests {
		_, err := h.Apply(tc.playerID, tc.decision)
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, ErrIllegalAction), tc.name)
		var actionErr *ActionError
		assert.True(t, errors.As(err, &actionErr), tc.name)
		if tc.cause != nil {
			assert.True(t, errors.Is(err, tc.cause), tc.name)
		}
	}

	assert.Equal(t, before, h.PublicView())
	assert.Len(t, h.History(), events)
}

func TestTimeoutDecision(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(10), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, Fold, h.TimeoutDecision().Action, "facing the big blind")
	out, err := h.ApplyTimeout("A")
	require.NoError(t, err)
	assert.Equal(t, Fold, out.Decision.Action)
	assert.Equal(t, EventTimeout, out.Events[0].Kind)

	mustApply(t, h, "B", CallDecision())
	assert.Equal(t, Check, h.TimeoutDecision().Action, "big blind may check")
	out, err = h.ApplyTimeout("C")
	require.NoError(t, err)
	assert.Equal(t, Check, out.Decision.Action)
	assert.Equal(t, Flop, h.Phase)
}

func TestViewHidesOtherHoleCards(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(11), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	public := h.PublicView()
	for _, p := range public.Players {
		assert.Empty(t, p.Hole)
	}
	assert.Empty(t, public.Valid)

	mine := h.ViewFor("B")
	assert.Len(t, mine.Players[1].Hole, 2)
	assert.Empty(t, mine.Players[0].Hole)
	assert.Empty(t, mine.Valid, "not B's turn")

	acting := h.ViewFor("A")
	assert.NotEmpty(t, acting.Valid)
	assert.Equal(t, "A", acting.Acting)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(12), seatsWith(1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	first := h.History()
	require.NotEmpty(t, first)
	assert.Equal(t, EventHandStart, first[0].Kind)
	first[0].Kind = "tampered"

	mustApply(t, h, "A", CallDecision())
	second := h.History()
	assert.Equal(t, EventHandStart, second[0].Kind)
	assert.Greater(t, len(second), len(first))
	for i, e := range second {
		assert.Equal(t, i, e.Seq)
	}
}

// Random legal play must conserve chips, only ever hand the turn to a live
// player in clockwise order, and never shrink the board.
func TestRandomPlayInvariants(t *testing.T) {
	t.Parallel()

	rng := randutil.New(2025)
	for hand := 0; hand < 300; hand++ {
		n := 2 + rng.IntN(5)
		chips := make([]int, n)
		total := 0
		for i := range chips {
			chips[i] = 20 + rng.IntN(500)
			total += chips[i]
		}
		h, err := NewHand(randutil.Child(rng), seatsWith(chips...), rng.IntN(n), 5, 10)
		require.NoError(t, err)
		require.Equal(t, total, h.ChipsInPlay())

		for steps := 0; !h.Done(); steps++ {
			require.Less(t, steps, 500, "hand did not terminate")
			p := h.ActingPlayer()
			require.NotNil(t, p)
			require.True(t, p.CanAct())

			valid := h.ValidActions()
			va := valid[rng.IntN(len(valid))]
			d := Decision{Action: va.Action}
			if va.Action == Raise {
				d.Amount = va.Min + rng.IntN(va.Max-va.Min+1)
			}

			prevIdx, prevPhase, prevBoard := h.ActingIndex(), h.Phase, len(h.Board)
			_, err := h.Apply(p.ID, d)
			require.NoError(t, err, "valid action %v rejected", va)
			require.Equal(t, total, h.ChipsInPlay())
			require.GreaterOrEqual(t, len(h.Board), prevBoard)

			if !h.Done() && h.Phase == prevPhase {
				require.Equal(t, expectedNext(h, prevIdx), h.ActingIndex())
			}
		}
		for _, p := range h.Players {
			require.GreaterOrEqual(t, p.Chips, 0)
		}
	}
}

func expectedNext(h *Hand, from int) int {
	n := len(h.Players)
	for k := 1; k <= n; k++ {
		i := (from + k) % n
		if h.Players[i].CanAct() {
			return i
		}
	}
	return -1
}
