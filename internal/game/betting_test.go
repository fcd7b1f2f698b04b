package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/randutil"
)

func TestValidActionsFacingBigBlind(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(1), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, []ValidAction{
		{Action: Fold},
		{Action: Call, Min: 20, Max: 20},
		{Action: Raise, Min: 40, Max: 1000},
		{Action: AllIn, Min: 1000, Max: 1000},
	}, h.ValidActions())
}

func TestValidActionsShortStack(t *testing.T) {
	t.Parallel()

	// A holds fewer chips than the big blind and can only fold or shove.
	h, err := NewHand(randutil.New(1), seatsWith(15, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, []ValidAction{
		{Action: Fold},
		{Action: AllIn, Min: 15, Max: 15},
	}, h.ValidActions())
}

func TestMinimumRaiseTracksLastFullRaise(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(2), seatsWith(1000, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", RaiseTo(70))
	assert.Equal(t, 70, h.CurrentBet())
	assert.Equal(t, 50, h.MinRaise())

	_, err = h.Apply("B", RaiseTo(100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum 120")

	mustApply(t, h, "B", RaiseTo(120))
	assert.Equal(t, 50, h.MinRaise())
}

func TestRaiseForWholeStackBecomesAllIn(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(3), seatsWith(500, 1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	out := mustApply(t, h, "A", RaiseTo(500))
	assert.Equal(t, AllIn, out.Decision.Action)
	assert.Equal(t, 500, out.Decision.Amount)
	assert.Equal(t, AllInStatus, h.Players[0].Status)
}

func TestCallForMoreThanStackIsClampedToAllIn(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(4), seatsWith(1000, 300), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", RaiseTo(500))
	out := mustApply(t, h, "B", CallDecision())

	assert.True(t, out.Clamped)
	assert.Equal(t, AllIn, out.Decision.Action)
	assert.Contains(t, out.Events[0].Note, ErrInsufficientStack.Error())
	assert.Equal(t, 280, out.Events[0].Amount)

	require.True(t, h.Done())
	assert.Equal(t, 1300, h.ChipsInPlay())
}

// An all-in that raises by less than the minimum does not let players who
// already acted raise again.
func TestIncompleteRaiseDoesNotReopenBetting(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(5), seatsWith(1000, 1000, 70), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", RaiseTo(60))
	mustApply(t, h, "B", CallDecision())
	out := mustApply(t, h, "C", AllInDecision())
	assert.Equal(t, 70, out.Decision.Amount)
	assert.Equal(t, 70, h.CurrentBet())
	assert.Equal(t, 40, h.MinRaise(), "incomplete raise leaves the increment alone")

	require.Equal(t, "A", h.ActingPlayer().ID)
	assert.Equal(t, []ValidAction{
		{Action: Fold},
		{Action: Call, Min: 10, Max: 10},
	}, h.ValidActions())

	_, err = h.Apply("A", RaiseTo(200))
	assert.True(t, errors.Is(err, ErrIllegalAction))
	_, err = h.Apply("A", AllInDecision())
	assert.True(t, errors.Is(err, ErrIllegalAction))

	mustApply(t, h, "A", CallDecision())
	mustApply(t, h, "B", CallDecision())
	assert.Equal(t, Flop, h.Phase)
	assert.Equal(t, 210, h.PotTotal())
}

func TestIncompleteRaiseBeforeAnyoneActed(t *testing.T) {
	t.Parallel()

	// D's short all-in lands before anyone has acted, so nobody is capped.
	h, err := NewHand(randutil.New(6), seatsWith(1000, 1000, 1000, 30), 0, 10, 20)
	require.NoError(t, err)

	require.Equal(t, "D", h.ActingPlayer().ID)
	mustApply(t, h, "D", AllInDecision())
	assert.Equal(t, 30, h.CurrentBet())
	assert.Equal(t, 20, h.MinRaise())

	raise, ok := Find(h.ValidActions(), Raise)
	require.True(t, ok)
	assert.Equal(t, 50, raise.Min)

	mustApply(t, h, "A", RaiseTo(100))
	assert.Equal(t, 70, h.MinRaise())
	mustApply(t, h, "B", CallDecision())
	mustApply(t, h, "C", CallDecision())
	assert.Equal(t, Flop, h.Phase)
	assert.Equal(t, 330, h.PotTotal())
}

func TestCheckWithNothingToCall(t *testing.T) {
	t.Parallel()

	h, err := NewHand(randutil.New(7), seatsWith(1000, 1000), 0, 10, 20)
	require.NoError(t, err)

	mustApply(t, h, "A", CallDecision())
	_, err = h.Apply("B", CallDecision())
	require.Error(t, err, "nothing to call")
	mustApply(t, h, "B", CheckDecision())
	assert.Equal(t, Flop, h.Phase)
	assert.Equal(t, "B", h.ActingPlayer().ID, "big blind acts first after the flop heads-up")
}
