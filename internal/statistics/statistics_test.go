package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/game"
)

func TestEmpty(t *testing.T) {
	t.Parallel()

	s := &Statistics{}
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.5))
	assert.Zero(t, s.PhaseMean(game.River))
	assert.NoError(t, s.Validate())
}

func TestSingleResult(t *testing.T) {
	t.Parallel()

	s := &Statistics{}
	s.Add(HandResult{NetBB: 2.5, Showdown: true, PotBB: 10, Phase: game.River})

	assert.Equal(t, 1, s.Hands)
	assert.Equal(t, 2.5, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Equal(t, 2.5, s.Median())
	assert.Equal(t, 1, s.ShowdownWins)
	assert.Zero(t, s.NonShowdownWins)
	assert.Equal(t, 2.5, s.PhaseMean(game.River))
	assert.Equal(t, 10.0, s.MaxPotBB)
	require.NoError(t, s.Validate())
}

func TestMoments(t *testing.T) {
	t.Parallel()

	s := &Statistics{}
	for i, v := range []float64{1, 2, 3, 4} {
		s.Add(HandResult{NetBB: v, Phase: game.PreFlop, Showdown: i%2 == 0})
	}

	assert.Equal(t, 2.5, s.Mean())
	assert.InDelta(t, 1.6667, s.Variance(), 1e-4)
	assert.InDelta(t, 1.2910, s.StdDev(), 1e-4)
	assert.InDelta(t, 0.6455, s.StdError(), 1e-4)
	low, high := s.ConfidenceInterval95()
	assert.InDelta(t, 2.5-1.96*s.StdError(), low, 1e-9)
	assert.InDelta(t, 2.5+1.96*s.StdError(), high, 1e-9)

	assert.Equal(t, 2.5, s.Median())
	assert.Equal(t, 1.0, s.Percentile(0))
	assert.Equal(t, 4.0, s.Percentile(1))
	assert.InDelta(t, 1.75, s.Percentile(0.25), 1e-9)
	assert.Equal(t, []float64{1, 2, 3, 4}, s.Values, "percentiles do not reorder the recorded values")

	assert.Equal(t, 4.0, s.ShowdownBB)
	assert.Equal(t, 6.0, s.NonShowdownBB)
	require.NoError(t, s.Validate())
}

func TestBigPotsAndPhases(t *testing.T) {
	t.Parallel()

	s := &Statistics{}
	s.Add(HandResult{NetBB: -1, Phase: game.PreFlop, PotBB: 1.5})
	s.Add(HandResult{NetBB: 60, Phase: game.River, PotBB: 120, Showdown: true})
	s.Add(HandResult{NetBB: -60, Phase: game.River, PotBB: 120, Showdown: true})

	assert.Equal(t, 2, s.BigPots)
	assert.Zero(t, s.BigPotsBB)
	assert.Equal(t, 120.0, s.MaxPotBB)
	assert.Equal(t, -1.0, s.PhaseMean(game.PreFlop))
	assert.Zero(t, s.PhaseMean(game.River))
	assert.Equal(t, 2, s.Phases[game.River].Hands)
	require.NoError(t, s.Validate())
}

func TestValidateDetectsCorruption(t *testing.T) {
	t.Parallel()

	tests := map[string]func(*Statistics){
		"ledger": func(s *Statistics) { s.AllBB += 5 },
		"values": func(s *Statistics) { s.Values = s.Values[:1] },
		"wins":   func(s *Statistics) { s.ShowdownWins = 10 },
		"phases": func(s *Statistics) { s.Phases[game.Flop].Hands++ },
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := &Statistics{}
			s.Add(HandResult{NetBB: 1, Phase: game.Flop})
			s.Add(HandResult{NetBB: -1, Phase: game.Flop})
			require.NoError(t, s.Validate())
			corrupt(s)
			assert.Error(t, s.Validate())
		})
	}
}
