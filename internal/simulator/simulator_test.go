package simulator

import (
	"context"
	"io"
	rand "math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/persistence"
)

func callingStation(agent.Persona, *rand.Rand) agent.Provider {
	return agent.ProviderFunc(func(_ context.Context, req agent.Request) (string, error) {
		if req.ToCall > 0 {
			return "ACTION: call\nREASONING: never fold", nil
		}
		return "ACTION: check\nREASONING: see a free card", nil
	})
}

type countingRecorder struct{ hands atomic.Int32 }

func (r *countingRecorder) RecordHand(persistence.HandRecord) bool {
	r.hands.Add(1)
	return true
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]Config{
		"no hands":        {Hands: 0},
		"one agent":       {Hands: 1, Agents: []string{"the_rock"}},
		"unknown persona": {Hands: 1, Agents: []string{"the_rock", "the_oracle"}},
		"duplicate agent": {Hands: 1, Agents: []string{"the_rock", "the_rock"}},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestCallingStationsReachShowdown(t *testing.T) {
	t.Parallel()

	recorder := &countingRecorder{}
	sim, err := New(Config{
		Tables:    2,
		Hands:     5,
		Agents:    []string{"the_rock", "the_shark", "the_fish"},
		Seed:      7,
		Timeout:   5 * time.Second,
		Logger:    log.New(io.Discard),
		Providers: callingStation,
		Recorder:  recorder,
	})
	require.NoError(t, err)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Hands)
	assert.EqualValues(t, 10, recorder.hands.Load())
	require.Len(t, report.Tables, 2)
	for _, table := range report.Tables {
		assert.Equal(t, 5, table.Hands)
		assert.Zero(t, table.Timeouts)
		total := 0
		for _, chips := range table.Chips {
			total += chips
		}
		assert.Equal(t, 3000, total, table.ID)
	}

	require.Len(t, report.Agents, 3)
	sum := 0.0
	for _, a := range report.Agents {
		assert.Equal(t, 10, a.Stats.Hands, a.ID)
		assert.Zero(t, a.Stats.NonShowdownWins, "nobody folds, so every pot is shown down")
		assert.Zero(t, a.Stats.NonShowdownBB)
		require.NoError(t, a.Stats.Validate())
		sum += a.Stats.SumBB
	}
	assert.InDelta(t, 0, sum, 1e-9, "net results across agents cancel out")
	assert.Contains(t, report.Summary(), "Played 10 hands across 2 tables")
}

func TestRulesAgentsConserveChips(t *testing.T) {
	t.Parallel()

	sim, err := New(Config{
		Tables:   3,
		Hands:    8,
		Seed:     99,
		Timeout:  5 * time.Second,
		Parallel: 2,
	})
	require.NoError(t, err)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, report.Hands)
	assert.LessOrEqual(t, report.Hands, 24)

	for _, p := range sim.Registry().All() {
		assert.Positive(t, p.Stats().Decisions, p.ID())
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	sim, err := New(Config{Hands: 1000, Seed: 1, Timeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
