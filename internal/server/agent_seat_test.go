package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
	"github.com/lox/agentholdem/internal/randutil"
)

type snapshotRecorder struct {
	mu        sync.Mutex
	snapshots []agent.Snapshot
}

func (r *snapshotRecorder) RecordProfile(s agent.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	return true
}

func (r *snapshotRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func seatRulesAgent(t *testing.T, table *Table, id string, seed int64, snapshots SnapshotRecorder) *AgentSeat {
	t.Helper()
	persona, err := agent.LookupPersona(id)
	require.NoError(t, err)
	profile := agent.NewProfile(id, persona, agent.DefaultMemory, randutil.New(seed))
	pipeline := agent.NewPipeline(agent.NewRulesProvider(randutil.New(seed+100)), quietLogger(),
		agent.WithTimeout(time.Second))
	seat, err := SeatAgent(table, profile, pipeline, snapshots, quietLogger())
	require.NoError(t, err)
	return seat
}

// waitSettled drains feed until a hand settles.
func waitSettled(t *testing.T, feed *Feed) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case c := <-feed.C():
			if c.Event.Kind == game.EventSettled {
				return
			}
		case <-deadline:
			t.Fatal("hand did not settle")
		}
	}
}

func TestAgentsPlayHandsAndConserveChips(t *testing.T) {
	t.Parallel()

	feed := NewFeed(4096, quietLogger())
	cfg := testConfig()
	cfg.DecisionTimeout = 10 * time.Second
	table, err := NewTable(cfg, quietLogger(), WithNotifier(feed))
	require.NoError(t, err)
	defer table.Close()

	snapshots := &snapshotRecorder{}
	var seats []*AgentSeat
	for i, id := range []string{"the_rock", "the_shark", "the_maniac"} {
		seats = append(seats, seatRulesAgent(t, table, id, int64(i+1), snapshots))
	}

	played := 0
	for range 5 {
		if _, err := table.StartHand(); err != nil {
			require.ErrorIs(t, err, ErrNotEnoughPlayers)
			break
		}
		waitSettled(t, feed)
		played++
	}
	require.Positive(t, played)
	for _, s := range seats {
		s.Wait()
	}

	total := 0
	for _, c := range chips(table) {
		total += c
	}
	assert.Equal(t, 3*cfg.StartingChips, total)
	assert.EqualValues(t, played, table.Info().HandsPlayed)
	assert.Zero(t, table.Info().Timeouts)

	decisions := 0
	for _, s := range seats {
		stats := s.Profile().Stats()
		assert.Equal(t, played, stats.HandsPlayed, s.Profile().ID())
		decisions += stats.Decisions
	}
	assert.Positive(t, decisions)
	assert.Equal(t, 3*played, snapshots.len())
}

func TestAgentSeatDiscardsDecisionsForClosedTable(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)
	seat := seatRulesAgent(t, table, "the_rock", 7, nil)
	seatPlayers(t, table, "human")

	_, err := table.StartHand()
	require.NoError(t, err)
	table.Close()
	seat.Wait()

	assert.Zero(t, seat.Profile().Stats().HandsPlayed)
}

func TestAgentFinishesHandAfterPlayerSitsMidHand(t *testing.T) {
	t.Parallel()

	feed := NewFeed(256, quietLogger())
	cfg := testConfig()
	cfg.DecisionTimeout = 10 * time.Second
	table, err := NewTable(cfg, quietLogger(), WithNotifier(feed))
	require.NoError(t, err)
	defer table.Close()

	gate := make(chan struct{})
	asked := make(chan struct{}, 16)
	provider := agent.ProviderFunc(func(ctx context.Context, req agent.Request) (string, error) {
		select {
		case asked <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if req.ToCall > 0 {
			return "ACTION: fold", nil
		}
		return "ACTION: check", nil
	})

	var seats []*AgentSeat
	for i, id := range []string{"the_rock", "the_shark"} {
		persona, err := agent.LookupPersona(id)
		require.NoError(t, err)
		profile := agent.NewProfile(id, persona, agent.DefaultMemory, randutil.New(int64(i+1)))
		pipeline := agent.NewPipeline(provider, quietLogger(), agent.WithTimeout(5*time.Second))
		seat, err := SeatAgent(table, profile, pipeline, nil, quietLogger())
		require.NoError(t, err)
		seats = append(seats, seat)
	}

	_, err = table.StartHand()
	require.NoError(t, err)
	select {
	case <-asked:
	case <-time.After(5 * time.Second):
		t.Fatal("the acting agent was never asked")
	}

	_, err = table.Sit("late", "", game.Human, nil)
	require.NoError(t, err)
	close(gate)

	waitSettled(t, feed)
	for _, s := range seats {
		s.Wait()
	}

	info := table.Info()
	assert.Zero(t, info.Timeouts)
	assert.EqualValues(t, 1, info.HandsPlayed)
	decisions := 0
	for _, s := range seats {
		decisions += s.Profile().Stats().Decisions
	}
	assert.Equal(t, 1, decisions, "the button folds and ends the hand")
}
