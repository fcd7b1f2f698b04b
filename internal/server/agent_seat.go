package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
)

// SnapshotRecorder receives profile snapshots after each hand.
type SnapshotRecorder interface {
	RecordProfile(agent.Snapshot) bool
}

// AgentSeat plays a seat with an agent pipeline. Each turn runs in its own
// goroutine: the request is built from the turn's snapshot, the provider
// is asked with no table lock held, and the decision is submitted with the
// turn's version so late replies are discarded.
type AgentSeat struct {
	table     *Table
	profile   *agent.Profile
	pipeline  *agent.Pipeline
	snapshots SnapshotRecorder
	logger    *log.Logger

	// mu orders profile updates from one table: an outcome is never
	// recorded before the decision that ended the hand.
	mu sync.Mutex
	wg sync.WaitGroup
}

// SeatAgent sits profile at table, driven by pipeline. snapshots may be nil.
func SeatAgent(table *Table, profile *agent.Profile, pipeline *agent.Pipeline, snapshots SnapshotRecorder, logger *log.Logger) (*AgentSeat, error) {
	a := &AgentSeat{
		table:     table,
		profile:   profile,
		pipeline:  pipeline,
		snapshots: snapshots,
		logger:    logger.WithPrefix("agent-seat").With("table", table.ID(), "agent", profile.ID()),
	}
	if _, err := table.Sit(profile.ID(), profile.Persona().Name, game.Agent, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Turn starts deciding in the background.
func (a *AgentSeat) Turn(turn Turn) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.play(turn)
	}()
}

func (a *AgentSeat) play(turn Turn) {
	ctx := a.table.Context()
	req, err := agent.BuildRequest(turn.View, turn.History, a.profile, a.pipeline.Recall())
	if err != nil {
		a.logger.Error("build request", "hand", turn.HandID, "error", err)
		return
	}
	req.Turn = turn.Version

	res := a.pipeline.Decide(ctx, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.table.Submit(ctx, a.profile.ID(), res.Decision, turn.Version)
	switch {
	case err == nil:
		a.pipeline.Record(a.profile, a.table.ID(), req, res)
	case errors.Is(err, game.ErrStaleTurn), errors.Is(err, game.ErrHandOver):
		a.logger.Debug("discarding late decision", "hand", turn.HandID, "version", turn.Version)
	case errors.Is(err, ErrTableClosed), errors.Is(err, context.Canceled):
	default:
		a.logger.Warn("decision rejected", "hand", turn.HandID, "decision", res.Decision.String(), "error", err)
	}
}

// HandSettled records the outcome once any in-flight decision for this
// seat has been recorded.
func (a *AgentSeat) HandSettled(_ string, hand game.Summary) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.mu.Lock()
		defer a.mu.Unlock()
		a.recordOutcome(hand)
	}()
}

func (a *AgentSeat) recordOutcome(hand game.Summary) {
	id := a.profile.ID()
	var (
		me       game.SeatSummary
		found    bool
		pot      int
		opponent string
		best     int
	)
	for _, s := range hand.Seats {
		pot += s.Won
		if s.ID == id {
			me, found = s, true
			continue
		}
		if s.Won > best {
			best, opponent = s.Won, s.ID
		}
	}
	if !found {
		return
	}
	a.profile.RecordOutcome(agent.HandResult{
		HandID:   hand.ID,
		Phase:    hand.LastPhase(id),
		Won:      me.Won > 0,
		Net:      me.Net(),
		Pot:      pot,
		Opponent: opponent,
	})
	if a.snapshots != nil {
		a.snapshots.RecordProfile(a.profile.Snapshot())
	}
}

// Profile returns the seat's agent profile.
func (a *AgentSeat) Profile() *agent.Profile { return a.profile }

// Wait blocks until background decisions and outcome updates finish.
func (a *AgentSeat) Wait() { a.wg.Wait() }
