package main

import (
	"fmt"
	rand "math/rand/v2"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/config"
	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/internal/server"
)

// roster owns the configured agents and seats them at tables. One profile
// is shared by every table an agent plays at.
type roster struct {
	agents    map[string]config.AgentConfig
	registry  *agent.Registry
	speaker   agent.Speaker
	snapshots server.SnapshotRecorder
	logger    *log.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	seats []*server.AgentSeat
}

func newRoster(cfg *config.Config, seed int64, speaker agent.Speaker, snapshots server.SnapshotRecorder, logger *log.Logger) (*roster, error) {
	r := &roster{
		agents:    make(map[string]config.AgentConfig, len(cfg.Agents)),
		registry:  agent.NewRegistry(),
		speaker:   speaker,
		snapshots: snapshots,
		logger:    logger,
		rng:       randutil.New(seed),
	}
	for _, a := range cfg.Agents {
		persona, err := agent.LookupPersona(a.Persona)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name, err)
		}
		profile := agent.NewProfile(a.Name, persona, a.MemoryCapacity, randutil.Child(r.rng))
		if err := r.registry.Register(profile); err != nil {
			return nil, err
		}
		r.agents[a.Name] = a
	}
	return r, nil
}

func (r *roster) provider(a config.AgentConfig, rng *rand.Rand) agent.Provider {
	if a.Provider == "http" {
		return &agent.HTTPProvider{
			BaseURL:     a.Endpoint,
			Model:       a.Model,
			APIKey:      a.APIKey(),
			Temperature: a.Temperature,
			Client:      &http.Client{},
		}
	}
	return agent.NewRulesProvider(rng)
}

// Seat sits agentID at table with a pipeline of its own.
func (r *roster) Seat(table *server.Table, agentID string) error {
	profile, ok := r.registry.Get(agentID)
	if !ok {
		return fmt.Errorf("unknown agent %q", agentID)
	}
	a := r.agents[agentID]

	r.mu.Lock()
	defer r.mu.Unlock()
	opts := []agent.Option{
		agent.WithTimeout(table.Config().DecisionTimeout / 2),
		agent.WithRecall(a.Recall),
		agent.WithDefaultPolicy(agent.DefaultPolicy{AggressionThreshold: a.AggressionThreshold}),
	}
	if r.speaker != nil {
		opts = append(opts, agent.WithSpeaker(r.speaker))
	}
	pipeline := agent.NewPipeline(r.provider(a, randutil.Child(r.rng)), r.logger, opts...)
	seat, err := server.SeatAgent(table, profile, pipeline, r.snapshots, r.logger)
	if err != nil {
		return err
	}
	r.seats = append(r.seats, seat)
	r.logger.Info("agent seated", "agent", agentID, "table", table.ID(), "provider", a.Provider)
	return nil
}

// Wait blocks until every seated agent has finished its last decision.
func (r *roster) Wait() {
	r.mu.Lock()
	seats := r.seats
	r.mu.Unlock()
	for _, s := range seats {
		s.Wait()
	}
}
