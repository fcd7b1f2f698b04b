// Package simulator plays agents against each other across many tables at
// once, checking chip conservation and collecting per-agent statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
	"github.com/lox/agentholdem/internal/persistence"
	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/internal/server"
	"github.com/lox/agentholdem/internal/statistics"
)

// ProviderFactory builds the reasoning provider for one agent seat.
type ProviderFactory func(persona agent.Persona, rng *rand.Rand) agent.Provider

// Config holds configuration for running simulations.
type Config struct {
	Tables        int
	Hands         int // per table
	Agents        []string
	SmallBlind    int
	BigBlind      int
	StartingChips int
	Seed          int64
	Timeout       time.Duration // per decision; a hand that outlasts many of these is hung
	Parallel      int           // tables run at once; zero runs them all
	Logger        *log.Logger

	// Optional.
	Providers ProviderFactory
	Recorder  server.Recorder
	Snapshots server.SnapshotRecorder
	Speaker   agent.Speaker
}

// DefaultAgents are seated when Config.Agents is empty.
var DefaultAgents = []string{"the_rock", "the_shark", "the_maniac", "the_fish"}

func (c *Config) applyDefaults() {
	if c.Tables <= 0 {
		c.Tables = 1
	}
	if len(c.Agents) == 0 {
		c.Agents = DefaultAgents
	}
	if c.SmallBlind <= 0 {
		c.SmallBlind = 10
	}
	if c.BigBlind <= 0 {
		c.BigBlind = 2 * c.SmallBlind
	}
	if c.StartingChips <= 0 {
		c.StartingChips = 1000
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.Providers == nil {
		c.Providers = func(_ agent.Persona, rng *rand.Rand) agent.Provider {
			return agent.NewRulesProvider(rng)
		}
	}
}

// TableResult summarises one simulated table.
type TableResult struct {
	ID       string
	Hands    int
	Timeouts uint64
	Chips    map[string]int
}

// AgentResult is one agent's results across every table.
type AgentResult struct {
	ID      string
	Name    string
	Stats   *statistics.Statistics
	Profile agent.Snapshot
}

// Report is the outcome of a simulation.
type Report struct {
	Tables  []TableResult
	Agents  []AgentResult
	Hands   int
	Elapsed time.Duration
}

// Simulator runs simulations.
type Simulator struct {
	cfg      Config
	registry *agent.Registry

	mu    sync.Mutex
	stats map[string]*statistics.Statistics
}

// New creates a simulator. Each agent gets one profile shared by every
// table it sits at.
func New(cfg Config) (*Simulator, error) {
	cfg.applyDefaults()
	if cfg.Hands <= 0 {
		return nil, errors.New("hands must be positive")
	}
	if len(cfg.Agents) < 2 {
		return nil, errors.New("at least two agents are needed")
	}

	s := &Simulator{
		cfg:      cfg,
		registry: agent.NewRegistry(),
		stats:    make(map[string]*statistics.Statistics),
	}
	rng := randutil.New(cfg.Seed)
	for _, id := range cfg.Agents {
		persona, err := agent.LookupPersona(id)
		if err != nil {
			return nil, err
		}
		profile := agent.NewProfile(id, persona, agent.DefaultMemory, randutil.Child(rng))
		if err := s.registry.Register(profile); err != nil {
			return nil, err
		}
		s.stats[id] = &statistics.Statistics{}
	}
	return s, nil
}

// Registry exposes the simulated agents' profiles.
func (s *Simulator) Registry() *agent.Registry { return s.registry }

// Run plays every table to completion. The first table error cancels the
// rest.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	results := make([]TableResult, s.cfg.Tables)

	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.Parallel > 0 {
		g.SetLimit(s.cfg.Parallel)
	}
	for i := range s.cfg.Tables {
		g.Go(func() error {
			res, err := s.runTable(ctx, i)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Tables: results, Elapsed: time.Since(start)}
	for _, r := range results {
		report.Hands += r.Hands
	}
	for _, p := range s.registry.All() {
		stats := s.stats[p.ID()]
		if err := stats.Validate(); err != nil && stats.Hands > 0 {
			return nil, fmt.Errorf("agent %s: %w", p.ID(), err)
		}
		report.Agents = append(report.Agents, AgentResult{
			ID:      p.ID(),
			Name:    p.Persona().Name,
			Stats:   stats,
			Profile: p.Snapshot(),
		})
	}
	return report, nil
}

// handWaiter hands each settled hand to the table's runner and forwards it
// to the configured recorder.
type handWaiter struct {
	settled chan game.Summary
	next    server.Recorder
}

func (w *handWaiter) RecordHand(rec persistence.HandRecord) bool {
	select {
	case w.settled <- rec.Hand:
	default:
	}
	if w.next != nil {
		return w.next.RecordHand(rec)
	}
	return true
}

func (s *Simulator) runTable(ctx context.Context, n int) (TableResult, error) {
	id := fmt.Sprintf("sim-%03d", n+1)
	logger := s.cfg.Logger.With("table", id)
	waiter := &handWaiter{settled: make(chan game.Summary, 1), next: s.cfg.Recorder}

	table, err := server.NewTable(server.TableConfig{
		ID:              id,
		Name:            id,
		MaxPlayers:      len(s.cfg.Agents),
		SmallBlind:      s.cfg.SmallBlind,
		BigBlind:        s.cfg.BigBlind,
		StartingChips:   s.cfg.StartingChips,
		DecisionTimeout: s.cfg.Timeout,
		Seed:            s.cfg.Seed + int64(n) + 1,
	}, logger, server.WithRecorder(waiter))
	if err != nil {
		return TableResult{}, err
	}

	rng := randutil.New(s.cfg.Seed ^ int64(n+1)<<32)
	var seats []*server.AgentSeat
	defer func() {
		table.Close()
		for _, seat := range seats {
			seat.Wait()
		}
	}()
	for _, p := range s.registry.All() {
		opts := []agent.Option{agent.WithTimeout(s.cfg.Timeout / 2)}
		if s.cfg.Speaker != nil {
			opts = append(opts, agent.WithSpeaker(s.cfg.Speaker))
		}
		pipeline := agent.NewPipeline(s.cfg.Providers(p.Persona(), randutil.Child(rng)), logger, opts...)
		seat, err := server.SeatAgent(table, p, pipeline, s.cfg.Snapshots, logger)
		if err != nil {
			return TableResult{}, err
		}
		seats = append(seats, seat)
	}

	played := 0
	for played < s.cfg.Hands {
		if _, err := table.StartHand(); err != nil {
			if errors.Is(err, server.ErrNotEnoughPlayers) {
				logger.Info("table ran out of players", "hands", played)
				break
			}
			return TableResult{}, err
		}

		hctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout*time.Duration(4*len(s.cfg.Agents)))
		select {
		case summary := <-waiter.settled:
			cancel()
			s.record(summary)
		case <-hctx.Done():
			cancel()
			if ctx.Err() != nil {
				return TableResult{}, ctx.Err()
			}
			return TableResult{}, fmt.Errorf("table %s: hand %d did not settle (seed %d)", id, played+1, table.Config().Seed)
		}
		played++
	}

	info := table.Info()
	res := TableResult{ID: id, Hands: played, Timeouts: info.Timeouts, Chips: make(map[string]int)}
	total := 0
	for _, seat := range info.Seats {
		res.Chips[seat.ID] = seat.Chips
		total += seat.Chips
	}
	if want := s.cfg.StartingChips * len(s.cfg.Agents); total != want {
		return res, fmt.Errorf("table %s: chips not conserved: %d != %d", id, total, want)
	}
	logger.Debug("table finished", "hands", played, "timeouts", info.Timeouts)
	return res, nil
}

func (s *Simulator) record(hand game.Summary) {
	bb := float64(hand.BigBlind)
	pot := 0
	for _, seat := range hand.Seats {
		pot += seat.Won
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range hand.Seats {
		stats, ok := s.stats[seat.ID]
		if !ok {
			continue
		}
		phase := hand.LastPhase(seat.ID)
		stats.Add(statistics.HandResult{
			HandID:   hand.ID,
			NetBB:    float64(seat.Net()) / bb,
			Showdown: phase == game.Showdown,
			PotBB:    float64(pot) / bb,
			Phase:    phase,
		})
	}
}

// Summary renders the report as text.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Played %d hands across %d tables in %s\n", r.Hands, len(r.Tables), r.Elapsed.Round(time.Millisecond))

	agents := slices.Clone(r.Agents)
	slices.SortFunc(agents, func(a, b AgentResult) int {
		switch {
		case a.Stats.Mean() > b.Stats.Mean():
			return -1
		case a.Stats.Mean() < b.Stats.Mean():
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	for _, a := range agents {
		low, high := a.Stats.ConfidenceInterval95()
		fmt.Fprintf(&b, "%-16s %+8.3f bb/hand  95%% CI [%+.3f, %+.3f]  showdown wins %d  other wins %d  emotion %s  tilt %.2f\n",
			a.Name, a.Stats.Mean(), low, high, a.Stats.ShowdownWins, a.Stats.NonShowdownWins, a.Profile.Emotion, a.Profile.Tilt)
	}
	return b.String()
}
