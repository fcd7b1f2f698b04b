package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/agentholdem/internal/persistence"
	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/internal/simulator"
)

// SimulateCmd plays rule-based agents against each other.
type SimulateCmd struct {
	Tables        int           `default:"4" help:"Number of tables"`
	Hands         int           `default:"100" help:"Hands per table"`
	Agents        []string      `help:"Personas to seat at every table" default:"the_rock,the_shark,the_maniac,the_fish"`
	SmallBlind    int           `default:"10" help:"Small blind amount"`
	BigBlind      int           `default:"20" help:"Big blind amount"`
	StartingChips int           `default:"1000" help:"Starting chip count"`
	Seed          int64         `help:"Deterministic seed (zero picks one)"`
	Timeout       time.Duration `default:"5s" help:"Decision timeout"`
	Parallel      int           `help:"Tables played at once (zero plays all)"`
	HistoryDir    string        `help:"Write every hand and final profiles here"`
	LogLevel      string        `short:"l" default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}
	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := simulator.Config{
		Tables:        c.Tables,
		Hands:         c.Hands,
		Agents:        c.Agents,
		SmallBlind:    c.SmallBlind,
		BigBlind:      c.BigBlind,
		StartingChips: c.StartingChips,
		Seed:          seed,
		Timeout:       c.Timeout,
		Parallel:      c.Parallel,
		Logger:        logger,
	}

	var sink *persistence.Sink
	sinkCtx, stopSink := context.WithCancel(context.Background())
	defer stopSink()
	var g errgroup.Group
	if c.HistoryDir != "" {
		sink = persistence.NewSink(persistence.NewFileStore(c.HistoryDir), 0, logger)
		g.Go(func() error { return sink.Run(sinkCtx) })
		cfg.Recorder = sink
		cfg.Snapshots = sink
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}
	logger.Info("simulating", "tables", c.Tables, "hands", c.Hands, "agents", c.Agents, "seed", seed)
	report, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation (seed %d): %w", seed, err)
	}

	if sink != nil {
		for _, p := range sim.Registry().All() {
			sink.RecordProfile(p.Snapshot())
		}
		stopSink()
		if err := g.Wait(); err != nil {
			return err
		}
		stats := sink.Stats()
		logger.Info("histories written", "dir", c.HistoryDir, "written", stats.Written, "dropped", stats.Dropped)
	}

	fmt.Print(report.Summary())
	fmt.Printf("Seed %d\n", seed)
	return nil
}
