package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/config"
	"github.com/lox/agentholdem/internal/persistence"
	"github.com/lox/agentholdem/internal/randutil"
	"github.com/lox/agentholdem/internal/server"
)

// ServeCmd runs the configured tables behind the API.
type ServeCmd struct {
	Config     string `short:"c" default:"agentholdem.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" help:"Server address (overrides config)"`
	LogLevel   string `short:"l" help:"Log level (overrides config)"`
	HistoryDir string `help:"Directory for hand histories and profiles (overrides config)"`
	Seed       int64  `help:"Seed for agent randomness (zero picks one)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.HistoryDir != "" {
		cfg.Server.HistoryDir = c.HistoryDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var tableOpts []server.TableOption
	var snapshots server.SnapshotRecorder
	if dir := cfg.Server.HistoryDir; dir != "" {
		sink := persistence.NewSink(persistence.NewFileStore(dir), cfg.Server.QueueSize, logger)
		g.Go(func() error { return sink.Run(ctx) })
		tableOpts = append(tableOpts, server.WithRecorder(sink))
		snapshots = sink
		logger.Info("writing hand histories", "dir", dir)
	}

	// Tables created later through the API need the hub too, so the
	// manager is built before it and notifies through a closure.
	var hub *server.Hub
	tableOpts = append(tableOpts, server.WithNotifier(server.NotifierFunc(func(change server.StateChange) {
		hub.Notify(change)
	})))
	manager := server.NewManager(logger, tableOpts...)
	hub = server.NewHub(manager, logger)

	speech := agent.NewSpeechQueue(max(cfg.Server.SpeechBuffer, 64), logger)
	g.Go(func() error {
		for {
			select {
			case line := <-speech.Lines():
				logger.Debug("agent says", "agent", line.AgentID, "table", line.TableID, "emotion", line.Emotion, "text", line.Text)
				hub.Speak(line)
			case <-ctx.Done():
				return nil
			}
		}
	})

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	agents, err := newRoster(cfg, seed, speech, snapshots, logger)
	if err != nil {
		return err
	}

	for _, tc := range cfg.Tables {
		table, err := manager.Create(server.TableConfig{
			Name:            tc.Name,
			MaxPlayers:      tc.MaxPlayers,
			SmallBlind:      tc.SmallBlind,
			BigBlind:        tc.BigBlind,
			StartingChips:   tc.StartingChips,
			DecisionTimeout: tc.Timeout(),
			HandPause:       tc.Pause(),
			AutoStart:       tc.AutoStart,
			Remainder:       tc.RemainderPolicy(),
			Seed:            tc.Seed,
		})
		if err != nil {
			return err
		}
		for _, name := range tc.Agents {
			if err := agents.Seat(table, name); err != nil {
				return err
			}
		}
	}

	api := server.NewAPI(manager, hub, logger,
		server.WithAgents(agents.registry, agents.Seat),
		server.WithVersion(version))
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting server", "address", srv.Addr, "tables", len(cfg.Tables), "agents", len(cfg.Agents), "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		manager.Shutdown()
		agents.Wait()
		return err
	})
	return g.Wait()
}

