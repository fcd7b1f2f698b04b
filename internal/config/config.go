// Package config loads server, table and agent settings from HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
)

// Defaults applied to missing values.
const (
	DefaultAddress         = "localhost:8080"
	DefaultMaxPlayers      = 6
	DefaultStartingChips   = 1000
	DefaultDecisionTimeout = 30 * time.Second
	DefaultHandPause       = 2 * time.Second
	DefaultProvider        = "rules"
)

// Config is the complete configuration file.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
	Agents []AgentConfig  `hcl:"agent,block"`
}

// ServerSettings configures the process.
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	HistoryDir   string `hcl:"history_dir,optional"`
	QueueSize    int    `hcl:"queue_size,optional"`
	SpeechBuffer int    `hcl:"speech_buffer,optional"`
}

// TableConfig defines a table created at startup.
type TableConfig struct {
	Name            string   `hcl:"name,label"`
	MaxPlayers      int      `hcl:"max_players,optional"`
	SmallBlind      int      `hcl:"small_blind"`
	BigBlind        int      `hcl:"big_blind"`
	StartingChips   int      `hcl:"starting_chips,optional"`
	DecisionTimeout string   `hcl:"decision_timeout,optional"`
	HandPause       string   `hcl:"hand_pause,optional"`
	Remainder       string   `hcl:"remainder,optional"`
	AutoStart       bool     `hcl:"auto_start,optional"`
	Seed            int64    `hcl:"seed,optional"`
	Agents          []string `hcl:"agents,optional"`
}

// AgentConfig defines an automated player.
type AgentConfig struct {
	Name                string  `hcl:"name,label"`
	Persona             string  `hcl:"persona,optional"`
	MemoryCapacity      int     `hcl:"memory_capacity,optional"`
	Recall              int     `hcl:"recall,optional"`
	Provider            string  `hcl:"provider,optional"`
	Endpoint            string  `hcl:"endpoint,optional"`
	Model               string  `hcl:"model,optional"`
	APIKeyEnv           string  `hcl:"api_key_env,optional"`
	Temperature         float64 `hcl:"temperature,optional"`
	AggressionThreshold float64 `hcl:"aggression_threshold,optional"`
}

// Default returns a single table seating three rule-based agents.
func Default() *Config {
	cfg := &Config{
		Tables: []TableConfig{{
			Name:       "main",
			SmallBlind: 10,
			BigBlind:   20,
			AutoStart:  true,
			Agents:     []string{"the_rock", "the_shark", "the_maniac"},
		}},
	}
	for _, id := range []string{"the_rock", "the_shark", "the_maniac"} {
		cfg.Agents = append(cfg.Agents, AgentConfig{Name: id})
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads filename, falling back to Default when it does not exist.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}
	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = DefaultMaxPlayers
		}
		if t.StartingChips == 0 {
			t.StartingChips = DefaultStartingChips
		}
		if t.DecisionTimeout == "" {
			t.DecisionTimeout = DefaultDecisionTimeout.String()
		}
		if t.HandPause == "" {
			t.HandPause = DefaultHandPause.String()
		}
		if t.Remainder == "" {
			t.Remainder = game.RemainderNearestButton.String()
		}
	}
	for i := range c.Agents {
		a := &c.Agents[i]
		if a.Persona == "" {
			a.Persona = a.Name
		}
		if a.MemoryCapacity == 0 {
			a.MemoryCapacity = agent.DefaultMemory
		}
		if a.Recall == 0 {
			a.Recall = agent.DefaultRecall
		}
		if a.Provider == "" {
			a.Provider = DefaultProvider
		}
		if a.AggressionThreshold == 0 {
			a.AggressionThreshold = agent.DefaultAggressionThreshold
		}
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server == nil || c.Server.Address == "" {
		return errors.New("server: address is required")
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if len(c.Tables) == 0 {
		return errors.New("at least one table must be configured")
	}

	agents := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if agents[a.Name] {
			return fmt.Errorf("agent %s: defined twice", a.Name)
		}
		agents[a.Name] = true
		if err := a.validate(); err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}
	}

	tables := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if tables[t.Name] {
			return fmt.Errorf("table %s: defined twice", t.Name)
		}
		tables[t.Name] = true
		if err := t.validate(agents); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (t TableConfig) validate(agents map[string]bool) error {
	switch {
	case t.SmallBlind <= 0:
		return errors.New("small blind must be positive")
	case t.BigBlind < t.SmallBlind:
		return errors.New("big blind must be at least the small blind")
	case t.MaxPlayers < 2 || t.MaxPlayers > 10:
		return errors.New("max players must be between 2 and 10")
	case t.StartingChips < t.BigBlind:
		return errors.New("starting chips must cover the big blind")
	case len(t.Agents) > t.MaxPlayers:
		return fmt.Errorf("%d agents do not fit %d seats", len(t.Agents), t.MaxPlayers)
	}
	timeout, err := time.ParseDuration(t.DecisionTimeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("invalid decision timeout %q", t.DecisionTimeout)
	}
	if t.HandPause != "" {
		if pause, err := time.ParseDuration(t.HandPause); err != nil || pause < 0 {
			return fmt.Errorf("invalid hand pause %q", t.HandPause)
		}
	}
	if _, err := game.ParseRemainderPolicy(t.Remainder); err != nil {
		return err
	}
	seen := make(map[string]bool, len(t.Agents))
	for _, name := range t.Agents {
		if !agents[name] {
			return fmt.Errorf("unknown agent %q", name)
		}
		if seen[name] {
			return fmt.Errorf("agent %q seated twice", name)
		}
		seen[name] = true
	}
	return nil
}

func (a AgentConfig) validate() error {
	if _, err := agent.LookupPersona(a.Persona); err != nil {
		return err
	}
	if a.MemoryCapacity < 0 || a.Recall < 0 {
		return errors.New("memory capacity and recall cannot be negative")
	}
	if a.AggressionThreshold < 0 || a.AggressionThreshold > 1 {
		return errors.New("aggression threshold must be within [0,1]")
	}
	switch a.Provider {
	case "rules":
	case "http":
		if a.Endpoint == "" || a.Model == "" {
			return errors.New("http provider needs endpoint and model")
		}
	default:
		return fmt.Errorf("unknown provider %q", a.Provider)
	}
	return nil
}

// Timeout is the parsed decision timeout, or the default when invalid.
func (t TableConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(t.DecisionTimeout)
	if err != nil || d <= 0 {
		return DefaultDecisionTimeout
	}
	return d
}

// Pause is the delay between automatically started hands.
func (t TableConfig) Pause() time.Duration {
	d, err := time.ParseDuration(t.HandPause)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// RemainderPolicy is the parsed remainder policy.
func (t TableConfig) RemainderPolicy() game.RemainderPolicy {
	p, _ := game.ParseRemainderPolicy(t.Remainder)
	return p
}

// Agent returns the named agent definition.
func (c *Config) Agent(name string) (AgentConfig, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// APIKey reads the key from the configured environment variable.
func (a AgentConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}
