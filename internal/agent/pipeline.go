package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/game"
)

// DefaultTimeout bounds a provider call when none is configured.
const DefaultTimeout = 10 * time.Second

// Result is a validated decision and how it was reached.
type Result struct {
	Decision   game.Decision `json:"decision"`
	Emotion    Emotion       `json:"emotion"`
	Tier       Tier          `json:"tier"`
	Clamped    bool          `json:"clamped,omitempty"`
	Confidence float64       `json:"confidence"`
	Bluff      bool          `json:"bluff,omitempty"`
	Reply      string        `json:"reply,omitempty"`
	Failure    error         `json:"-"` // wraps ErrProviderFailure when the default was forced
}

// Pipeline turns requests into legal decisions.
type Pipeline struct {
	provider Provider
	parsers  ParserChain
	policy   DefaultPolicy
	timeout  time.Duration
	recall   int
	speaker  Speaker
	logger   *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithParsers replaces the parser chain. The default policy still applies
// when no parser in the chain succeeds.
func WithParsers(chain ParserChain) Option {
	return func(p *Pipeline) { p.parsers = chain }
}

// WithDefaultPolicy sets the persona fallback mapping.
func WithDefaultPolicy(policy DefaultPolicy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithSpeaker sends voice lines to s.
func WithSpeaker(s Speaker) Option {
	return func(p *Pipeline) { p.speaker = s }
}

// WithRecall sets how many memories go into each request.
func WithRecall(n int) Option {
	return func(p *Pipeline) { p.recall = n }
}

// NewPipeline builds a pipeline around provider.
func NewPipeline(provider Provider, logger *log.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		policy:   DefaultPolicy{AggressionThreshold: DefaultAggressionThreshold},
		timeout:  DefaultTimeout,
		recall:   DefaultRecall,
		logger:   logger.WithPrefix("agent"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.parsers == nil {
		p.parsers = DefaultChain(p.policy)
	}
	return p
}

// Recall is the number of memories requests should carry.
func (p *Pipeline) Recall() int { return p.recall }

type reply struct {
	text string
	err  error
}

// Decide asks the provider and returns a legal decision. It never fails:
// provider errors and timeouts fall back to the persona default.
func (p *Pipeline) Decide(ctx context.Context, req Request) Result {
	var (
		parsed Parsed
		tier   Tier
		res    Result
	)

	text, err := p.ask(ctx, req)
	if err == nil {
		res.Reply = text
		var ok bool
		parsed, tier, ok = p.parsers.Parse(text, req)
		if !ok {
			err = fmt.Errorf("unparseable reply %q", truncate(text, 80))
		}
	}
	if err != nil {
		res.Failure = fmt.Errorf("%w: %w", ErrProviderFailure, err)
		p.logger.Warn("provider failure, using persona default",
			"agent", req.AgentID, "hand", req.HandID, "turn", req.Turn, "error", err)
		parsed, _ = PersonalityDefault{Policy: p.policy}.Parse("", req)
		tier = TierDefault
	}

	decision, clamped := Clamp(parsed.Decision, req.Valid)
	strength := Strength(req.Hole, req.Board)
	res.Decision = decision
	res.Emotion = parsed.Emotion
	res.Tier = tier
	res.Clamped = clamped
	res.Confidence = strength
	if tier == TierDefault {
		res.Confidence = strength / 2
	}
	res.Bluff = (decision.Action == game.Raise || decision.Action == game.AllIn) && strength < 0.35

	p.logger.Debug("decision",
		"agent", req.AgentID,
		"hand", req.HandID,
		"action", decision.String(),
		"tier", tier,
		"clamped", clamped)
	return res
}

// ask calls the provider under the timeout. A provider that ignores its
// context is abandoned once the deadline passes.
func (p *Pipeline) ask(ctx context.Context, req Request) (string, error) {
	if p.provider == nil {
		return "", fmt.Errorf("no provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan reply, 1)
	go func() {
		text, err := p.provider.RequestDecision(ctx, req)
		done <- reply{text: text, err: err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Record applies an accepted result to the agent's profile and speaks its
// voice line. Call it after the table has applied the decision, outside any
// table lock.
func (p *Pipeline) Record(profile *Profile, tableID string, req Request, res Result) Speech {
	profile.Observe(Observation{
		HandID:     req.HandID,
		Phase:      req.Phase,
		Decision:   res.Decision,
		Pot:        req.Pot,
		Opponent:   facing(req),
		Confidence: res.Confidence,
		Bluff:      res.Bluff,
		Fallback:   res.Tier == TierDefault,
	})
	speech := Speech{
		AgentID: profile.ID(),
		TableID: tableID,
		Text:    profile.VoiceLine(res.Decision, res.Emotion),
		Emotion: res.Emotion,
	}
	if p.speaker != nil {
		p.speaker.Speak(speech)
	}
	return speech
}

// facing names the opponent with the largest bet this street.
func facing(req Request) string {
	best, id := 0, ""
	for _, o := range req.Opponents {
		if o.Bet > best {
			best, id = o.Bet, o.ID
		}
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
