package agent

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/agentholdem/internal/game"
)

const (
	recentWindow   = 5
	bluffWindow    = 3
	modifierStep   = 0.1
	modifierDrift  = 0.05
	aggressionMin  = 0.5
	aggressionMax  = 1.5
	bluffMax       = 1.3
	tiltUp         = 0.2
	tiltDown       = 0.1
	tiltThreshold  = 0.7
	confidentAbove = 0.8
	nervousBelow   = 0.3
)

const (
	// DefaultMemory is the memory capacity used when none is configured.
	DefaultMemory = 10
	// DefaultRecall is how many memories a prompt includes.
	DefaultRecall = 5
)

// Stats are an agent's running totals across every table it plays.
type Stats struct {
	HandsPlayed     int `json:"hands_played"`
	HandsWon        int `json:"hands_won"`
	Decisions       int `json:"decisions"`
	Fallbacks       int `json:"fallbacks"`
	BluffsAttempted int `json:"bluffs_attempted"`
	BluffsSucceeded int `json:"bluffs_succeeded"`
	VoiceLines      int `json:"voice_lines"`
	ChipsWon        int `json:"chips_won"`
	ChipsLost       int `json:"chips_lost"`
	BiggestPot      int `json:"biggest_pot"`
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
}

// WinRate is hands won over hands played.
func (s Stats) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0
	}
	return float64(s.HandsWon) / float64(s.HandsPlayed)
}

// Profile is the mutable behavioural state of one agent. All methods are
// safe for concurrent use.
type Profile struct {
	mu      sync.Mutex
	id      string
	persona Persona
	clock   quartz.Clock
	rng     *rand.Rand

	emotion       Emotion
	confidence    float64
	aggressionMod float64
	bluffMod      float64
	tilt          float64
	recent        []game.Action
	memory        *memories
	stats         Stats
	bluffing      map[string]bool // hand IDs with a bluff in flight
}

// ProfileOption configures a Profile.
type ProfileOption func(*Profile)

// WithProfileClock sets the clock used to timestamp memories.
func WithProfileClock(clock quartz.Clock) ProfileOption {
	return func(p *Profile) { p.clock = clock }
}

// NewProfile creates the profile for agent id playing persona. rng drives
// voice line selection.
func NewProfile(id string, persona Persona, memoryCapacity int, rng *rand.Rand, opts ...ProfileOption) *Profile {
	p := &Profile{
		id:            id,
		persona:       persona,
		clock:         quartz.NewReal(),
		rng:           rng,
		emotion:       Calm,
		confidence:    0.5,
		aggressionMod: 1,
		bluffMod:      1,
		memory:        newMemories(memoryCapacity),
		bluffing:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Profile) ID() string { return p.id }

func (p *Profile) Persona() Persona { return p.persona }

// Effective returns the persona's traits after modifiers and tilt.
func (p *Profile) Effective() Traits {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effective()
}

func (p *Profile) effective() Traits {
	t := p.persona.Traits
	t.Aggression *= p.aggressionMod
	t.BluffFrequency *= p.bluffMod
	if p.tilt > tiltThreshold {
		t.Aggression *= 1.5
		t.BluffFrequency *= 1.3
	}
	t.Aggression = clamp01(t.Aggression)
	t.BluffFrequency = clamp01(t.BluffFrequency)
	return t
}

// Emotion returns the current emotion.
func (p *Profile) Emotion() Emotion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.emotion
}

// Stats returns a copy of the running statistics.
func (p *Profile) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Recall returns up to n memories, most important first.
func (p *Profile) Recall(n int) []Memory {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memory.recall(n)
}

// Observation is an applied decision as seen by its agent.
type Observation struct {
	HandID     string
	Phase      game.Phase
	Decision   game.Decision
	Pot        int
	Opponent   string
	Confidence float64
	Bluff      bool
	Fallback   bool
}

// Observe updates emotion, modifiers, memory and statistics after the agent
// acted. It returns the resulting emotion.
func (p *Profile) Observe(o Observation) Emotion {
	p.mu.Lock()
	defer p.mu.Unlock()

	action := o.Decision.Action
	p.recent = append(p.recent, action)
	if len(p.recent) > recentWindow {
		p.recent = p.recent[len(p.recent)-recentWindow:]
	}
	p.confidence = clamp01(o.Confidence)

	switch action {
	case game.Raise, game.AllIn:
		p.setEmotion(Aggressive)
	case game.Fold:
		p.setEmotion(Defensive)
	default:
		switch {
		case p.confidence > confidentAbove:
			p.setEmotion(Confident)
		case p.confidence < nervousBelow:
			p.setEmotion(Nervous)
		default:
			p.setEmotion(Calm)
		}
	}

	aggressive, passive, folds := 0, 0, 0
	for _, a := range p.recent {
		switch a {
		case game.Raise, game.AllIn:
			aggressive++
		case game.Fold:
			passive++
			folds++
		case game.Check:
			passive++
		}
	}
	switch {
	case aggressive > passive:
		p.aggressionMod = min(aggressionMax, p.aggressionMod+modifierStep)
	case passive > aggressive:
		p.aggressionMod = max(aggressionMin, p.aggressionMod-modifierStep)
	default:
		p.aggressionMod = towardOne(p.aggressionMod)
	}

	raises := 0
	for _, a := range p.recent[max(0, len(p.recent)-bluffWindow):] {
		if a == game.Raise {
			raises++
		}
	}
	if raises >= 2 {
		p.bluffMod = min(bluffMax, p.bluffMod+modifierStep)
	} else if p.bluffMod > 1 {
		p.bluffMod = max(1, p.bluffMod-modifierDrift)
	}

	// Folding after aggression reads as tilt.
	if folds > aggressive && aggressive > 0 {
		p.tilt = clamp01(p.tilt + tiltUp)
	} else {
		p.tilt = clamp01(p.tilt - tiltDown)
	}

	p.stats.Decisions++
	if o.Fallback {
		p.stats.Fallbacks++
	}
	if o.Bluff && !p.bluffing[o.HandID] {
		p.bluffing[o.HandID] = true
		p.stats.BluffsAttempted++
	}

	p.memory.add(Memory{
		Time:       p.clock.Now(),
		HandID:     o.HandID,
		Opponent:   o.Opponent,
		Phase:      o.Phase,
		Action:     action,
		Amount:     o.Decision.Amount,
		Pot:        o.Pot,
		Importance: actionImportance(action, o.Decision.Amount, o.Pot),
	})
	return p.emotion
}

// HandResult is how a finished hand went for the agent.
type HandResult struct {
	HandID   string
	Phase    game.Phase // phase reached by the agent
	Won      bool
	Net      int // chips gained (positive) or lost (negative)
	Pot      int // total pot of the hand
	Opponent string
}

// RecordOutcome folds a finished hand into statistics and memory. A win
// lowers tilt by 0.1 and a loss raises it by 0.2 through the emotion it
// sets. It returns the resulting emotion.
func (p *Profile) RecordOutcome(r HandResult) Emotion {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.HandsPlayed++
	bluffed := p.bluffing[r.HandID]
	delete(p.bluffing, r.HandID)

	var outcome Outcome
	switch {
	case r.Won:
		p.stats.HandsWon++
		p.stats.CurrentStreak++
		p.stats.LongestStreak = max(p.stats.LongestStreak, p.stats.CurrentStreak)
		p.stats.ChipsWon += max(r.Net, 0)
		if r.Pot > p.stats.BiggestPot {
			p.stats.BiggestPot = r.Pot
			p.setEmotion(Excited)
		} else {
			p.setEmotion(Confident)
		}
		outcome = OutcomeWon
		if bluffed {
			p.stats.BluffsSucceeded++
			outcome = OutcomeBluffWon
		}
	case r.Net < 0:
		p.stats.CurrentStreak = 0
		p.stats.ChipsLost += -r.Net
		p.setEmotion(Frustrated)
		outcome = OutcomeLost
		if bluffed {
			outcome = OutcomeBluffFailed
		}
	default:
		p.stats.CurrentStreak = 0
		outcome = OutcomeFolded
	}

	p.memory.add(Memory{
		Time:       p.clock.Now(),
		HandID:     r.HandID,
		Opponent:   r.Opponent,
		Phase:      r.Phase,
		Amount:     abs(r.Net),
		Pot:        r.Pot,
		Outcome:    outcome,
		Importance: outcomeImportance(outcome, r.Pot, p.stats.BiggestPot),
	})
	return p.emotion
}

// setEmotion changes the mood, nudging tilt for the emotions that feed it.
func (p *Profile) setEmotion(e Emotion) {
	p.emotion = e
	switch e.tilting() {
	case 1:
		p.tilt = clamp01(p.tilt + tiltUp)
	case -1:
		p.tilt = clamp01(p.tilt - tiltDown)
	}
}

// Snapshot is a point-in-time copy of a profile for prompts and storage.
type Snapshot struct {
	ID                 string    `json:"id"`
	Persona            string    `json:"persona"`
	Time               time.Time `json:"time"`
	Emotion            Emotion   `json:"emotion"`
	Confidence         float64   `json:"confidence"`
	AggressionModifier float64   `json:"aggression_modifier"`
	BluffModifier      float64   `json:"bluff_modifier"`
	Tilt               float64   `json:"tilt"`
	Effective          Traits    `json:"effective"`
	Recent             []string  `json:"recent_actions"`
	Memories           []Memory  `json:"memories"`
	Stats              Stats     `json:"stats"`
}

// Snapshot copies the profile state.
func (p *Profile) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	recent := make([]string, len(p.recent))
	for i, a := range p.recent {
		recent[i] = a.String()
	}
	return Snapshot{
		ID:                 p.id,
		Persona:            p.persona.ID,
		Time:               p.clock.Now(),
		Emotion:            p.emotion,
		Confidence:         p.confidence,
		AggressionModifier: p.aggressionMod,
		BluffModifier:      p.bluffMod,
		Tilt:               p.tilt,
		Effective:          p.effective(),
		Recent:             recent,
		Memories:           p.memory.all(),
		Stats:              p.stats,
	}
}

func actionImportance(a game.Action, amount, pot int) float64 {
	switch a {
	case game.Raise, game.AllIn:
		if pot <= 0 {
			return 0.6
		}
		return clamp01(0.4 + 0.6*float64(amount)/float64(pot+amount))
	case game.Fold:
		return 0.2
	}
	return 0.3
}

func outcomeImportance(o Outcome, pot, biggest int) float64 {
	base := 0.5
	switch o {
	case OutcomeBluffWon, OutcomeBluffFailed:
		base = 0.8
	case OutcomeFolded:
		return 0.2
	}
	if biggest > 0 {
		base += 0.2 * float64(pot) / float64(biggest)
	}
	return clamp01(base)
}

func towardOne(v float64) float64 {
	if v > 1 {
		return max(1, v-modifierDrift)
	}
	return min(1, v+modifierDrift)
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
