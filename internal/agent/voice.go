package agent

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/game"
)

var actionLines = map[game.Action][]string{
	game.Fold:  {"I'll fold this one.", "Not this time.", "I'm out.", "Too rich for my blood."},
	game.Check: {"I'll check.", "Checking to you.", "Let's see what you've got."},
	game.Call:  {"I'll call.", "I'm in.", "Let's see the next card.", "I'll match that."},
	game.Raise: {"I raise.", "Raising the stakes.", "Let's make this interesting.", "Time to put some pressure on."},
	game.AllIn: {"All in!", "Everything I've got!", "All or nothing!"},
}

var emotionLines = map[Emotion][]string{
	Confident:  {"I've got this.", "The cards are with me."},
	Nervous:    {"I'm not sure about this...", "This could go either way..."},
	Excited:    {"This is exciting!", "I'm pumped!"},
	Frustrated: {"I can't catch a break.", "I need a change of luck."},
	Calm:       {"No rush.", "I'm in control."},
	Aggressive: {"I'm coming for you!", "I'm not backing down!"},
	Defensive:  {"I need to be careful.", "I'll wait for a better hand."},
}

// Speech is a line an agent says out loud.
type Speech struct {
	AgentID string  `json:"agent_id"`
	TableID string  `json:"table_id,omitempty"`
	Text    string  `json:"text"`
	Emotion Emotion `json:"emotion"`
}

// Speaker consumes speech. Implementations must not block.
type Speaker interface {
	Speak(Speech)
}

// SpeechQueue is a buffered Speaker that drops lines when full.
type SpeechQueue struct {
	ch     chan Speech
	logger *log.Logger
}

// NewSpeechQueue returns a queue holding up to size lines.
func NewSpeechQueue(size int, logger *log.Logger) *SpeechQueue {
	return &SpeechQueue{ch: make(chan Speech, size), logger: logger.WithPrefix("voice")}
}

func (q *SpeechQueue) Speak(s Speech) {
	select {
	case q.ch <- s:
	default:
		q.logger.Warn("speech dropped, queue full", "agent", s.AgentID)
	}
}

// Lines is the receiving side for a voice synthesizer.
func (q *SpeechQueue) Lines() <-chan Speech {
	return q.ch
}

// VoiceLine picks what the agent says for d given its emotion. Persona
// reactions come first, falling back to stock lines for the emotion, then
// taunts and catchphrases, then a line for the action itself.
func (p *Profile) VoiceLine(d game.Decision, emotion Emotion) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.VoiceLines++

	reactions := p.persona.Reactions[emotion]
	if len(reactions) == 0 {
		reactions = emotionLines[emotion]
	}
	if len(reactions) > 0 && p.rng.Float64() < 0.4 {
		return reactions[p.rng.IntN(len(reactions))]
	}
	if (d.Action == game.Raise || d.Action == game.AllIn) && len(p.persona.Taunts) > 0 && p.rng.Float64() < 0.3 {
		return p.persona.Taunts[p.rng.IntN(len(p.persona.Taunts))]
	}
	if len(p.persona.Catchphrases) > 0 && p.rng.Float64() < 0.2 {
		return p.persona.Catchphrases[p.rng.IntN(len(p.persona.Catchphrases))]
	}
	if lines := actionLines[d.Action]; len(lines) > 0 {
		line := lines[p.rng.IntN(len(lines))]
		if d.Action == game.Raise && d.Amount > 0 {
			line = fmt.Sprintf("%s %d chips.", line, d.Amount)
		}
		return line
	}
	return "My move."
}
