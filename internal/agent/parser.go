package agent

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/lox/agentholdem/internal/game"
)

// Tier identifies which parser produced a decision.
type Tier int

const (
	TierStructured Tier = iota + 1
	TierKeyword
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierKeyword:
		return "keyword"
	case TierDefault:
		return "default"
	}
	return "none"
}

// MarshalText encodes the tier name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Parsed is a decision extracted from a reply, before clamping.
type Parsed struct {
	Decision game.Decision
	Emotion  Emotion
}

// Parser is one strategy of the chain. It reports false when it cannot make
// sense of the reply.
type Parser interface {
	Tier() Tier
	Parse(reply string, req Request) (Parsed, bool)
}

// ParserChain tries each parser in order.
type ParserChain []Parser

// DefaultChain is structured, then keyword, then the personality default.
func DefaultChain(policy DefaultPolicy) ParserChain {
	return ParserChain{StructuredParser{}, KeywordParser{}, PersonalityDefault{Policy: policy}}
}

// Parse returns the first successful parse and its tier.
func (c ParserChain) Parse(reply string, req Request) (Parsed, Tier, bool) {
	for _, p := range c {
		if parsed, ok := p.Parse(reply, req); ok {
			return parsed, p.Tier(), true
		}
	}
	return Parsed{}, 0, false
}

// StructuredParser accepts a JSON object or an ACTION:/AMOUNT:/REASONING:/
// EMOTION: block.
type StructuredParser struct{}

func (StructuredParser) Tier() Tier { return TierStructured }

var (
	fieldAction    = regexp.MustCompile(`(?i)\bACTION:\s*(fold|check|call|raise|bet|all[ _-]?in)\b`)
	fieldAmount    = regexp.MustCompile(`(?i)\bAMOUNT:[ \t]*(\d+)`)
	fieldReasoning = regexp.MustCompile(`(?im)\bREASONING:[ \t]*(.+?)\s*$`)
	fieldEmotion   = regexp.MustCompile(`(?i)\bEMOTION:\s*([a-z]+)`)
)

func (StructuredParser) Parse(reply string, _ Request) (Parsed, bool) {
	if parsed, ok := parseJSONReply(reply); ok {
		return parsed, true
	}

	m := fieldAction.FindStringSubmatch(reply)
	if m == nil {
		return Parsed{}, false
	}
	action, err := game.ParseAction(m[1])
	if err != nil {
		return Parsed{}, false
	}
	parsed := Parsed{Decision: game.Decision{Action: action}, Emotion: Calm}
	if a := fieldAmount.FindStringSubmatch(reply); a != nil {
		parsed.Decision.Amount, _ = strconv.Atoi(a[1])
	}
	if r := fieldReasoning.FindStringSubmatch(reply); r != nil {
		parsed.Decision.Reasoning = r[1]
	}
	if e := fieldEmotion.FindStringSubmatch(reply); e != nil {
		if emotion, ok := ParseEmotion(e[1]); ok {
			parsed.Emotion = emotion
		}
	}
	return parsed, true
}

type jsonReply struct {
	Action    string `json:"action"`
	Amount    int    `json:"amount"`
	Reasoning string `json:"reasoning"`
	Emotion   string `json:"emotion"`
}

func parseJSONReply(reply string) (Parsed, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Parsed{}, false
	}
	var r jsonReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return Parsed{}, false
	}
	action, err := game.ParseAction(r.Action)
	if err != nil {
		return Parsed{}, false
	}
	parsed := Parsed{
		Decision: game.Decision{Action: action, Amount: r.Amount, Reasoning: r.Reasoning},
		Emotion:  Calm,
	}
	if emotion, ok := ParseEmotion(r.Emotion); ok {
		parsed.Emotion = emotion
	}
	return parsed, true
}

// KeywordParser scans free text for the first action keyword and an amount.
type KeywordParser struct{}

func (KeywordParser) Tier() Tier { return TierKeyword }

var (
	keywordAction  = regexp.MustCompile(`(?i)\b(fold|check|call|raise|bet|shove|all[ _-]?in)\b`)
	keywordAmounts = []*regexp.Regexp{
		regexp.MustCompile(`(?i)raise\s+to\s+(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*chips?`),
		regexp.MustCompile(`(?i)bet\s+(\d+)`),
		regexp.MustCompile(`(?i)amount:\s*(\d+)`),
	}
	keywordReasons = []*regexp.Regexp{
		regexp.MustCompile(`(?is)reasoning:\s*(.*?)(?:\n|$)`),
		regexp.MustCompile(`(?is)because\s+(.*?)(?:\n|\.|$)`),
		regexp.MustCompile(`(?is)since\s+(.*?)(?:\n|\.|$)`),
	}
	keywordEmotion = regexp.MustCompile(`(?i)\b(calm|aggressive|defensive|confident|nervous|excited|frustrated)\b`)
)

func (KeywordParser) Parse(reply string, _ Request) (Parsed, bool) {
	m := keywordAction.FindStringSubmatch(reply)
	if m == nil {
		return Parsed{}, false
	}
	action, err := game.ParseAction(m[1])
	if err != nil {
		return Parsed{}, false
	}
	parsed := Parsed{Decision: game.Decision{Action: action}, Emotion: Calm}
	for _, re := range keywordAmounts {
		if a := re.FindStringSubmatch(reply); a != nil {
			if n, err := strconv.Atoi(a[1]); err == nil {
				parsed.Decision.Amount = n
				break
			}
		}
	}
	for _, re := range keywordReasons {
		// Fragments under ten characters are noise.
		if r := re.FindStringSubmatch(reply); r != nil && len(strings.TrimSpace(r[1])) > 10 {
			parsed.Decision.Reasoning = strings.TrimSpace(r[1])
			break
		}
	}
	if e := keywordEmotion.FindStringSubmatch(reply); e != nil {
		parsed.Emotion, _ = ParseEmotion(e[1])
	}
	return parsed, true
}

// DefaultPolicy maps a persona to its deterministic fallback decision.
// Profiles whose effective aggression reaches AggressionThreshold call when
// facing a bet and make the minimum raise otherwise; the rest check when
// possible and fold when not.
type DefaultPolicy struct {
	AggressionThreshold float64
}

// DefaultAggressionThreshold splits aggressive from conservative personas.
const DefaultAggressionThreshold = 0.6

// Decide returns the fallback decision for req. It is a suggestion and may
// still need clamping.
func (p DefaultPolicy) Decide(req Request) (game.Decision, Emotion) {
	threshold := p.AggressionThreshold
	if threshold <= 0 {
		threshold = DefaultAggressionThreshold
	}
	if req.Traits.Aggression >= threshold {
		if req.ToCall > 0 {
			return game.Decision{Action: game.Call, Reasoning: "default: aggressive call"}, Aggressive
		}
		if raise, ok := req.Can(game.Raise); ok {
			return game.Decision{Action: game.Raise, Amount: raise.Min, Reasoning: "default: aggressive min-raise"}, Aggressive
		}
		return game.Decision{Action: game.Check, Reasoning: "default: aggressive check"}, Calm
	}
	if _, ok := req.Can(game.Check); ok {
		return game.Decision{Action: game.Check, Reasoning: "default: conservative check"}, Calm
	}
	return game.Decision{Action: game.Fold, Reasoning: "default: conservative fold"}, Defensive
}

// PersonalityDefault always succeeds with the persona's fallback.
type PersonalityDefault struct {
	Policy DefaultPolicy
}

func (PersonalityDefault) Tier() Tier { return TierDefault }

func (d PersonalityDefault) Parse(_ string, req Request) (Parsed, bool) {
	decision, emotion := d.Policy.Decide(req)
	return Parsed{Decision: decision, Emotion: emotion}, true
}
