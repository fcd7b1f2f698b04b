package agent

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"

	"github.com/lox/agentholdem/internal/game"
	"github.com/lox/agentholdem/poker"
)

// RulesProvider answers offline from hand strength, pot odds and the
// request's effective traits. Replies use the structured block format so
// they parse at the first tier.
type RulesProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRulesProvider returns a provider drawing its randomness from rng.
func NewRulesProvider(rng *rand.Rand) *RulesProvider {
	return &RulesProvider{rng: rng}
}

var madeStrength = map[poker.HandType]float64{
	poker.HighCard:      0.1,
	poker.Pair:          0.4,
	poker.TwoPair:       0.6,
	poker.ThreeOfAKind:  0.7,
	poker.Straight:      0.8,
	poker.Flush:         0.85,
	poker.FullHouse:     0.92,
	poker.FourOfAKind:   0.97,
	poker.StraightFlush: 1,
}

// Strength estimates how good the hole cards are on the given board, in [0,1].
func Strength(hole, board []string) float64 {
	h, err := poker.ParseHand(strings.Join(hole, " "))
	if err != nil || h.Count() != 2 {
		return 0
	}
	if len(board) < 3 {
		return poker.CategorizeHole(h).Strength()
	}
	b, err := poker.ParseHand(strings.Join(board, " "))
	if err != nil {
		return 0
	}
	rank, err := poker.Evaluate(h | b)
	if err != nil {
		return 0
	}
	strength := madeStrength[rank.Type()]
	// Playing the board is worth little.
	if b.Count() == 5 {
		if boardRank, err := poker.Evaluate(b); err == nil && boardRank == rank {
			strength = 0.15
		}
	}
	return strength
}

func (p *RulesProvider) RequestDecision(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	roll, bluffRoll := p.rng.Float64(), p.rng.Float64()
	p.mu.Unlock()

	strength := Strength(req.Hole, req.Board)
	t := req.Traits
	raise, canRaise := req.Can(game.Raise)

	var (
		action    = game.Fold
		amount    int
		reasoning string
		emotion   = Calm
	)
	switch {
	case canRaise && strength >= 0.75-0.2*t.Aggression:
		action = game.Raise
		amount = raiseSize(raise, req.Pot, t.Aggression)
		reasoning = fmt.Sprintf("strong hand (%.2f), building the pot", strength)
		emotion = Confident
	case req.ToCall == 0:
		if canRaise && bluffRoll < t.BluffFrequency*0.3 {
			action = game.Raise
			amount = raise.Min
			reasoning = "nobody has shown strength, taking a stab"
			emotion = Aggressive
		} else {
			action = game.Check
			reasoning = fmt.Sprintf("checking with %.2f strength", strength)
		}
	case strength >= req.PotOdds+(1-t.RiskTolerance)*0.2 || roll < t.RiskTolerance*0.25:
		action = game.Call
		reasoning = fmt.Sprintf("strength %.2f against pot odds %.2f", strength, req.PotOdds)
	case canRaise && bluffRoll < t.BluffFrequency*0.2:
		action = game.Raise
		amount = raise.Min
		reasoning = "representing a big hand"
		emotion = Aggressive
	default:
		reasoning = fmt.Sprintf("strength %.2f does not justify %d to call", strength, req.ToCall)
		emotion = Defensive
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACTION: %s\n", action)
	if amount > 0 {
		fmt.Fprintf(&b, "AMOUNT: %d\n", amount)
	} else {
		b.WriteString("AMOUNT:\n")
	}
	fmt.Fprintf(&b, "REASONING: %s\n", reasoning)
	fmt.Fprintf(&b, "EMOTION: %s\n", emotion)
	return b.String(), nil
}

// raiseSize scales from the minimum towards a pot-sized raise with
// aggression.
func raiseSize(raise game.ValidAction, pot int, aggression float64) int {
	target := raise.Min + int(float64(pot)*aggression/2)
	return min(max(target, raise.Min), raise.Max)
}
