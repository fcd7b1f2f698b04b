package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/agentholdem/internal/game"
)

func TestParserChainTiers(t *testing.T) {
	t.Parallel()

	chain := DefaultChain(DefaultPolicy{})
	tests := []struct {
		name     string
		reply    string
		want     game.Decision
		emotion  Emotion
		wantTier Tier
	}{
		{
			name:     "structured block",
			reply:    "ACTION: raise\nAMOUNT: 120\nREASONING: strong hand\nEMOTION: confident\n",
			want:     game.Decision{Action: game.Raise, Amount: 120, Reasoning: "strong hand"},
			emotion:  Confident,
			wantTier: TierStructured,
		},
		{
			name:     "structured block with empty amount",
			reply:    "ACTION: call\nAMOUNT:\nREASONING: priced in\nEMOTION: calm",
			want:     game.Decision{Action: game.Call, Reasoning: "priced in"},
			emotion:  Calm,
			wantTier: TierStructured,
		},
		{
			name:     "inline block",
			reply:    "My answer: ACTION: all_in EMOTION: excited",
			want:     game.Decision{Action: game.AllIn},
			emotion:  Excited,
			wantTier: TierStructured,
		},
		{
			name:     "json object",
			reply:    `Sure. {"action": "check", "reasoning": "pot control", "emotion": "nervous"}`,
			want:     game.Decision{Action: game.Check, Reasoning: "pot control"},
			emotion:  Nervous,
			wantTier: TierStructured,
		},
		{
			name:     "keyword with raise to",
			reply:    "I think I'll raise to 150 because the pot odds are good.",
			want:     game.Decision{Action: game.Raise, Amount: 150, Reasoning: "the pot odds are good"},
			emotion:  Calm,
			wantTier: TierKeyword,
		},
		{
			name:     "keyword with chips amount",
			reply:    "Let me bet 80 chips here, feeling aggressive",
			want:     game.Decision{Action: game.Raise, Amount: 80},
			emotion:  Aggressive,
			wantTier: TierKeyword,
		},
		{
			name:     "keyword fold",
			reply:    "Honestly I have to fold this garbage.",
			want:     game.Decision{Action: game.Fold},
			emotion:  Calm,
			wantTier: TierKeyword,
		},
		{
			name:     "nothing recognisable",
			reply:    "hmm, tough spot",
			want:     game.Decision{Action: game.Fold, Reasoning: "default: conservative fold"},
			emotion:  Defensive,
			wantTier: TierDefault,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			parsed, tier, ok := chain.Parse(tc.reply, facingBet(0.2))
			assert.True(t, ok)
			assert.Equal(t, tc.wantTier, tier)
			assert.Equal(t, tc.want, parsed.Decision)
			assert.Equal(t, tc.emotion, parsed.Emotion)
		})
	}
}

func TestChainWithoutDefaultCanFail(t *testing.T) {
	t.Parallel()

	chain := ParserChain{StructuredParser{}, KeywordParser{}}
	_, _, ok := chain.Parse("no idea", facingBet(0.5))
	assert.False(t, ok)
}

func TestDefaultPolicyByPersonality(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy{AggressionThreshold: 0.6}
	tests := []struct {
		name string
		req  Request
		want game.Action
		amt  int
	}{
		{"aggressive facing bet calls", facingBet(0.9), game.Call, 0},
		{"aggressive unopened raises minimum", checkedTo(0.9), game.Raise, 20},
		{"conservative facing bet folds", facingBet(0.3), game.Fold, 0},
		{"conservative unopened checks", checkedTo(0.3), game.Check, 0},
		{"threshold is inclusive", facingBet(0.6), game.Call, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, _ := policy.Decide(tc.req)
			assert.Equal(t, tc.want, d.Action)
			assert.Equal(t, tc.amt, d.Amount)
		})
	}

	custom := DefaultPolicy{AggressionThreshold: 0.2}
	d, _ := custom.Decide(facingBet(0.3))
	assert.Equal(t, game.Call, d.Action, "threshold is configurable")
}
