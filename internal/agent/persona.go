package agent

import (
	"fmt"
	"slices"
)

// Traits are the static tendencies of a persona, each in [0,1].
type Traits struct {
	Aggression     float64 `json:"aggression"`
	BluffFrequency float64 `json:"bluff_frequency"`
	RiskTolerance  float64 `json:"risk_tolerance"`
	Patience       float64 `json:"patience"`
	MemoryWeight   float64 `json:"memory_weight"`
}

// Persona is a named playing style with its voice material.
type Persona struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Style        []string             `json:"style"`
	Traits       Traits               `json:"traits"`
	VoiceStyle   string               `json:"voice_style"`
	Catchphrases []string             `json:"catchphrases,omitempty"`
	Taunts       []string             `json:"taunts,omitempty"`
	Reactions    map[Emotion][]string `json:"reactions,omitempty"`
}

var personas = map[string]Persona{
	"the_rock": {
		ID:          "the_rock",
		Name:        "The Rock",
		Description: "A conservative, calculated player who waits for the perfect moment to strike.",
		Style:       []string{"conservative", "shark", "tight"},
		Traits:      Traits{Aggression: 0.4, BluffFrequency: 0.2, RiskTolerance: 0.3, Patience: 0.9, MemoryWeight: 0.8},
		VoiceStyle:  "calm",
		Catchphrases: []string{
			"Patience is a virtue, especially in poker.",
			"I'll wait for the right moment.",
			"Quality over quantity, always.",
		},
		Taunts: []string{
			"Your aggression is your weakness.",
			"I've seen this pattern before.",
			"You're too predictable.",
		},
		Reactions: map[Emotion][]string{
			Confident: {"I've been waiting for this hand.", "The odds are in my favor."},
			Nervous:   {"I need to be careful here.", "Let me think about this."},
			Calm:      {"Steady as she goes.", "No need to rush anything."},
		},
	},
	"the_maniac": {
		ID:          "the_maniac",
		Name:        "The Maniac",
		Description: "A wild, unpredictable player who plays every hand and raises constantly.",
		Style:       []string{"maniac", "aggressive", "loose"},
		Traits:      Traits{Aggression: 0.95, BluffFrequency: 0.9, RiskTolerance: 0.9, Patience: 0.1, MemoryWeight: 0.2},
		VoiceStyle:  "excited",
		Catchphrases: []string{
			"Let's make this interesting!",
			"I'm feeling lucky!",
			"All in or nothing!",
		},
		Taunts: []string{
			"Are you scared or just boring?",
			"Come on, live a little!",
			"This is poker, not knitting!",
		},
		Reactions: map[Emotion][]string{
			Excited:    {"This is what I live for!", "I'm on fire tonight!"},
			Frustrated: {"Lady Luck is being a tease!", "Come on, give me something!"},
			Aggressive: {"Time to shake things up!", "No guts, no glory!"},
		},
	},
	"the_shark": {
		ID:          "the_shark",
		Name:        "The Shark",
		Description: "A professional, analytical player who studies every detail and calculates odds.",
		Style:       []string{"shark", "conservative", "tight"},
		Traits:      Traits{Aggression: 0.6, BluffFrequency: 0.3, RiskTolerance: 0.5, Patience: 0.8, MemoryWeight: 0.9},
		VoiceStyle:  "confident",
		Catchphrases: []string{
			"The numbers don't lie.",
			"I've calculated the odds.",
			"Let's analyze this situation.",
		},
		Taunts: []string{
			"Your math is as bad as your poker.",
			"The odds are not in your favor.",
		},
		Reactions: map[Emotion][]string{
			Confident: {"The probability is clear.", "I've done the calculations."},
			Nervous:   {"This requires careful consideration.", "I need to recalculate."},
			Calm:      {"Let's approach this systematically.", "This is a calculated risk."},
		},
	},
	"the_fish": {
		ID:          "the_fish",
		Name:        "The Fish",
		Description: "A loose calling station who rarely folds and relies on luck.",
		Style:       []string{"loose", "calling_station", "fish"},
		Traits:      Traits{Aggression: 0.3, BluffFrequency: 0.1, RiskTolerance: 0.7, Patience: 0.2, MemoryWeight: 0.3},
		VoiceStyle:  "nervous",
		Catchphrases: []string{
			"I'll call that.",
			"Why not?",
			"Let's see what happens.",
		},
		Taunts: []string{
			"Luck beats skill sometimes.",
			"I might surprise you.",
		},
		Reactions: map[Emotion][]string{
			Nervous:   {"Oh wow, that worked!", "Sometimes you get lucky!"},
			Excited:   {"Maybe this is my hand!", "Let's see what the cards say."},
			Defensive: {"No big deal.", "I'm just here to have fun."},
		},
	},
	"the_bluffer": {
		ID:          "the_bluffer",
		Name:        "The Bluffer",
		Description: "A street-smart player who loves to bluff and trash talk.",
		Style:       []string{"aggressive", "bluffer", "loose"},
		Traits:      Traits{Aggression: 0.8, BluffFrequency: 0.7, RiskTolerance: 0.6, Patience: 0.3, MemoryWeight: 0.5},
		VoiceStyle:  "gritty",
		Catchphrases: []string{
			"I can smell the fear in your betting hand.",
			"You're playing checkers while I'm playing chess.",
		},
		Taunts: []string{
			"All bark, no bite.",
			"Your poker face is as obvious as a neon sign.",
			"Maybe you should stick to Go Fish.",
		},
		Reactions: map[Emotion][]string{
			Confident:  {"I've got you right where I want you.", "Time to collect my chips."},
			Frustrated: {"You got lucky this time.", "I'll remember this."},
			Excited:    {"Oh, this is going to be fun!", "Time to turn up the heat!"},
		},
	},
	"the_queen": {
		ID:          "the_queen",
		Name:        "The Queen",
		Description: "A sophisticated player who uses psychology and charm to win.",
		Style:       []string{"aggressive", "shark", "tight"},
		Traits:      Traits{Aggression: 0.5, BluffFrequency: 0.4, RiskTolerance: 0.4, Patience: 0.7, MemoryWeight: 0.6},
		VoiceStyle:  "cocky",
		Catchphrases: []string{
			"Darling, you're making this too easy.",
			"Let's make this interesting, shall we?",
			"I do love a good challenge.",
		},
		Taunts: []string{
			"Oh honey, that was adorable.",
			"You're trying so hard, it's cute.",
		},
		Reactions: map[Emotion][]string{
			Confident: {"Oh, you're such a delight.", "I do enjoy our little games."},
			Calm:      {"Let's keep this civilized.", "I appreciate the effort."},
			Excited:   {"Oh, you're full of surprises!", "I love a good plot twist!"},
		},
	},
}

// LookupPersona returns the built-in persona with id.
func LookupPersona(id string) (Persona, error) {
	p, ok := personas[id]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q", id)
	}
	return p, nil
}

// PersonaIDs lists the built-in personas in name order.
func PersonaIDs() []string {
	ids := make([]string, 0, len(personas))
	for id := range personas {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
