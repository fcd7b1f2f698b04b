package game

import (
	"github.com/coder/quartz"

	"github.com/lox/agentholdem/poker"
)

// HandOption configures a Hand during creation.
type HandOption func(*handConfig)

type handConfig struct {
	id        string
	deck      *poker.Deck
	remainder RemainderPolicy
	clock     quartz.Clock
}

// WithID sets the hand identifier used in history and views.
func WithID(id string) HandOption {
	return func(c *handConfig) {
		c.id = id
	}
}

// WithDeck deals from deck instead of a fresh shuffle, for stacked tests
// and replays.
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = deck
	}
}

// WithRemainder selects how odd chips of a split pot are assigned.
func WithRemainder(policy RemainderPolicy) HandOption {
	return func(c *handConfig) {
		c.remainder = policy
	}
}

// WithClock sets the clock used to timestamp history events.
func WithClock(clock quartz.Clock) HandOption {
	return func(c *handConfig) {
		c.clock = clock
	}
}
