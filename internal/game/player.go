package game

import (
	"fmt"

	"github.com/lox/agentholdem/poker"
)

// Status is a player's state within a hand.
type Status int

const (
	Active Status = iota
	Folded
	AllInStatus
	SittingOut
)

func (s Status) String() string {
	return [...]string{"active", "folded", "all_in", "sitting_out"}[s]
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate := Active; candidate <= SittingOut; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Kind distinguishes humans from automated players.
type Kind int

const (
	Human Kind = iota
	Agent
)

func (k Kind) String() string {
	if k == Agent {
		return "agent"
	}
	return "human"
}

// MarshalText encodes the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "human":
		*k = Human
	case "agent":
		*k = Agent
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// Seat describes a player joining a hand.
type Seat struct {
	ID    string
	Name  string
	Kind  Kind
	Chips int
}

// Player is a participant in a hand.
type Player struct {
	ID       string
	Name     string
	Kind     Kind
	Chips    int
	Hole     poker.Hand
	Bet      int // this street
	TotalBet int // this hand
	Status   Status
}

// CanAct reports whether the player still has decisions to make.
func (p *Player) CanAct() bool {
	return p.Status == Active
}

// InHand reports whether the player can still win a pot.
func (p *Player) InHand() bool {
	return p.Status == Active || p.Status == AllInStatus
}

func (p *Player) commit(amount int) {
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.Status = AllInStatus
	}
}
