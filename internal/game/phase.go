package game

import "fmt"

// Phase is the state of a table's current hand.
type Phase int

const (
	WaitingForPlayers Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	Settled
)

func (p Phase) String() string {
	return [...]string{"waiting_for_players", "pre_flop", "flop", "turn", "river", "showdown", "settled"}[p]
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := WaitingForPlayers; candidate <= Settled; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Betting reports whether players act during this phase.
func (p Phase) Betting() bool {
	return p >= PreFlop && p <= River
}

// boardSize is the number of community cards visible in the phase.
func (p Phase) boardSize() int {
	switch p {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	}
	return 0
}
