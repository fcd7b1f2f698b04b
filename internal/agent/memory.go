package agent

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/lox/agentholdem/internal/game"
)

// Outcome labels how a remembered event ended.
type Outcome string

const (
	OutcomeWon         Outcome = "won"
	OutcomeLost        Outcome = "lost"
	OutcomeFolded      Outcome = "folded"
	OutcomeBluffWon    Outcome = "bluffed_successfully"
	OutcomeBluffFailed Outcome = "bluffed_failed"
)

// Memory is one notable event an agent remembers.
type Memory struct {
	Time       time.Time   `json:"time"`
	HandID     string      `json:"hand_id"`
	Opponent   string      `json:"opponent,omitempty"`
	Phase      game.Phase  `json:"phase"`
	Action     game.Action `json:"action"`
	Amount     int         `json:"amount,omitempty"`
	Pot        int         `json:"pot"`
	Outcome    Outcome     `json:"outcome,omitempty"`
	Importance float64     `json:"importance"`
}

// Summary renders the memory for a prompt.
func (m Memory) Summary() string {
	s := fmt.Sprintf("in %s I %s", m.Phase, m.Action)
	if m.Amount > 0 {
		s += fmt.Sprintf(" %d chips", m.Amount)
	}
	if m.Opponent != "" {
		s += " against " + m.Opponent
	}
	if m.Outcome != "" {
		s += " and " + string(m.Outcome)
	}
	return s
}

// memories is a FIFO buffer: once full, the oldest entry is evicted
// regardless of importance.
type memories struct {
	entries  []Memory
	capacity int
}

func newMemories(capacity int) *memories {
	return &memories{capacity: max(capacity, 0)}
}

func (m *memories) add(mem Memory) {
	if m.capacity == 0 {
		return
	}
	if len(m.entries) == m.capacity {
		m.entries = slices.Delete(m.entries, 0, 1)
	}
	m.entries = append(m.entries, mem)
}

// recall returns up to n entries, most important first and most recent
// first among equals.
func (m *memories) recall(n int) []Memory {
	idx := make([]int, len(m.entries))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if c := cmp.Compare(m.entries[b].Importance, m.entries[a].Importance); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	if n >= 0 && len(idx) > n {
		idx = idx[:n]
	}
	out := make([]Memory, len(idx))
	for i, j := range idx {
		out[i] = m.entries[j]
	}
	return out
}

func (m *memories) all() []Memory {
	return slices.Clone(m.entries)
}

func (m *memories) len() int {
	return len(m.entries)
}
