package agent

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/game"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// facingBet is a preflop spot facing the big blind with 1000 behind.
func facingBet(aggression float64) Request {
	return Request{
		AgentID:    "A",
		HandID:     "hand-1",
		Phase:      game.PreFlop,
		Hole:       []string{"9c", "4d"},
		Pot:        30,
		CurrentBet: 20,
		MinRaise:   20,
		Chips:      1000,
		ToCall:     20,
		PotOdds:    0.4,
		Valid: []game.ValidAction{
			{Action: game.Fold},
			{Action: game.Call, Min: 20, Max: 20},
			{Action: game.Raise, Min: 40, Max: 1000},
			{Action: game.AllIn, Min: 1000, Max: 1000},
		},
		Traits: Traits{Aggression: aggression},
	}
}

// checkedTo is a flop spot with nothing to call.
func checkedTo(aggression float64) Request {
	return Request{
		AgentID: "A",
		HandID:  "hand-1",
		Phase:   game.Flop,
		Hole:    []string{"9c", "4d"},
		Board:   []string{"Ks", "7h", "2d"},
		Pot:     60,
		Chips:   980,
		Valid: []game.ValidAction{
			{Action: game.Fold},
			{Action: game.Check},
			{Action: game.Raise, Min: 20, Max: 980},
			{Action: game.AllIn, Min: 980, Max: 980},
		},
		Traits: Traits{Aggression: aggression},
	}
}

type recordingSpeaker struct {
	mu    sync.Mutex
	lines []Speech
}

func (r *recordingSpeaker) Speak(s Speech) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, s)
}

func (r *recordingSpeaker) Lines() []Speech {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Speech(nil), r.lines...)
}
