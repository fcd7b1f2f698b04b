package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/agentholdem/internal/game"
)

// Position is a coarse seat position relative to the button.
type Position string

const (
	Early  Position = "early"
	Middle Position = "middle"
	Late   Position = "late"
)

// Opponent is what the agent knows about another seat.
type Opponent struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Chips      int         `json:"chips"`
	Bet        int         `json:"bet"`
	Status     game.Status `json:"status"`
	LastAction string      `json:"last_action,omitempty"`
}

// Request is the per-turn snapshot handed to a Provider.
type Request struct {
	AgentID    string             `json:"agent_id"`
	HandID     string             `json:"hand_id"`
	Turn       uint64             `json:"turn"`
	Phase      game.Phase         `json:"phase"`
	Hole       []string           `json:"hole"`
	Board      []string           `json:"board"`
	Pot        int                `json:"pot"`
	CurrentBet int                `json:"current_bet"`
	MinRaise   int                `json:"min_raise"`
	Chips      int                `json:"chips"`
	Bet        int                `json:"bet"`
	ToCall     int                `json:"to_call"`
	Valid      []game.ValidAction `json:"valid_actions"`
	PotOdds    float64            `json:"pot_odds"`
	StackToPot float64            `json:"stack_to_pot"`
	Position   Position           `json:"position"`
	Opponents  []Opponent         `json:"opponents"`
	Persona    Persona            `json:"persona"`
	Traits     Traits             `json:"traits"` // effective, after modifiers
	Emotion    Emotion            `json:"emotion"`
	Memories   []Memory           `json:"memories,omitempty"`
}

// ErrNotActing is returned when building a request for a seat whose turn it
// is not.
var ErrNotActing = errors.New("agent is not the acting seat")

// BuildRequest assembles the request for the view's viewer, which must be
// the acting seat. history supplies opponents' latest actions this street.
func BuildRequest(view game.View, history []game.Event, profile *Profile, recall int) (Request, error) {
	me, seat, ok := view.Seat(view.Viewer)
	if !ok || view.Acting != view.Viewer || len(view.Valid) == 0 {
		return Request{}, fmt.Errorf("build request for %q: %w", view.Viewer, ErrNotActing)
	}

	req := Request{
		AgentID:    me.ID,
		HandID:     view.HandID,
		Phase:      view.Phase,
		Hole:       me.Hole,
		Board:      view.Board,
		Pot:        view.Pot,
		CurrentBet: view.CurrentBet,
		MinRaise:   view.MinRaise,
		Chips:      me.Chips,
		Bet:        me.Bet,
		ToCall:     max(0, view.CurrentBet-me.Bet),
		Valid:      view.Valid,
		Position:   positionOf(seat, view.Button, len(view.Players)),
		Persona:    profile.Persona(),
		Traits:     profile.Effective(),
		Emotion:    profile.Emotion(),
		Memories:   profile.Recall(recall),
	}
	if req.ToCall > 0 {
		req.PotOdds = float64(req.ToCall) / float64(view.Pot+req.ToCall)
	}
	if view.Pot > 0 {
		req.StackToPot = float64(me.Chips) / float64(view.Pot)
	}

	last := lastActions(history, view.Phase)
	for _, p := range view.Players {
		if p.ID == me.ID {
			continue
		}
		req.Opponents = append(req.Opponents, Opponent{
			ID:         p.ID,
			Name:       p.Name,
			Chips:      p.Chips,
			Bet:        p.Bet,
			Status:     p.Status,
			LastAction: last[p.ID],
		})
	}
	return req, nil
}

// positionOf buckets seat by its distance after the button: the button and
// cutoff are late, the first half of the rest early.
func positionOf(seat, button, n int) Position {
	rel := ((seat-button)%n + n) % n
	switch {
	case rel == 0:
		return Late
	case n > 3 && rel == n-1:
		return Late
	case rel <= max(1, (n-1)/2):
		return Early
	}
	return Middle
}

func lastActions(history []game.Event, phase game.Phase) map[string]string {
	out := make(map[string]string)
	for _, e := range history {
		if e.Phase != phase || (e.Kind != game.EventAction && e.Kind != game.EventTimeout) {
			continue
		}
		desc := e.Action
		if e.BetTo > 0 && (e.Action == game.Raise.String() || e.Action == game.AllIn.String()) {
			desc = fmt.Sprintf("%s to %d", e.Action, e.BetTo)
		}
		out[e.PlayerID] = desc
	}
	return out
}

// Can reports whether action is legal and its bounds.
func (r Request) Can(action game.Action) (game.ValidAction, bool) {
	return game.Find(r.Valid, action)
}

// Prompt renders the request as instructions for a language model.
func (r Request) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a poker player. %s\n\n", r.Persona.Name, r.Persona.Description)

	b.WriteString("PERSONALITY:\n")
	fmt.Fprintf(&b, "- Style: %s\n", strings.Join(r.Persona.Style, ", "))
	fmt.Fprintf(&b, "- Aggression: %.1f/10\n", r.Traits.Aggression*10)
	fmt.Fprintf(&b, "- Bluff frequency: %.1f/10\n", r.Traits.BluffFrequency*10)
	fmt.Fprintf(&b, "- Risk tolerance: %.1f/10\n", r.Traits.RiskTolerance*10)
	fmt.Fprintf(&b, "- Current emotion: %s\n\n", r.Emotion)

	b.WriteString("HAND:\n")
	fmt.Fprintf(&b, "- Phase: %s\n", r.Phase)
	fmt.Fprintf(&b, "- Your cards: %s\n", strings.Join(r.Hole, " "))
	board := strings.Join(r.Board, " ")
	if board == "" {
		board = "none"
	}
	fmt.Fprintf(&b, "- Board: %s\n", board)
	fmt.Fprintf(&b, "- Pot: %d, current bet: %d, minimum raise: %d\n", r.Pot, r.CurrentBet, r.MinRaise)
	fmt.Fprintf(&b, "- Your chips: %d, your bet this street: %d, to call: %d\n", r.Chips, r.Bet, r.ToCall)
	fmt.Fprintf(&b, "- Pot odds: %.2f, stack to pot: %.2f, position: %s\n\n", r.PotOdds, r.StackToPot, r.Position)

	b.WriteString("OPPONENTS:\n")
	if len(r.Opponents) == 0 {
		b.WriteString("- none\n")
	}
	for _, o := range r.Opponents {
		fmt.Fprintf(&b, "- %s: %d chips, bet %d, %s", o.Name, o.Chips, o.Bet, o.Status)
		if o.LastAction != "" {
			fmt.Fprintf(&b, ", last action %s", o.LastAction)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nLEGAL ACTIONS:\n")
	for _, va := range r.Valid {
		switch va.Action {
		case game.Raise:
			fmt.Fprintf(&b, "- raise to between %d and %d\n", va.Min, va.Max)
		case game.Call:
			fmt.Fprintf(&b, "- call %d\n", va.Min)
		case game.AllIn:
			fmt.Fprintf(&b, "- all_in for %d\n", va.Min)
		default:
			fmt.Fprintf(&b, "- %s\n", va.Action)
		}
	}

	if len(r.Memories) > 0 {
		b.WriteString("\nRELEVANT MEMORIES:\n")
		for _, m := range r.Memories {
			fmt.Fprintf(&b, "- %s\n", m.Summary())
		}
	}

	b.WriteString("\nRespond in exactly this format:\n")
	b.WriteString("ACTION: [fold/check/call/raise/all_in]\n")
	b.WriteString("AMOUNT: [total to raise to, empty otherwise]\n")
	b.WriteString("REASONING: [one sentence]\n")
	b.WriteString("EMOTION: [calm/aggressive/defensive/confident/nervous/excited/frustrated]\n")
	return b.String()
}
