package agent

import "github.com/lox/agentholdem/internal/game"

// Clamp maps d onto the nearest legal action in valid. It reports whether
// the decision had to change. Fold is always legal.
func Clamp(d game.Decision, valid []game.ValidAction) (game.Decision, bool) {
	out, changed := clamp(d, valid)
	out.Reasoning = d.Reasoning
	if out.Action != game.Raise {
		out.Amount = 0
	}
	return out, changed
}

func clamp(d game.Decision, valid []game.ValidAction) (game.Decision, bool) {
	has := func(a game.Action) (game.ValidAction, bool) { return game.Find(valid, a) }
	passive := func() game.Decision {
		if _, ok := has(game.Check); ok {
			return game.CheckDecision()
		}
		if _, ok := has(game.Call); ok {
			return game.CallDecision()
		}
		return game.FoldDecision()
	}

	switch d.Action {
	case game.Fold:
		return d, false

	case game.Check:
		if _, ok := has(game.Check); ok {
			return d, false
		}
		// Facing a bet: call when affordable.
		if _, ok := has(game.Call); ok {
			return game.CallDecision(), true
		}
		return game.FoldDecision(), true

	case game.Call:
		if _, ok := has(game.Call); ok {
			return d, false
		}
		if _, ok := has(game.Check); ok {
			return game.CheckDecision(), true
		}
		// The call costs the whole stack or more.
		if _, ok := has(game.AllIn); ok {
			return game.AllInDecision(), true
		}
		return game.FoldDecision(), true

	case game.Raise:
		if raise, ok := has(game.Raise); ok {
			switch {
			case d.Amount > raise.Max:
				if _, ok := has(game.AllIn); ok {
					return game.AllInDecision(), true
				}
				return game.RaiseTo(raise.Max), true
			case d.Amount < raise.Min:
				return game.RaiseTo(raise.Min), true
			}
			return d, false
		}
		// A full raise is out of reach but the stack can still go in.
		if _, ok := has(game.AllIn); ok {
			return game.AllInDecision(), true
		}
		return passive(), true

	case game.AllIn:
		if _, ok := has(game.AllIn); ok {
			return d, false
		}
		return passive(), true
	}
	return passive(), true
}
