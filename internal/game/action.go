package game

import (
	"fmt"
	"strings"
)

// Action is a player action.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction accepts the canonical names plus the usual aliases.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	case "allin", "all_in", "all-in", "all in", "shove":
		return AllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the canonical name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes names accepted by ParseAction.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Decision is what a seat submits for its turn. Amount is only read for
// Raise and is the total the player's street bet is raised to.
type Decision struct {
	Action    Action `json:"action"`
	Amount    int    `json:"amount,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

func FoldDecision() Decision  { return Decision{Action: Fold} }
func CheckDecision() Decision { return Decision{Action: Check} }
func CallDecision() Decision  { return Decision{Action: Call} }
func AllInDecision() Decision { return Decision{Action: AllIn} }

// RaiseTo raises the street bet to amount.
func RaiseTo(amount int) Decision { return Decision{Action: Raise, Amount: amount} }

func (d Decision) String() string {
	if d.Action == Raise {
		return fmt.Sprintf("raise to %d", d.Amount)
	}
	return d.Action.String()
}

// ValidAction describes one legal action for the acting player. For Raise
// Min and Max bound the raise-to total; for Call and AllIn they hold the
// chips that would be committed.
type ValidAction struct {
	Action Action `json:"action"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}

// Find returns the entry for action, if legal.
func Find(valid []ValidAction, action Action) (ValidAction, bool) {
	for _, va := range valid {
		if va.Action == action {
			return va, true
		}
	}
	return ValidAction{}, false
}
