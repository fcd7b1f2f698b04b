package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction is the root of every rejected action.
	ErrIllegalAction = errors.New("illegal action")
	// ErrStaleTurn marks an action submitted against a superseded turn.
	ErrStaleTurn = errors.New("stale turn")
	// ErrInsufficientStack marks a bet larger than the player's stack.
	ErrInsufficientStack = errors.New("insufficient stack")
	// ErrHandOver is returned for actions after the hand has settled.
	ErrHandOver = errors.New("hand is over")
)

// ActionError describes a rejected action. It matches ErrIllegalAction with
// errors.Is, plus Cause when one is set.
type ActionError struct {
	PlayerID string
	Decision Decision
	Reason   string
	Cause    error
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("illegal action %s by %s: %s", e.Decision, e.PlayerID, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ActionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrIllegalAction, e.Cause}
	}
	return []error{ErrIllegalAction}
}

func illegal(playerID string, d Decision, format string, args ...any) *ActionError {
	return &ActionError{PlayerID: playerID, Decision: d, Reason: fmt.Sprintf(format, args...)}
}

// Stale builds the error returned when a submission carries an old turn token.
func Stale(playerID string, d Decision, got, want uint64) *ActionError {
	return &ActionError{
		PlayerID: playerID,
		Decision: d,
		Reason:   fmt.Sprintf("turn %d has moved on to %d", got, want),
		Cause:    ErrStaleTurn,
	}
}
