package server

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/game"
)

// StateChange is one transition at a table. View is the public projection
// after the mutation that produced Event, with unrevealed hole cards
// removed. Table events that are not part of a hand carry Event.Seq -1.
// Seq orders every change at the table; Version is the turn token a player
// submits with, and seat changes do not move it.
type StateChange struct {
	TableID string     `json:"table_id"`
	Seq     uint64     `json:"seq"`
	Version uint64     `json:"version"`
	Event   game.Event `json:"event"`
	View    game.View  `json:"view"`
}

// Notifier receives state changes after the table lock is released.
// Implementations must not block.
type Notifier interface {
	Notify(StateChange)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(StateChange)

func (f NotifierFunc) Notify(c StateChange) { f(c) }

// Notifiers fans changes out in order.
type Notifiers []Notifier

func (n Notifiers) Notify(c StateChange) {
	for _, notifier := range n {
		notifier.Notify(c)
	}
}

// Feed buffers state changes for a consumer goroutine, dropping changes
// when the buffer is full.
type Feed struct {
	ch      chan StateChange
	logger  *log.Logger
	dropped atomic.Uint64
}

// NewFeed returns a feed buffering up to size changes.
func NewFeed(size int, logger *log.Logger) *Feed {
	return &Feed{ch: make(chan StateChange, size), logger: logger.WithPrefix("feed")}
}

func (f *Feed) Notify(c StateChange) {
	select {
	case f.ch <- c:
	default:
		f.dropped.Add(1)
		f.logger.Warn("feed full, dropping state change", "table", c.TableID, "event", c.Event.Kind)
	}
}

// C delivers buffered changes.
func (f *Feed) C() <-chan StateChange { return f.ch }

// Dropped counts changes lost to a full buffer.
func (f *Feed) Dropped() uint64 { return f.dropped.Load() }
