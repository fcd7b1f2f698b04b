package game

import "time"

// EventKind labels a history record.
type EventKind string

const (
	EventHandStart EventKind = "hand_start"
	EventBlind     EventKind = "blind"
	EventHoleDealt EventKind = "hole_dealt"
	EventAction    EventKind = "action"
	EventTimeout   EventKind = "timeout"
	EventStreet    EventKind = "street"
	EventShowdown  EventKind = "showdown"
	EventAward     EventKind = "award"
	EventSettled   EventKind = "settled"
)

// Event is one immutable entry in a hand's history. Hole cards only
// appear for hands shown down.
type Event struct {
	Seq      int       `json:"seq"`
	Time     time.Time `json:"time"`
	Kind     EventKind `json:"kind"`
	Phase    Phase     `json:"phase"`
	PlayerID string    `json:"player_id,omitempty"`
	Action   string    `json:"action,omitempty"`
	Amount   int       `json:"amount,omitempty"` // chips committed, posted or awarded, or a leaving stack
	BetTo    int       `json:"bet_to,omitempty"` // player's street bet afterwards
	Cards    []string  `json:"cards,omitempty"`
	Pot      int       `json:"pot"`
	Note     string    `json:"note,omitempty"`
}

// History is an append-only event log.
type History struct {
	events []Event
	now    func() time.Time
}

func newHistory(now func() time.Time) *History {
	return &History{now: now}
}

func (h *History) append(e Event) {
	e.Seq = len(h.events)
	e.Time = h.now()
	h.events = append(h.events, e)
}

// Len returns the number of recorded events.
func (h *History) Len() int {
	return len(h.events)
}

// Events returns a copy of every event.
func (h *History) Events() []Event {
	return h.Since(0)
}

// Since returns a copy of the events from seq onwards.
func (h *History) Since(seq int) []Event {
	if seq >= len(h.events) {
		return nil
	}
	out := make([]Event, len(h.events)-seq)
	copy(out, h.events[seq:])
	return out
}
