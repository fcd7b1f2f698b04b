package game

import "time"

// SeatSummary is one player's view of a finished hand.
type SeatSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Kind   Kind     `json:"kind"`
	Start  int      `json:"start"`
	Finish int      `json:"finish"`
	Hole   []string `json:"hole"`
	Won    int      `json:"won"`
	Status Status   `json:"status"`
}

// Net is the player's chip change over the hand.
func (s SeatSummary) Net() int { return s.Finish - s.Start }

// Summary is the complete record of a hand, hole cards included. It is meant
// for history and storage, never for other players.
type Summary struct {
	ID         string        `json:"id"`
	Started    time.Time     `json:"started"`
	Button     int           `json:"button"`
	SmallBlind int           `json:"small_blind"`
	BigBlind   int           `json:"big_blind"`
	Phase      Phase         `json:"phase"`
	Board      []string      `json:"board"`
	Seats      []SeatSummary `json:"seats"`
	Awards     []Award       `json:"awards"`
	Events     []Event       `json:"events"`
}

// Summary captures the hand. Finish stacks only include awards once the
// hand has settled.
func (h *Hand) Summary() Summary {
	s := Summary{
		ID:         h.ID,
		Started:    h.started,
		Button:     h.Button,
		SmallBlind: h.SmallBlind,
		BigBlind:   h.BigBlind,
		Phase:      h.Phase,
		Board:      cardStrings(h.Board),
		Awards:     h.Awards(),
		Events:     h.History(),
	}
	won := make(map[string]int)
	for _, a := range s.Awards {
		won[a.PlayerID] += a.Amount
	}
	for i, p := range h.Players {
		s.Seats = append(s.Seats, SeatSummary{
			ID:     p.ID,
			Name:   p.Name,
			Kind:   p.Kind,
			Start:  h.start[i],
			Finish: p.Chips,
			Hole:   p.Hole.Strings(),
			Won:    won[p.ID],
			Status: p.Status,
		})
	}
	return s
}

// LastPhase is the last phase playerID saw with live cards.
func (s Summary) LastPhase(playerID string) Phase {
	last := PreFlop
	for _, e := range s.Events {
		if e.PlayerID == playerID && (e.Kind == EventAction || e.Kind == EventTimeout) {
			last = e.Phase
			if e.Action == Fold.String() {
				return last
			}
		}
	}
	if s.Phase == Settled {
		for _, e := range s.Events {
			if e.Kind == EventShowdown && e.PlayerID == playerID {
				return Showdown
			}
		}
	}
	return last
}
