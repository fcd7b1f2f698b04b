package phh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/agentholdem/internal/game"
)

// Encode writes hand to w as TOML.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return errors.New("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// Marshal encodes hand and returns the document.
func Marshal(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromSummary converts a finished hand. Every hole card is written, as
// the history is an audit record rather than a player view.
func FromSummary(table string, s game.Summary) *HandHistory {
	n := len(s.Seats)
	hh := &HandHistory{
		Variant:           "NT",
		Table:             table,
		SeatCount:         n,
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            s.BigBlind,
		HandID:            s.ID,
	}

	order := make([]int, n)
	pos := make(map[string]int, n)
	for k := range n {
		i := (s.Button + 1 + k) % n
		order[k] = i
		pos[s.Seats[i].ID] = k
	}
	for _, i := range order {
		seat := s.Seats[i]
		name := seat.Name
		if name == "" {
			name = seat.ID
		}
		hh.Seats = append(hh.Seats, i+1)
		hh.Players = append(hh.Players, name)
		hh.StartingStacks = append(hh.StartingStacks, seat.Start)
		hh.FinishingStacks = append(hh.FinishingStacks, seat.Finish)
		hh.Winnings = append(hh.Winnings, seat.Won)
	}
	for k, i := range order {
		if hole := s.Seats[i].Hole; len(hole) > 0 {
			hh.Actions = append(hh.Actions, fmt.Sprintf("d dh p%d %s", k+1, concatCards(hole)))
		}
	}

	streetBet := 0
	for _, e := range s.Events {
		player := fmt.Sprintf("p%d", pos[e.PlayerID]+1)
		switch e.Kind {
		case game.EventBlind:
			hh.BlindsOrStraddles[pos[e.PlayerID]] = e.Amount
			streetBet = max(streetBet, e.BetTo)
		case game.EventStreet:
			streetBet = 0
			if len(e.Cards) > 0 {
				hh.Actions = append(hh.Actions, "d db "+concatCards(e.Cards))
			}
		case game.EventAction, game.EventTimeout:
			hh.Actions = append(hh.Actions, formatAction(player, e, &streetBet))
		case game.EventShowdown:
			hh.Actions = append(hh.Actions, fmt.Sprintf("%s sm %s", player, concatCards(e.Cards)))
		}
	}

	if !s.Started.IsZero() {
		t := s.Started.UTC()
		hh.Time = t.Format("15:04:05")
		hh.TimeZone = "UTC"
		hh.Day, hh.Month, hh.Year = t.Day(), int(t.Month()), t.Year()
	}
	return hh
}

// formatAction maps an applied action to PHH: f, cc (check or call) and
// cbr (complete, bet or raise to). An all-in that does not raise the
// street bet is a call.
func formatAction(player string, e game.Event, streetBet *int) string {
	switch e.Action {
	case game.Fold.String():
		return player + " f"
	case game.Raise.String(), game.AllIn.String():
		if e.BetTo > *streetBet {
			*streetBet = e.BetTo
			return fmt.Sprintf("%s cbr %d", player, e.BetTo)
		}
	}
	return player + " cc"
}

func concatCards(cards []string) string {
	var b strings.Builder
	for _, c := range cards {
		if len(c) != 2 {
			b.WriteString(c)
			continue
		}
		b.WriteString(strings.ToUpper(c[:1]) + strings.ToLower(c[1:]))
	}
	return b.String()
}
