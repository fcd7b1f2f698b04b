package game

// PlayerView is one player as seen by a particular viewer.
type PlayerView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Chips    int      `json:"chips"`
	Bet      int      `json:"bet"`
	TotalBet int      `json:"total_bet"`
	Status   Status   `json:"status"`
	Hole     []string `json:"hole,omitempty"`
	Shown    string   `json:"shown,omitempty"`
	Acting   bool     `json:"acting,omitempty"`
}

// PotView is a pot with eligibility by player ID.
type PotView struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// View is a projection of the hand. Hole cards of other players are only
// present once shown down.
type View struct {
	HandID     string        `json:"hand_id"`
	Phase      Phase         `json:"phase"`
	Board      []string      `json:"board"`
	Pots       []PotView     `json:"pots"`
	Pot        int           `json:"pot"`
	CurrentBet int           `json:"current_bet"`
	MinRaise   int           `json:"min_raise"`
	SmallBlind int           `json:"small_blind"`
	BigBlind   int           `json:"big_blind"`
	Button     int           `json:"button"`
	Acting     string        `json:"acting,omitempty"`
	Players    []PlayerView  `json:"players"`
	Viewer     string        `json:"viewer,omitempty"`
	Valid      []ValidAction `json:"valid_actions,omitempty"`
	Awards     []Award       `json:"awards,omitempty"`
}

// PublicView hides every unrevealed hole card.
func (h *Hand) PublicView() View {
	return h.view("")
}

// ViewFor shows playerID their own hole cards and, on their turn, the
// legal actions.
func (h *Hand) ViewFor(playerID string) View {
	return h.view(playerID)
}

func (h *Hand) view(viewer string) View {
	v := View{
		HandID:     h.ID,
		Phase:      h.Phase,
		Board:      cardStrings(h.Board),
		Pot:        h.PotTotal(),
		CurrentBet: h.bet.currentBet,
		MinRaise:   h.bet.minRaise,
		SmallBlind: h.SmallBlind,
		BigBlind:   h.BigBlind,
		Button:     h.Button,
		Viewer:     viewer,
		Awards:     h.Awards(),
	}
	for _, pot := range h.Pots() {
		pv := PotView{Amount: pot.Amount, Eligible: make([]string, 0, len(pot.Eligible))}
		for _, i := range pot.Eligible {
			pv.Eligible = append(pv.Eligible, h.Players[i].ID)
		}
		v.Pots = append(v.Pots, pv)
	}
	acting := h.ActingPlayer()
	if acting != nil {
		v.Acting = acting.ID
	}
	for i, p := range h.Players {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     p.Kind,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Status:   p.Status,
			Acting:   p == acting,
		}
		if rank, ok := h.shown[i]; ok {
			pv.Hole = p.Hole.Strings()
			pv.Shown = rank.Describe()
		} else if viewer != "" && p.ID == viewer {
			pv.Hole = p.Hole.Strings()
		}
		v.Players = append(v.Players, pv)
	}
	if acting != nil && acting.ID == viewer {
		v.Valid = h.ValidActions()
	}
	return v
}

// Seat returns the view of playerID.
func (v View) Seat(playerID string) (PlayerView, int, bool) {
	for i, p := range v.Players {
		if p.ID == playerID {
			return p, i, true
		}
	}
	return PlayerView{}, -1, false
}
