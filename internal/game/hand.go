package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/lox/agentholdem/poker"
)

// MaxPlayers is the most seats a single deck can serve.
const MaxPlayers = 23

// Hand is the state of one deal at a table.
type Hand struct {
	ID         string
	Players    []*Player
	Button     int
	SmallBlind int
	BigBlind   int
	Phase      Phase
	Board      []poker.Card

	deck      *poker.Deck
	acting    int
	sb, bb    int
	bet       *betting
	history   *History
	awards    []Award
	shown     map[int]poker.HandRank
	remainder RemainderPolicy
	start     []int
	started   time.Time
}

// Outcome reports the effect of an applied action.
type Outcome struct {
	PlayerID string   `json:"player_id"`
	Decision Decision `json:"decision"` // as applied; Amount is the street bet afterwards
	Clamped  bool     `json:"clamped,omitempty"`
	Phase    Phase    `json:"phase"`
	Events   []Event  `json:"events"`
}

// NewHand seats players, posts blinds and deals hole cards. button indexes
// seats. Players are dealt in seat order starting left of the button.
func NewHand(rng *rand.Rand, seats []Seat, button, smallBlind, bigBlind int, opts ...HandOption) (*Hand, error) {
	cfg := &handConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch {
	case len(seats) < 2:
		return nil, fmt.Errorf("at least 2 players required, got %d", len(seats))
	case len(seats) > MaxPlayers:
		return nil, fmt.Errorf("at most %d players supported, got %d", MaxPlayers, len(seats))
	case button < 0 || button >= len(seats):
		return nil, fmt.Errorf("button %d out of range", button)
	case smallBlind <= 0 || bigBlind < smallBlind:
		return nil, fmt.Errorf("invalid blinds %d/%d", smallBlind, bigBlind)
	case cfg.deck == nil && rng == nil:
		return nil, errors.New("rng is required without a deck")
	}

	ids := make(map[string]bool, len(seats))
	players := make([]*Player, len(seats))
	start := make([]int, len(seats))
	for i, s := range seats {
		if s.ID == "" || ids[s.ID] {
			return nil, fmt.Errorf("seat %d: missing or duplicate player id %q", i, s.ID)
		}
		if s.Chips <= 0 {
			return nil, fmt.Errorf("seat %d: player %s has no chips", i, s.ID)
		}
		ids[s.ID] = true
		start[i] = s.Chips
		players[i] = &Player{ID: s.ID, Name: s.Name, Kind: s.Kind, Chips: s.Chips}
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(rng)
	}
	now := time.Now
	if cfg.clock != nil {
		clock := cfg.clock
		now = func() time.Time { return clock.Now() }
	}

	h := &Hand{
		ID:         cfg.id,
		Players:    players,
		Button:     button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Phase:      PreFlop,
		deck:       deck,
		bet:        newBetting(len(players), bigBlind),
		history:    newHistory(now),
		shown:      make(map[int]poker.HandRank),
		remainder:  cfg.remainder,
		start:      start,
		started:    now(),
	}
	h.history.append(Event{
		Kind:     EventHandStart,
		Phase:    PreFlop,
		PlayerID: players[button].ID,
		Note:     fmt.Sprintf("%d players, blinds %d/%d", len(players), smallBlind, bigBlind),
	})

	h.postBlinds()
	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}

	if len(players) == 2 {
		h.acting = h.nextActor(h.sb)
	} else {
		h.acting = h.nextActor(h.bb + 1)
	}
	if h.acting < 0 || h.bet.complete(h.Players) {
		h.finishRound()
	}
	return h, nil
}

func (h *Hand) postBlinds() {
	n := len(h.Players)
	if n == 2 {
		h.sb, h.bb = h.Button, (h.Button+1)%n
	} else {
		h.sb, h.bb = (h.Button+1)%n, (h.Button+2)%n
	}
	for _, blind := range []struct {
		idx    int
		amount int
		note   string
	}{{h.sb, h.SmallBlind, "small"}, {h.bb, h.BigBlind, "big"}} {
		p := h.Players[blind.idx]
		posted := min(blind.amount, p.Chips)
		p.commit(posted)
		h.history.append(Event{
			Kind:     EventBlind,
			Phase:    PreFlop,
			PlayerID: p.ID,
			Amount:   posted,
			BetTo:    p.Bet,
			Pot:      h.PotTotal(),
			Note:     blind.note,
		})
	}
	h.bet.currentBet = h.BigBlind
}

func (h *Hand) dealHoleCards() error {
	n := len(h.Players)
	for round := 0; round < 2; round++ {
		for k := 1; k <= n; k++ {
			p := h.Players[(h.Button+k)%n]
			cards, err := h.deck.Deal(1)
			if err != nil {
				return fmt.Errorf("deal hole cards: %w", err)
			}
			p.Hole.Add(cards[0])
		}
	}
	for k := 1; k <= n; k++ {
		h.history.append(Event{
			Kind:     EventHoleDealt,
			Phase:    PreFlop,
			PlayerID: h.Players[(h.Button+k)%n].ID,
			Pot:      h.PotTotal(),
		})
	}
	return nil
}

// Apply validates and applies d for playerID. On error the hand is unchanged.
func (h *Hand) Apply(playerID string, d Decision) (Outcome, error) {
	return h.apply(playerID, d, EventAction)
}

// ApplyTimeout applies the timeout default for the acting player: check if
// legal, otherwise fold.
func (h *Hand) ApplyTimeout(playerID string) (Outcome, error) {
	return h.apply(playerID, h.TimeoutDecision(), EventTimeout)
}

// TimeoutDecision is the action applied when the acting player runs out of time.
func (h *Hand) TimeoutDecision() Decision {
	if _, ok := Find(h.ValidActions(), Check); ok {
		return Decision{Action: Check, Reasoning: "timed out"}
	}
	return Decision{Action: Fold, Reasoning: "timed out"}
}

func (h *Hand) apply(playerID string, d Decision, kind EventKind) (Outcome, error) {
	if !h.Phase.Betting() || h.acting < 0 {
		return Outcome{}, &ActionError{PlayerID: playerID, Decision: d, Reason: "no betting in progress", Cause: ErrHandOver}
	}
	p := h.Players[h.acting]
	if p.ID != playerID {
		return Outcome{}, illegal(playerID, d, "not your turn, waiting on %s", p.ID)
	}
	m, err := h.bet.validate(p, h.acting, d)
	if err != nil {
		return Outcome{}, err
	}

	start := h.history.Len()
	h.bet.apply(h.Players, h.acting, m)

	applied := Decision{Action: m.action, Reasoning: d.Reasoning}
	if m.action == Raise || m.action == AllIn {
		applied.Amount = p.Bet
	}
	note := ""
	if m.clamped {
		note = ErrInsufficientStack.Error() + ": call converted to all-in"
	}
	h.history.append(Event{
		Kind:     kind,
		Phase:    h.Phase,
		PlayerID: p.ID,
		Action:   m.action.String(),
		Amount:   m.commit,
		BetTo:    p.Bet,
		Pot:      h.PotTotal(),
		Note:     note,
	})

	h.advance()

	return Outcome{
		PlayerID: p.ID,
		Decision: applied,
		Clamped:  m.clamped,
		Phase:    h.Phase,
		Events:   h.history.Since(start),
	}, nil
}

// advance moves the turn after an action, closing the round when due.
func (h *Hand) advance() {
	if h.inHand() == 1 {
		h.finishUncontested()
		return
	}
	if !h.bet.complete(h.Players) {
		h.acting = h.nextActor(h.acting + 1)
		return
	}
	h.finishRound()
}

// finishRound deals the following streets until a betting round can take
// place or the hand reaches showdown.
func (h *Hand) finishRound() {
	for {
		h.nextStreet()
		if h.Phase == Showdown {
			h.showdown()
			return
		}
		if h.canAct() >= 2 {
			h.acting = h.nextActor(h.Button + 1)
			return
		}
	}
}

func (h *Hand) nextStreet() {
	for _, p := range h.Players {
		p.Bet = 0
	}
	h.bet.reset(h.BigBlind)
	h.acting = -1

	var next Phase
	switch h.Phase {
	case PreFlop:
		next = Flop
	case Flop:
		next = Turn
	case Turn:
		next = River
	default:
		next = Showdown
	}
	deal := next.boardSize() - len(h.Board)
	if deal > 0 {
		cards, err := h.deck.Deal(deal)
		if err != nil {
			// NewHand bounds the seat count so the board always fits.
			panic(fmt.Sprintf("deal %s: %v", next, err))
		}
		h.Board = append(h.Board, cards...)
	}
	h.Phase = next

	e := Event{Kind: EventStreet, Phase: next, Pot: h.PotTotal()}
	if deal > 0 {
		e.Cards = cardStrings(h.Board[len(h.Board)-deal:])
	}
	h.history.append(e)
}

func (h *Hand) nextActor(from int) int {
	n := len(h.Players)
	for k := 0; k < n; k++ {
		i := ((from+k)%n + n) % n
		if h.Players[i].CanAct() {
			return i
		}
	}
	return -1
}

func (h *Hand) inHand() int {
	count := 0
	for _, p := range h.Players {
		if p.InHand() {
			count++
		}
	}
	return count
}

func (h *Hand) canAct() int {
	count := 0
	for _, p := range h.Players {
		if p.CanAct() {
			count++
		}
	}
	return count
}

// Done reports whether the hand has settled.
func (h *Hand) Done() bool {
	return h.Phase == Settled
}

// ActingPlayer returns the player whose turn it is, or nil.
func (h *Hand) ActingPlayer() *Player {
	if h.acting < 0 || !h.Phase.Betting() {
		return nil
	}
	return h.Players[h.acting]
}

// ActingIndex returns the acting player's index, or -1.
func (h *Hand) ActingIndex() int {
	if h.ActingPlayer() == nil {
		return -1
	}
	return h.acting
}

// ValidActions lists the legal actions for the acting player.
func (h *Hand) ValidActions() []ValidAction {
	p := h.ActingPlayer()
	if p == nil {
		return nil
	}
	return h.bet.validActions(p, h.acting)
}

// Player returns the player with id.
func (h *Hand) Player(id string) (*Player, int) {
	for i, p := range h.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// CurrentBet is the street bet level to match.
func (h *Hand) CurrentBet() int { return h.bet.currentBet }

// MinRaise is the minimum raise increment.
func (h *Hand) MinRaise() int { return h.bet.minRaise }

// SmallBlindIndex and BigBlindIndex locate the blinds.
func (h *Hand) SmallBlindIndex() int { return h.sb }
func (h *Hand) BigBlindIndex() int   { return h.bb }

// Pots returns the main and side pots; empty once settled.
func (h *Hand) Pots() []Pot {
	if h.Phase == Settled {
		return nil
	}
	return CalculatePots(h.Players)
}

// PotTotal is the sum of all unawarded contributions.
func (h *Hand) PotTotal() int {
	if h.Phase == Settled {
		return 0
	}
	total := 0
	for _, p := range h.Players {
		total += p.TotalBet
	}
	return total
}

// ChipsInPlay is every stack plus the pots; constant for the whole hand.
func (h *Hand) ChipsInPlay() int {
	total := h.PotTotal()
	for _, p := range h.Players {
		total += p.Chips
	}
	return total
}

// History returns a copy of the hand's events.
func (h *Hand) History() []Event {
	return h.history.Events()
}

// Seq is the sequence number the next history event will take.
func (h *Hand) Seq() int {
	return h.history.Len()
}

// EventsSince returns events from seq onwards.
func (h *Hand) EventsSince(seq int) []Event {
	return h.history.Since(seq)
}

// Awards lists pot awards once the hand has settled.
func (h *Hand) Awards() []Award {
	return append([]Award(nil), h.awards...)
}

// Shown returns the evaluated hand of player i if it was shown down.
func (h *Hand) Shown(i int) (poker.HandRank, bool) {
	r, ok := h.shown[i]
	return r, ok
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
