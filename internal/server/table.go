package server

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/agentholdem/internal/game"
	"github.com/lox/agentholdem/internal/gameid"
	"github.com/lox/agentholdem/internal/persistence"
	"github.com/lox/agentholdem/internal/randutil"
)

var (
	ErrTableClosed      = errors.New("table closed")
	ErrTableFull        = errors.New("table full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrHandInProgress   = errors.New("hand in progress")
	ErrUnknownPlayer    = errors.New("unknown player")
)

// Table events that are not part of a hand's history.
const (
	EventSeated  game.EventKind = "seated"
	EventLeft    game.EventKind = "left"
	EventSitOut  game.EventKind = "sit_out"
	EventSitIn   game.EventKind = "sit_in"
	EventRemoved game.EventKind = "removed"
)

// TableConfig holds the rules of a table.
type TableConfig struct {
	ID              string
	Name            string
	MaxPlayers      int
	SmallBlind      int
	BigBlind        int
	StartingChips   int
	DecisionTimeout time.Duration
	HandPause       time.Duration
	AutoStart       bool
	Remainder       game.RemainderPolicy
	Seed            int64 // zero picks a random seed
}

// Seat is a player sitting at the table between hands.
type Seat struct {
	Number     int       `json:"number"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       game.Kind `json:"kind"`
	Chips      int       `json:"chips"`
	SittingOut bool      `json:"sitting_out,omitempty"`
	Leaving    bool      `json:"leaving,omitempty"`

	listener SeatListener
}

func (s *Seat) eligible() bool {
	return s != nil && s.Chips > 0 && !s.SittingOut && !s.Leaving
}

// Turn asks one seat for a decision. Version must be passed back to Submit.
type Turn struct {
	TableID  string       `json:"table_id"`
	HandID   string       `json:"hand_id"`
	PlayerID string       `json:"player_id"`
	Version  uint64       `json:"version"`
	Deadline time.Time    `json:"deadline"`
	View     game.View    `json:"view"`
	History  []game.Event `json:"history"`
}

// SeatListener is told when its seat must act and when a hand it played
// has settled. Calls are made after the table lock is released and must
// return promptly.
type SeatListener interface {
	Turn(Turn)
	HandSettled(tableID string, hand game.Summary)
}

// Recorder receives finished hands.
type Recorder interface {
	RecordHand(persistence.HandRecord) bool
}

// TableInfo summarises a table for listings.
type TableInfo struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	MaxPlayers      int        `json:"max_players"`
	SmallBlind      int        `json:"small_blind"`
	BigBlind        int        `json:"big_blind"`
	StartingChips   int        `json:"starting_chips"`
	DecisionTimeout string     `json:"decision_timeout"`
	Seats           []Seat     `json:"seats"`
	Phase           game.Phase `json:"phase"`
	HandID          string     `json:"hand_id,omitempty"`
	Version         uint64     `json:"version"`
	HandsPlayed     uint64     `json:"hands_played"`
	Timeouts        uint64     `json:"timeouts"`
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithClock sets the clock used for turn deadlines and hand pacing.
func WithClock(clock quartz.Clock) TableOption {
	return func(t *Table) { t.clock = clock }
}

// WithNotifier sends every state change to n.
func WithNotifier(n Notifier) TableOption {
	return func(t *Table) { t.notifier = n }
}

// WithRecorder sends finished hands to r.
func WithRecorder(r Recorder) TableOption {
	return func(t *Table) { t.recorder = r }
}

// Table referees hands for a fixed set of seats. Every mutation runs under
// one mutex; listeners, notifiers and recorders are called only after it is
// released, and nothing waits on a player while holding it.
type Table struct {
	cfg      TableConfig
	clock    quartz.Clock
	notifier Notifier
	recorder Recorder
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	rng      *rand.Rand
	seats    []*Seat
	button   int
	hand     *game.Hand
	version  uint64 // turn token; moves only when the hand does
	seq      uint64 // notification order
	timer    *quartz.Timer
	pause    *quartz.Timer
	hands    uint64
	timeouts uint64
	closed   bool
}

// effects are collected under the lock and dispatched after it.
type effects struct {
	changes   []StateChange
	turn      *Turn
	turnTo    SeatListener
	settled   *game.Summary
	listeners []SeatListener
}

// NewTable validates cfg and returns an empty table.
func NewTable(cfg TableConfig, logger *log.Logger, opts ...TableOption) (*Table, error) {
	switch {
	case cfg.MaxPlayers < 2 || cfg.MaxPlayers > game.MaxPlayers:
		return nil, fmt.Errorf("max players must be between 2 and %d", game.MaxPlayers)
	case cfg.SmallBlind <= 0 || cfg.BigBlind < cfg.SmallBlind:
		return nil, fmt.Errorf("invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	case cfg.StartingChips <= 0:
		return nil, errors.New("starting chips must be positive")
	case cfg.DecisionTimeout <= 0:
		return nil, errors.New("decision timeout must be positive")
	}
	if cfg.ID == "" {
		cfg.ID = gameid.New(gameid.Table)
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.Seed == 0 {
		cfg.Seed = randutil.Seed()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Table{
		cfg:    cfg,
		clock:  quartz.NewReal(),
		logger: logger.WithPrefix("table").With("table", cfg.ID),
		ctx:    ctx,
		cancel: cancel,
		rng:    randutil.New(cfg.Seed),
		seats:  make([]*Seat, cfg.MaxPlayers),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ID returns the table ID.
func (t *Table) ID() string { return t.cfg.ID }

// Config returns the table's configuration.
func (t *Table) Config() TableConfig { return t.cfg }

// Context is cancelled when the table closes.
func (t *Table) Context() context.Context { return t.ctx }

// Sit takes the first free seat with the starting stack. listener may be
// nil for players who act through Submit on their own.
func (t *Table) Sit(id, name string, kind game.Kind, listener SeatListener) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return -1, ErrTableClosed
	}
	if id == "" {
		t.mu.Unlock()
		return -1, errors.New("player id is required")
	}
	if s, _ := t.seatOf(id); s != nil {
		t.mu.Unlock()
		return -1, fmt.Errorf("player %s already seated", id)
	}
	number := -1
	for i, s := range t.seats {
		if s == nil {
			number = i
			break
		}
	}
	if number < 0 {
		t.mu.Unlock()
		return -1, ErrTableFull
	}
	if name == "" {
		name = id
	}
	t.seats[number] = &Seat{Number: number, ID: id, Name: name, Kind: kind, Chips: t.cfg.StartingChips, listener: listener}
	t.logger.Info("player seated", "player", id, "seat", number, "kind", kind)

	var fx effects
	t.tableEvent(&fx, EventSeated, id, 0)
	t.maybeAutoStart()
	t.mu.Unlock()

	t.dispatch(fx)
	return number, nil
}

// SitOut keeps the player's seat but deals them out from the next hand.
func (t *Table) SitOut(id string) error {
	return t.setSittingOut(id, true)
}

// SitIn deals a sitting-out player back in from the next hand.
func (t *Table) SitIn(id string) error {
	return t.setSittingOut(id, false)
}

func (t *Table) setSittingOut(id string, out bool) error {
	t.mu.Lock()
	seat, _ := t.seatOf(id)
	switch {
	case t.closed:
		t.mu.Unlock()
		return ErrTableClosed
	case seat == nil:
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	case !out && seat.Chips == 0:
		t.mu.Unlock()
		return fmt.Errorf("player %s has no chips", id)
	}
	seat.SittingOut = out

	var fx effects
	kind := EventSitIn
	if out {
		kind = EventSitOut
	} else {
		t.maybeAutoStart()
	}
	t.tableEvent(&fx, kind, id, 0)
	t.mu.Unlock()

	t.dispatch(fx)
	return nil
}

// Remove takes the player off the table and returns the chips they leave
// with. A player who already folded leaves at once with what they have
// behind. A player still live in the current hand is folded when their turn
// comes and leaves at settlement; the returned amount is then only what
// they have not committed, and the settled stack is reported by the
// EventRemoved change at the end of the hand.
func (t *Table) Remove(id string) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrTableClosed
	}
	seat, number := t.seatOf(id)
	if seat == nil {
		t.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}

	var fx effects
	chips := seat.Chips
	if p, _ := t.livePlayer(id); p != nil {
		chips = p.Chips
		seat.Leaving = true
		t.logger.Info("player leaving after this hand", "player", id)
		t.tableEvent(&fx, EventLeft, id, p.Chips)
		if acting := t.hand.ActingPlayer(); acting != nil && acting.ID == id {
			t.progress(t.hand.Seq(), &fx)
		}
	} else {
		// A folded player's stack lives in the hand until it settles.
		if t.hand != nil && !t.hand.Done() {
			if p, _ := t.hand.Player(id); p != nil {
				chips = p.Chips
			}
		}
		t.seats[number] = nil
		t.logger.Info("player removed", "player", id, "chips", chips)
		t.tableEvent(&fx, EventRemoved, id, chips)
	}
	t.mu.Unlock()

	t.dispatch(fx)
	return chips, nil
}

// StartHand deals a new hand to every eligible seat.
func (t *Table) StartHand() (game.View, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return game.View{}, ErrTableClosed
	}
	if t.hand != nil && !t.hand.Done() {
		t.mu.Unlock()
		return game.View{}, ErrHandInProgress
	}
	if t.pause != nil {
		t.pause.Stop()
		t.pause = nil
	}

	first := t.nextEligible(t.button)
	if first < 0 || t.eligibleCount() < 2 {
		t.mu.Unlock()
		return game.View{}, ErrNotEnoughPlayers
	}
	t.button = first

	var (
		seats  []game.Seat
		button int
	)
	for i, s := range t.seats {
		if !s.eligible() {
			continue
		}
		if i == first {
			button = len(seats)
		}
		seats = append(seats, game.Seat{ID: s.ID, Name: s.Name, Kind: s.Kind, Chips: s.Chips})
	}

	h, err := game.NewHand(t.rng, seats, button, t.cfg.SmallBlind, t.cfg.BigBlind,
		game.WithID(gameid.New(gameid.Hand)),
		game.WithRemainder(t.cfg.Remainder),
		game.WithClock(t.clock))
	if err != nil {
		t.mu.Unlock()
		return game.View{}, fmt.Errorf("start hand: %w", err)
	}
	t.hand = h
	t.logger.Info("hand started", "hand", h.ID, "players", len(seats), "button", seats[button].ID)

	var fx effects
	t.progress(0, &fx)
	view := h.PublicView()
	t.mu.Unlock()

	t.dispatch(fx)
	return view, nil
}

// Submit applies a decision for playerID. version must match the current
// turn; anything else is rejected with game.ErrStaleTurn and leaves the
// table unchanged.
func (t *Table) Submit(ctx context.Context, playerID string, d game.Decision, version uint64) (game.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return game.Outcome{}, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return game.Outcome{}, ErrTableClosed
	}
	if t.hand == nil || t.hand.Done() {
		t.mu.Unlock()
		return game.Outcome{}, &game.ActionError{PlayerID: playerID, Decision: d, Reason: "no hand in progress", Cause: game.ErrHandOver}
	}
	if version != t.version {
		current := t.version
		t.mu.Unlock()
		return game.Outcome{}, game.Stale(playerID, d, version, current)
	}

	start := t.hand.Seq()
	out, err := t.hand.Apply(playerID, d)
	if err != nil {
		t.mu.Unlock()
		return game.Outcome{}, err
	}

	var fx effects
	t.progress(start, &fx)
	t.mu.Unlock()

	t.dispatch(fx)
	return out, nil
}

// expire applies the timeout default if the turn it was armed for is still
// current. A turn that has moved on is left alone, so the default is
// applied at most once per turn.
func (t *Table) expire(version uint64) {
	t.mu.Lock()
	if t.closed || t.hand == nil || version != t.version {
		t.mu.Unlock()
		return
	}
	acting := t.hand.ActingPlayer()
	if acting == nil {
		t.mu.Unlock()
		return
	}

	start := t.hand.Seq()
	out, err := t.hand.ApplyTimeout(acting.ID)
	if err != nil {
		t.mu.Unlock()
		t.logger.Error("timeout default rejected", "player", acting.ID, "error", err)
		return
	}
	t.timeouts++
	t.logger.Warn("decision timed out", "player", acting.ID, "hand", t.hand.ID, "applied", out.Decision.Action)

	var fx effects
	t.progress(start, &fx)
	t.mu.Unlock()

	t.dispatch(fx)
}

// progress runs after every hand mutation: it folds players who left, bumps
// the turn version, queues notifications and either arms the next turn or
// settles the hand. Callers hold the lock.
func (t *Table) progress(start int, fx *effects) {
	for {
		acting := t.hand.ActingPlayer()
		if acting == nil {
			break
		}
		seat, _ := t.seatOf(acting.ID)
		if seat == nil || !seat.Leaving {
			break
		}
		if _, err := t.hand.Apply(acting.ID, game.Decision{Action: game.Fold, Reasoning: "left the table"}); err != nil {
			t.logger.Error("fold for leaving player rejected", "player", acting.ID, "error", err)
			break
		}
	}

	t.version++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	view := t.hand.PublicView()
	for _, e := range t.hand.EventsSince(start) {
		t.seq++
		fx.changes = append(fx.changes, StateChange{TableID: t.cfg.ID, Seq: t.seq, Version: t.version, Event: e, View: view})
	}

	if t.hand.Done() {
		t.settle(fx)
		return
	}

	acting := t.hand.ActingPlayer()
	if acting == nil {
		return
	}
	version := t.version
	t.timer = t.clock.AfterFunc(t.cfg.DecisionTimeout, func() { t.expire(version) })

	seat, _ := t.seatOf(acting.ID)
	if seat != nil && seat.listener != nil {
		fx.turn = &Turn{
			TableID:  t.cfg.ID,
			HandID:   t.hand.ID,
			PlayerID: acting.ID,
			Version:  version,
			Deadline: t.clock.Now().Add(t.cfg.DecisionTimeout),
			View:     t.hand.ViewFor(acting.ID),
			History:  t.hand.History(),
		}
		fx.turnTo = seat.listener
	}
}

// settle copies final stacks back to the seats, drops leaving players and
// moves the button one eligible seat clockwise.
func (t *Table) settle(fx *effects) {
	summary := t.hand.Summary()
	fx.settled = &summary

	for _, p := range t.hand.Players {
		seat, number := t.seatOf(p.ID)
		if seat == nil {
			continue
		}
		seat.Chips = p.Chips
		if seat.listener != nil {
			fx.listeners = append(fx.listeners, seat.listener)
		}
		switch {
		case seat.Leaving:
			t.seats[number] = nil
			t.logger.Info("player left", "player", p.ID, "chips", p.Chips)
			t.tableEvent(fx, EventRemoved, p.ID, p.Chips)
		case seat.Chips == 0:
			seat.SittingOut = true
			t.logger.Info("player busted", "player", p.ID)
		}
	}

	if next := t.nextEligible(t.button + 1); next >= 0 {
		t.button = next
	}
	t.hands++
	t.logger.Info("hand settled", "hand", t.hand.ID, "awards", len(summary.Awards))
	t.maybeAutoStart()
}

// maybeAutoStart arms the pause before the next hand. Callers hold the lock.
func (t *Table) maybeAutoStart() {
	if !t.cfg.AutoStart || t.closed || t.pause != nil {
		return
	}
	if t.hand != nil && !t.hand.Done() {
		return
	}
	if t.eligibleCount() < 2 {
		return
	}
	t.pause = t.clock.AfterFunc(t.cfg.HandPause, func() {
		t.mu.Lock()
		t.pause = nil
		t.mu.Unlock()
		if _, err := t.StartHand(); err != nil && !errors.Is(err, ErrNotEnoughPlayers) && !errors.Is(err, ErrTableClosed) {
			t.logger.Error("auto start failed", "error", err)
		}
	})
}

// tableEvent queues a seat change. It leaves the turn version alone, so a
// turn already issued stays valid and its timer stays armed.
func (t *Table) tableEvent(fx *effects, kind game.EventKind, playerID string, amount int) {
	t.seq++
	fx.changes = append(fx.changes, StateChange{
		TableID: t.cfg.ID,
		Seq:     t.seq,
		Version: t.version,
		Event:   game.Event{Seq: -1, Time: t.clock.Now(), Kind: kind, Phase: t.phase(), PlayerID: playerID, Amount: amount},
		View:    t.viewLocked(""),
	})
}

func (t *Table) dispatch(fx effects) {
	if t.notifier != nil {
		for _, c := range fx.changes {
			t.notifier.Notify(c)
		}
	}
	if fx.settled != nil {
		if t.recorder != nil {
			t.recorder.RecordHand(persistence.HandRecord{TableID: t.cfg.ID, Hand: *fx.settled})
		}
		for _, l := range fx.listeners {
			l.HandSettled(t.cfg.ID, *fx.settled)
		}
	}
	if fx.turn != nil {
		fx.turnTo.Turn(*fx.turn)
	}
}

// View projects the table for viewer; an empty viewer gets the public view.
// The returned version is the token for Submit.
func (t *Table) View(viewer string) (game.View, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(viewer), t.version
}

func (t *Table) viewLocked(viewer string) game.View {
	if t.hand != nil && !t.hand.Done() {
		return t.hand.ViewFor(viewer)
	}
	v := game.View{
		Phase:      game.WaitingForPlayers,
		SmallBlind: t.cfg.SmallBlind,
		BigBlind:   t.cfg.BigBlind,
		Button:     t.button,
		Viewer:     viewer,
	}
	if t.hand != nil {
		last := t.hand.PublicView()
		v.HandID = last.HandID
		v.Board = last.Board
		v.Awards = last.Awards
	}
	for _, s := range t.seats {
		if s == nil {
			continue
		}
		status := game.Active
		if s.SittingOut {
			status = game.SittingOut
		}
		v.Players = append(v.Players, game.PlayerView{ID: s.ID, Name: s.Name, Kind: s.Kind, Chips: s.Chips, Status: status})
	}
	return v
}

// History returns the current or most recent hand's events.
func (t *Table) History() []game.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hand == nil {
		return nil
	}
	return t.hand.History()
}

// Info summarises the table.
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := TableInfo{
		ID:              t.cfg.ID,
		Name:            t.cfg.Name,
		MaxPlayers:      t.cfg.MaxPlayers,
		SmallBlind:      t.cfg.SmallBlind,
		BigBlind:        t.cfg.BigBlind,
		StartingChips:   t.cfg.StartingChips,
		DecisionTimeout: t.cfg.DecisionTimeout.String(),
		Phase:           t.phase(),
		Version:         t.version,
		HandsPlayed:     t.hands,
		Timeouts:        t.timeouts,
	}
	if t.hand != nil {
		info.HandID = t.hand.ID
	}
	for _, s := range t.seats {
		if s != nil {
			info.Seats = append(info.Seats, *s)
		}
	}
	return info
}

// Close stops timers and rejects further mutations.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for _, timer := range []*quartz.Timer{t.timer, t.pause} {
		if timer != nil {
			timer.Stop()
		}
	}
	t.timer, t.pause = nil, nil
	t.cancel()
	t.logger.Info("table closed", "hands", t.hands)
}

func (t *Table) phase() game.Phase {
	if t.hand == nil || t.hand.Done() {
		return game.WaitingForPlayers
	}
	return t.hand.Phase
}

func (t *Table) seatOf(id string) (*Seat, int) {
	for i, s := range t.seats {
		if s != nil && s.ID == id {
			return s, i
		}
	}
	return nil, -1
}

// livePlayer returns id's player in the current hand if they can still win it.
func (t *Table) livePlayer(id string) (*game.Player, int) {
	if t.hand == nil || t.hand.Done() {
		return nil, -1
	}
	p, i := t.hand.Player(id)
	if p == nil || !p.InHand() {
		return nil, -1
	}
	return p, i
}

// nextEligible is the first eligible seat at or clockwise after from.
func (t *Table) nextEligible(from int) int {
	n := len(t.seats)
	for k := range n {
		i := ((from+k)%n + n) % n
		if t.seats[i].eligible() {
			return i
		}
	}
	return -1
}

func (t *Table) eligibleCount() int {
	count := 0
	for _, s := range t.seats {
		if s.eligible() {
			count++
		}
	}
	return count
}
