package game

import (
	"fmt"
	"sort"

	"github.com/lox/agentholdem/poker"
)

// RemainderPolicy decides who receives the odd chips of a split pot.
type RemainderPolicy int

const (
	// RemainderNearestButton gives every odd chip to the tied winner nearest
	// clockwise of the button (the first seat to its left).
	RemainderNearestButton RemainderPolicy = iota
	// RemainderRoundRobin hands odd chips out one at a time, clockwise from
	// the button.
	RemainderRoundRobin
)

func (r RemainderPolicy) String() string {
	if r == RemainderRoundRobin {
		return "round_robin"
	}
	return "button"
}

// ParseRemainderPolicy accepts "button" and "round_robin".
func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch s {
	case "", "button":
		return RemainderNearestButton, nil
	case "round_robin":
		return RemainderRoundRobin, nil
	}
	return 0, fmt.Errorf("unknown remainder policy %q", s)
}

// Award records chips paid from one pot to one player.
type Award struct {
	Pot      int            `json:"pot"`
	PlayerID string         `json:"player_id"`
	Amount   int            `json:"amount"`
	Rank     poker.HandRank `json:"rank,omitempty"`
	Hand     string         `json:"hand,omitempty"`
}

// split divides amount between winners (player indexes), assigning the
// remainder per policy. Winners are paid in clockwise order from the button.
func split(amount int, winners []int, button, seats int, policy RemainderPolicy) map[int]int {
	order := append([]int(nil), winners...)
	sort.Slice(order, func(a, b int) bool {
		return clockwise(order[a], button, seats) < clockwise(order[b], button, seats)
	})

	share := amount / len(order)
	odd := amount % len(order)
	paid := make(map[int]int, len(order))
	for _, w := range order {
		paid[w] = share
	}
	switch policy {
	case RemainderRoundRobin:
		for k := 0; k < odd; k++ {
			paid[order[k]]++
		}
	default:
		paid[order[0]] += odd
	}
	return paid
}

// clockwise is the distance from the seat left of the button to i.
func clockwise(i, button, seats int) int {
	return ((i-button-1)%seats + seats) % seats
}

func (h *Hand) showdown() {
	board := poker.NewHand(h.Board...)
	for i, p := range h.Players {
		if !p.InHand() {
			continue
		}
		// The board holds five cards here, so evaluation cannot fail.
		rank, _ := poker.Evaluate(p.Hole | board)
		h.shown[i] = rank
	}

	// Live hands are shown clockwise from the button.
	n := len(h.Players)
	for k := 1; k <= n; k++ {
		i := (h.Button + k) % n
		rank, ok := h.shown[i]
		if !ok {
			continue
		}
		h.history.append(Event{
			Kind:     EventShowdown,
			Phase:    Showdown,
			PlayerID: h.Players[i].ID,
			Cards:    h.Players[i].Hole.Strings(),
			Pot:      h.PotTotal(),
			Note:     rank.Describe(),
		})
	}

	for potIdx, pot := range CalculatePots(h.Players) {
		var best poker.HandRank
		var winners []int
		for _, i := range pot.Eligible {
			rank := h.shown[i]
			switch poker.CompareHands(rank, best) {
			case 1:
				best, winners = rank, []int{i}
			case 0:
				winners = append(winners, i)
			}
		}
		h.pay(potIdx, pot.Amount, split(pot.Amount, winners, h.Button, n, h.remainder), true)
	}
	h.settle()
}

func (h *Hand) finishUncontested() {
	winner := -1
	for i, p := range h.Players {
		if p.InHand() {
			winner = i
		}
	}
	for potIdx, pot := range CalculatePots(h.Players) {
		h.pay(potIdx, pot.Amount, map[int]int{winner: pot.Amount}, false)
	}
	h.settle()
}

func (h *Hand) pay(potIdx, amount int, paid map[int]int, showdown bool) {
	idx := make([]int, 0, len(paid))
	for i := range paid {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		p := h.Players[i]
		award := Award{Pot: potIdx, PlayerID: p.ID, Amount: paid[i]}
		if showdown {
			award.Rank = h.shown[i]
			award.Hand = award.Rank.Describe()
		}
		h.awards = append(h.awards, award)
		h.history.append(Event{
			Kind:     EventAward,
			Phase:    h.Phase,
			PlayerID: p.ID,
			Amount:   paid[i],
			Pot:      amount,
			Note:     award.Hand,
		})
	}
}

// settle credits awards to stacks and closes the hand.
func (h *Hand) settle() {
	for _, a := range h.awards {
		p, _ := h.Player(a.PlayerID)
		p.Chips += a.Amount
	}
	for _, p := range h.Players {
		p.Bet = 0
	}
	h.acting = -1
	h.Phase = Settled
	h.history.append(Event{Kind: EventSettled, Phase: Settled})
}
