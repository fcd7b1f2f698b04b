package game

// betting holds the state of the current betting round.
type betting struct {
	currentBet int
	minRaise   int
	aggressor  int    // index of the last full raiser, -1 if none
	acted      []bool // acted since the last full raise
	capped     []bool // may only call or fold: facing an incomplete raise after acting
}

func newBetting(n, bigBlind int) *betting {
	return &betting{
		minRaise:  bigBlind,
		aggressor: -1,
		acted:     make([]bool, n),
		capped:    make([]bool, n),
	}
}

func (b *betting) reset(bigBlind int) {
	b.currentBet = 0
	b.minRaise = bigBlind
	b.aggressor = -1
	clear(b.acted)
	clear(b.capped)
}

// validActions lists what p (at index i) may do.
func (b *betting) validActions(p *Player, i int) []ValidAction {
	if !p.CanAct() {
		return nil
	}
	toCall := b.currentBet - p.Bet
	valid := []ValidAction{{Action: Fold}}
	if toCall <= 0 {
		valid = append(valid, ValidAction{Action: Check})
	} else if p.Chips > toCall {
		valid = append(valid, ValidAction{Action: Call, Min: toCall, Max: toCall})
	}

	stackTo := p.Bet + p.Chips
	minTo := b.currentBet + b.minRaise
	canRaise := !b.capped[i] && p.Chips > toCall
	if canRaise && stackTo > minTo {
		valid = append(valid, ValidAction{Action: Raise, Min: minTo, Max: stackTo})
	}
	if canRaise || p.Chips <= toCall {
		valid = append(valid, ValidAction{Action: AllIn, Min: p.Chips, Max: p.Chips})
	}
	return valid
}

// move is a validated action ready to apply.
type move struct {
	action  Action // normalized: raises for the whole stack become AllIn
	commit  int    // chips moved from stack to bet
	raiseTo int    // new street bet level when the move raises
	clamped bool   // a call for more than the stack became an all-in call
}

// validate checks d for player p at index i and returns the move to apply.
// It never mutates state.
func (b *betting) validate(p *Player, i int, d Decision) (move, *ActionError) {
	toCall := b.currentBet - p.Bet
	switch d.Action {
	case Fold:
		return move{action: Fold}, nil

	case Check:
		if toCall > 0 {
			return move{}, illegal(p.ID, d, "cannot check, must call %d", toCall)
		}
		return move{action: Check}, nil

	case Call:
		if toCall <= 0 {
			return move{}, illegal(p.ID, d, "nothing to call")
		}
		if toCall >= p.Chips {
			return move{action: AllIn, commit: p.Chips, clamped: toCall > p.Chips}, nil
		}
		return move{action: Call, commit: toCall}, nil

	case Raise:
		if b.capped[i] {
			return move{}, illegal(p.ID, d, "betting is not reopened by an incomplete raise")
		}
		if d.Amount <= b.currentBet {
			return move{}, illegal(p.ID, d, "raise must exceed current bet %d", b.currentBet)
		}
		add := d.Amount - p.Bet
		if add > p.Chips {
			e := illegal(p.ID, d, "raise to %d needs %d, stack is %d", d.Amount, add, p.Chips)
			e.Cause = ErrInsufficientStack
			return move{}, e
		}
		if add == p.Chips {
			return b.allIn(p, i, d)
		}
		if floor := b.currentBet + b.minRaise; d.Amount < floor {
			return move{}, illegal(p.ID, d, "raise too small, minimum %d", floor)
		}
		return move{action: Raise, commit: add, raiseTo: d.Amount}, nil

	case AllIn:
		return b.allIn(p, i, d)
	}
	return move{}, illegal(p.ID, d, "unknown action")
}

func (b *betting) allIn(p *Player, i int, d Decision) (move, *ActionError) {
	if p.Chips <= 0 {
		return move{}, illegal(p.ID, d, "no chips left")
	}
	to := p.Bet + p.Chips
	if to > b.currentBet && b.capped[i] {
		return move{}, illegal(p.ID, d, "betting is not reopened by an incomplete raise")
	}
	m := move{action: AllIn, commit: p.Chips}
	if to > b.currentBet {
		m.raiseTo = to
	}
	return m, nil
}

// apply commits a validated move for player i.
func (b *betting) apply(players []*Player, i int, m move) {
	p := players[i]
	switch m.action {
	case Fold:
		p.Status = Folded
	case Call, AllIn, Raise:
		p.commit(m.commit)
	}
	b.acted[i] = true

	if m.raiseTo <= b.currentBet {
		return
	}
	increment := m.raiseTo - b.currentBet
	b.currentBet = m.raiseTo
	full := increment >= b.minRaise
	for j := range players {
		if j == i {
			continue
		}
		if full {
			b.capped[j] = false
		} else if b.acted[j] {
			b.capped[j] = true
		}
		b.acted[j] = false
	}
	if full {
		b.minRaise = increment
		b.aggressor = i
	}
}

// complete reports whether the round is closed: everyone still able to act
// has matched the bet and acted since the last raise. A lone player who
// already matches the bet has nobody left to act against.
func (b *betting) complete(players []*Player) bool {
	live := 0
	for _, p := range players {
		if !p.CanAct() {
			continue
		}
		if p.Bet < b.currentBet {
			return false
		}
		live++
	}
	if live <= 1 {
		return true
	}
	for i, p := range players {
		if p.CanAct() && !b.acted[i] {
			return false
		}
	}
	return true
}
