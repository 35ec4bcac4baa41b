// Package lookup implements the table-driven scan loop: walking a
// compiled machine.StateMachine one code point at a time, tracking the
// longest (or, for a lazy rule, first) accepting state reached, and
// applying push/pop/next-state transitions between tokens.
package lookup

import (
	"lexgen/codec"
	"lexgen/lexerr"
	"lexgen/lexid"
	"lexgen/machine"
	"lexgen/syntax"
)

// MatchResult is one token the scan loop produced. ID is lexid.None when
// no rule matched at all (the input code point at [First,Second) was
// rejected and skipped); ID == 0 with First == Second marks end-of-input.
type MatchResult struct {
	First, Second int
	ID            lexid.ID
	UserID        lexid.ID
	State         int
}

// IsEOI reports whether m is the end-of-input sentinel.
func (m MatchResult) IsEOI() bool { return m.ID == 0 && m.First == m.Second }

// IsReject reports whether m represents a code point that matched no
// rule at all.
func (m MatchResult) IsReject() bool { return m.ID == lexid.None }

// Cursor drives the scan loop over one input, owned exclusively by a
// single goroutine; it borrows a *machine.StateMachine that may be shared
// read-only across any number of concurrent Cursors.
type Cursor struct {
	machine *machine.StateMachine
	dec     codec.Decoder
	pos     int
	state   int
	stack   []int
	bol     bool
}

// NewCursor returns a Cursor scanning dec from offset 0, beginning in
// start-state start with the given beginning-of-line flag.
func NewCursor(m *machine.StateMachine, dec codec.Decoder, start int, bol bool) *Cursor {
	return &Cursor{machine: m, dec: dec, state: start, bol: bol}
}

// Reset reinitializes the cursor over a new input, discarding the push
// stack.
func (c *Cursor) Reset(dec codec.Decoder, start int, bol bool) {
	c.dec = dec
	c.pos = 0
	c.state = start
	c.bol = bol
	c.stack = c.stack[:0]
}

// Pos returns the current byte offset into the input.
func (c *Cursor) Pos() int { return c.pos }

// State returns the current start-state id.
func (c *Cursor) State() int { return c.state }

type endCandidate struct {
	pos                                   int
	ruleID, userID, nextState, pushState lexid.ID
	pop                                   bool
	greedy                                syntax.Greedy
}

// Next advances the cursor by one token.
func (c *Cursor) Next() (MatchResult, error) {
	if c.pos >= c.dec.Len() {
		return MatchResult{First: c.pos, Second: c.pos, ID: 0, State: c.state}, nil
	}

	table := c.machine.Table(c.state)
	row := 1
	if c.bol {
		if next := table.Rows[row].Transitions[table.BOLColumn]; next != 0 {
			row = int(next)
		}
	}

	start := c.pos
	pos := c.pos
	cur := row
	lastRune := rune(-1)
	var best *endCandidate

	for pos < c.dec.Len() {
		r, width, ok, err := c.dec.Decode(pos)
		if err != nil {
			return MatchResult{}, err
		}
		if !ok {
			break
		}
		col := c.machine.Column(r)
		if col < 0 {
			break
		}
		next := table.Rows[cur].Transitions[col]
		if next == 0 {
			break
		}
		cur = int(next)
		pos += width
		lastRune = r

		rowState := table.Rows[cur]
		if rowState.EndState {
			best = &endCandidate{
				pos: pos, ruleID: rowState.RuleID, userID: rowState.UserID,
				nextState: rowState.NextState, pushState: rowState.PushState,
				pop: rowState.PopFlag, greedy: rowState.Greedy,
			}
			if rowState.Greedy == syntax.GreedyNo {
				break
			}
		}
	}

	atEOL := pos >= c.dec.Len()
	if !atEOL {
		r, _, ok, err := c.dec.Decode(pos)
		if err != nil {
			return MatchResult{}, err
		}
		atEOL = ok && r == '\n'
	}
	if atEOL {
		if eolNext := table.Rows[cur].Transitions[table.EOLColumn]; eolNext != 0 {
			rowState := table.Rows[eolNext]
			if rowState.EndState {
				best = &endCandidate{
					pos: pos, ruleID: rowState.RuleID, userID: rowState.UserID,
					nextState: rowState.NextState, pushState: rowState.PushState,
					pop: rowState.PopFlag, greedy: rowState.Greedy,
				}
			}
		}
	}

	if best == nil {
		_, width, ok, err := c.dec.Decode(c.pos)
		if err != nil {
			return MatchResult{}, err
		}
		if !ok {
			return MatchResult{First: c.pos, Second: c.pos, ID: 0, State: c.state}, nil
		}
		rejectStart := c.pos
		c.pos += width
		return MatchResult{First: rejectStart, Second: c.pos, ID: lexid.None, State: c.state}, nil
	}

	match := MatchResult{First: start, Second: best.pos, ID: best.ruleID, UserID: best.userID, State: c.state}

	if best.pos > start {
		c.bol = lastRune == '\n'
	}
	c.pos = best.pos

	if err := c.transition(best); err != nil {
		return MatchResult{}, err
	}
	return match, nil
}

func (c *Cursor) transition(best *endCandidate) error {
	if best.pop {
		if len(c.stack) == 0 {
			return &lexerr.StateStackUnderflow{}
		}
		c.state = c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		return nil
	}
	if lexid.Valid(best.pushState) {
		c.stack = append(c.stack, c.state)
		c.state = int(best.pushState)
	}
	if lexid.Valid(best.nextState) {
		c.state = int(best.nextState)
	}
	return nil
}
