package dfa

import (
	"testing"

	"lexgen/charset"
	"lexgen/lexid"
	"lexgen/parse"
	"lexgen/syntax"
	"lexgen/token"
)

func buildSimple(t *testing.T, toks []token.Token) (*Table, *syntax.Tree) {
	t.Helper()
	tree := syntax.NewTree()
	cs := parse.NewCharsetMap()
	res, err := parse.Parse(toks, tree, cs, parse.RuleMeta{RuleID: 1, UserID: 0, NextState: lexid.None, PushState: lexid.None})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table, err := Build(res.Root, tree, cs, []RuleDecl{{ID: 1, Source: "test"}}, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table, tree
}

func beginEnd(toks ...token.Token) []token.Token {
	out := []token.Token{{Type: token.BEGIN}}
	out = append(out, toks...)
	out = append(out, token.Token{Type: token.END})
	return out
}

func charToken(r rune) token.Token {
	return token.Token{Type: token.CHARSET, Charset: charset.FromRune(r)}
}

func TestBuildSimpleLiteral(t *testing.T) {
	table, _ := buildSimple(t, beginEnd(charToken('a'), charToken('b')))

	if len(table.Rows) < 3 { // jam + 2 states
		t.Fatalf("expected at least 3 rows for 'ab', got %d", len(table.Rows))
	}

	alphaCol, ok := columnForRune(table.Alphabet, 'a')
	if !ok {
		t.Fatalf("expected a column for 'a'")
	}

	start := table.Rows[1]
	next := start.Transitions[alphaCol]
	if next == 0 {
		t.Fatalf("expected a transition on 'a' out of the start state")
	}
	bCol, ok := columnForRune(table.Alphabet, 'b')
	if !ok {
		t.Fatalf("expected a column for 'b'")
	}
	afterA := table.Rows[next]
	final := afterA.Transitions[bCol]
	if final == 0 {
		t.Fatalf("expected a transition on 'b' after 'a'")
	}
	if !table.Rows[final].EndState {
		t.Fatalf("expected the state after 'ab' to be an end state")
	}
	if table.Rows[final].RuleID != 1 {
		t.Fatalf("end state rule id = %d, want 1", table.Rows[final].RuleID)
	}
}

func TestBuildAlternation(t *testing.T) {
	toks := beginEnd(charToken('a'), token.Token{Type: token.OR}, charToken('b'))
	table, _ := buildSimple(t, toks)

	aCol, _ := columnForRune(table.Alphabet, 'a')
	bCol, _ := columnForRune(table.Alphabet, 'b')
	start := table.Rows[1]

	if start.Transitions[aCol] == 0 || start.Transitions[bCol] == 0 {
		t.Fatalf("expected both a and b transitions out of the start state: %+v", start)
	}
	if !table.Rows[start.Transitions[aCol]].EndState {
		t.Fatalf("expected a|b to accept after consuming a")
	}
	if !table.Rows[start.Transitions[bCol]].EndState {
		t.Fatalf("expected a|b to accept after consuming b")
	}
}

func TestBuildStarLoopsBackToItself(t *testing.T) {
	toks := beginEnd(charToken('a'), token.Token{Type: token.ZEROORMORE})
	table, _ := buildSimple(t, toks)

	aCol, _ := columnForRune(table.Alphabet, 'a')
	start := table.Rows[1]
	if !start.EndState {
		t.Fatalf("a* should accept at the start state (zero occurrences)")
	}
	next := start.Transitions[aCol]
	if next == 0 {
		t.Fatalf("expected a self-loop transition on 'a'")
	}
	if next != 1 {
		// a* collapses firstpos==lastpos, so the looped state should be
		// the same row as the start state.
		t.Fatalf("expected a* to loop back to the start row, got %d", next)
	}
}

func TestRuleSuppressedWhenUnreachable(t *testing.T) {
	tree := syntax.NewTree()
	cs := parse.NewCharsetMap()
	toks := beginEnd(charToken('a'))
	res, err := parse.Parse(toks, tree, cs, parse.RuleMeta{RuleID: 1, NextState: lexid.None, PushState: lexid.None})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = Build(res.Root, tree, cs, []RuleDecl{{ID: 1, Source: "a"}, {ID: 2, Source: "never matched"}}, false)
	if err == nil {
		t.Fatalf("expected RuleSuppressed for an id that never appears in the tree")
	}
}

func TestEOLClashRepair(t *testing.T) {
	// "a$" followed, in the same start-state tree, by a rule matching a
	// literal newline: the '$' anchor must win at the pre-EOL state.
	tree := syntax.NewTree()
	cs := parse.NewCharsetMap()

	aThenEOL := beginEnd(charToken('a'), token.Token{Type: token.EOL})
	r1, err := parse.Parse(aThenEOL, tree, cs, parse.RuleMeta{RuleID: 1, NextState: lexid.None, PushState: lexid.None})
	if err != nil {
		t.Fatalf("Parse rule 1: %v", err)
	}

	aThenNL := beginEnd(charToken('a'), charToken('\n'))
	r2, err := parse.Parse(aThenNL, tree, cs, parse.RuleMeta{RuleID: 2, NextState: lexid.None, PushState: lexid.None})
	if err != nil {
		t.Fatalf("Parse rule 2: %v", err)
	}

	combined := tree.NewSelection(r1.Root, r2.Root)
	table, err := Build(combined, tree, cs, []RuleDecl{{ID: 1}, {ID: 2}}, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	aCol, _ := columnForRune(table.Alphabet, 'a')
	nlCol, _ := columnForRune(table.Alphabet, '\n')
	afterA := table.Rows[table.Rows[1].Transitions[aCol]]

	if afterA.Transitions[nlCol] != 0 {
		t.Fatalf("expected the pre-EOL state's literal \\n transition to be cleared")
	}
	postEOL := table.Rows[afterA.Transitions[table.EOLColumn]]
	if postEOL.Transitions[nlCol] == 0 {
		t.Fatalf("expected the post-EOL state to inherit the \\n transition")
	}
}
