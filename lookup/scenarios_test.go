package lookup

import (
	"testing"

	"lexgen/codec"
	"lexgen/dfa"
	"lexgen/lexid"
	"lexgen/machine"
	"lexgen/parse"
	"lexgen/syntax"
	"lexgen/tokenize"
)

// ruleSrc pairs one rule's regex source with the id the caller wants
// attached to it and its next/push/pop transition. nextState and pushState
// are start-state ids, so their zero value is start-state 0, not lexid.None.
type ruleSrc struct {
	src               string
	id                lexid.ID
	nextState         lexid.ID
	pushState         lexid.ID
	pop               bool
}

// buildMachine tokenizes and parses each rule into one shared tree and
// charset map, combines their rule trees via SELECTION in declaration
// order (so the first-declared rule wins longest-match ties, matching
// dfa.Build's "lowest-indexed END wins" convention), and compiles the
// result into a single-start-state StateMachine.
func buildMachine(t *testing.T, rules []ruleSrc) *machine.StateMachine {
	t.Helper()
	tree := syntax.NewTree()
	cs := parse.NewCharsetMap()
	macros := tokenize.NewMacroTable()

	var combined syntax.NodeRef
	have := false
	var declared []dfa.RuleDecl

	for _, r := range rules {
		toks, _, err := tokenize.Tokenize(r.src, 0, macros)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", r.src, err)
		}
		res, err := parse.Parse(toks, tree, cs, parse.RuleMeta{
			RuleID: r.id, UserID: r.id,
			NextState: r.nextState, PushState: r.pushState, PopFlag: r.pop,
		})
		if err != nil {
			t.Fatalf("Parse(%q): %v", r.src, err)
		}
		if !have {
			combined = res.Root
			have = true
		} else {
			combined = tree.NewSelection(combined, res.Root)
		}
		declared = append(declared, dfa.RuleDecl{ID: r.id, Source: r.src})
	}

	table, err := dfa.Build(combined, tree, cs, declared, false)
	if err != nil {
		t.Fatalf("dfa.Build: %v", err)
	}
	return machine.Build([]machine.StartState{{Name: "INITIAL", Table: table}}, machine.Features{BOL: true}, false)
}

func scanAll(t *testing.T, m *machine.StateMachine, input string) []MatchResult {
	t.Helper()
	cur := NewCursor(m, codec.UTF8Decoder{Data: []byte(input)}, m.StartStateID("INITIAL"), true)
	var out []MatchResult
	for {
		res, err := cur.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, res)
		if res.IsEOI() {
			return out
		}
	}
}

func text(input string, m MatchResult) string { return input[m.First:m.Second] }

// keyword vs identifier: the longest match wins even when a shorter
// keyword rule is declared first.
func TestScenarioLongestMatchFavorsIdentifierOverKeyword(t *testing.T) {
	m := buildMachine(t, []ruleSrc{
		{src: "if", id: 1},
		{src: "[a-zA-Z_][a-zA-Z0-9_]*", id: 2},
		{src: "[ \t]+", id: 3},
	})

	results := scanAll(t, m, "iffy")
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2 (token + EOI)", results)
	}
	if results[0].ID != 2 || text("iffy", results[0]) != "iffy" {
		t.Fatalf("got %+v, want the identifier rule matching the whole word", results[0])
	}
	if !results[1].IsEOI() {
		t.Fatalf("expected EOI sentinel, got %+v", results[1])
	}
}

// keyword/identifier/whitespace token classification: three independent
// rules producing three distinct tokens, whitespace included (id 3).
func TestScenarioKeywordIdentifierWhitespaceTokens(t *testing.T) {
	m := buildMachine(t, []ruleSrc{
		{src: "if", id: 1},
		{src: "[a-zA-Z_][a-zA-Z0-9_]*", id: 2},
		{src: "[ \t]+", id: 3},
	})

	input := "if x"
	results := scanAll(t, m, input)
	want := []struct {
		id   lexid.ID
		text string
	}{
		{1, "if"},
		{3, " "},
		{2, "x"},
	}
	if len(results) != len(want)+1 {
		t.Fatalf("results = %+v, want %d tokens + EOI", results, len(want))
	}
	for i, w := range want {
		if results[i].ID != w.id || text(input, results[i]) != w.text {
			t.Fatalf("results[%d] = %+v (%q), want id %d text %q", i, results[i], text(input, results[i]), w.id, w.text)
		}
	}
	if !results[len(want)].IsEOI() {
		t.Fatalf("expected trailing EOI, got %+v", results[len(want)])
	}
}

// greedy vs lazy quoted-string matching: a greedy "[^\n]*" rule consumes to
// the last closing quote on the line, a lazy ".*?" rule stops at the
// first.
func TestScenarioGreedyVsLazyQuotedString(t *testing.T) {
	greedy := buildMachine(t, []ruleSrc{{src: `"[^\n]*"`, id: 1}})
	lazy := buildMachine(t, []ruleSrc{{src: `".*?"`, id: 1}})

	input := `"a" "b"`

	gr := scanAll(t, greedy, input)
	if gr[0].ID != 1 || text(input, gr[0]) != input {
		t.Fatalf("greedy match = %+v (%q), want the whole input", gr[0], text(input, gr[0]))
	}

	lr := scanAll(t, lazy, input)
	if lr[0].ID != 1 || text(input, lr[0]) != `"a"` {
		t.Fatalf("lazy match = %+v (%q), want the first quoted run", lr[0], text(input, lr[0]))
	}
}

// BOL-anchored rule only fires right after a newline (or at the very
// start of input), not mid-line.
func TestScenarioBOLAnchoredAfterNewline(t *testing.T) {
	m := buildMachine(t, []ruleSrc{
		{src: "^BEGIN", id: 1},
		{src: "BEGIN", id: 2},
		{src: "\n", id: 3},
	})

	input := "BEGIN\nBEGIN"
	results := scanAll(t, m, input)
	if results[0].ID != 1 {
		t.Fatalf("first BEGIN at start of input should match the anchored rule, got %+v", results[0])
	}
	if results[1].ID != 3 {
		t.Fatalf("expected the newline token, got %+v", results[1])
	}
	if results[2].ID != 1 {
		t.Fatalf("BEGIN right after a newline should match the anchored rule, got %+v", results[2])
	}
}

// push/pop comment-state bracketing: entering a comment pushes the
// current start-state and switches to a comment-only state; the closing
// delimiter pops back.
func TestScenarioPushPopCommentState(t *testing.T) {
	initial := []ruleSrc{
		{src: "/\\*", id: 1, pushState: 1, nextState: 1},
		{src: "[a-z]+", id: 2, nextState: lexid.None, pushState: lexid.None},
	}
	comment := []ruleSrc{
		{src: "\\*/", id: 3, pop: true},
		{src: "[^*]+", id: 4, nextState: lexid.None, pushState: lexid.None},
	}

	tree := syntax.NewTree()
	cs := parse.NewCharsetMap()
	macros := tokenize.NewMacroTable()

	// Both start-states' rules are parsed before either table is built, so
	// the two tables partition the same charset map; machine.Build shares
	// the first table's alphabet lookup across every start-state.
	parseAll := func(rules []ruleSrc) (syntax.NodeRef, []dfa.RuleDecl) {
		var combined syntax.NodeRef
		have := false
		var declared []dfa.RuleDecl
		for _, r := range rules {
			toks, _, err := tokenize.Tokenize(r.src, 0, macros)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", r.src, err)
			}
			res, err := parse.Parse(toks, tree, cs, parse.RuleMeta{
				RuleID: r.id, UserID: r.id, NextState: r.nextState, PushState: r.pushState, PopFlag: r.pop,
			})
			if err != nil {
				t.Fatalf("Parse(%q): %v", r.src, err)
			}
			if !have {
				combined = res.Root
				have = true
			} else {
				combined = tree.NewSelection(combined, res.Root)
			}
			declared = append(declared, dfa.RuleDecl{ID: r.id, Source: r.src})
		}
		return combined, declared
	}
	build := func(combined syntax.NodeRef, declared []dfa.RuleDecl) *dfa.Table {
		table, err := dfa.Build(combined, tree, cs, declared, false)
		if err != nil {
			t.Fatalf("dfa.Build: %v", err)
		}
		return table
	}

	initRoot, initDeclared := parseAll(initial)
	commentRoot, commentDeclared := parseAll(comment)
	initTable := build(initRoot, initDeclared)
	commentTable := build(commentRoot, commentDeclared)
	m := machine.Build([]machine.StartState{
		{Name: "INITIAL", Table: initTable},
		{Name: "COMMENT", Table: commentTable},
	}, machine.Features{}, false)

	cur := NewCursor(m, codec.UTF8Decoder{Data: []byte("ab/*xy*/cd")}, m.StartStateID("INITIAL"), false)

	expect := []struct {
		id   lexid.ID
		text string
	}{
		{2, "ab"},
		{1, "/*"},
		{4, "xy"},
		{3, "*/"},
		{2, "cd"},
	}
	for i, w := range expect {
		res, err := cur.Next()
		if err != nil {
			t.Fatalf("Next[%d]: %v", i, err)
		}
		if res.ID != w.id {
			t.Fatalf("Next[%d] = %+v, want id %d", i, res, w.id)
		}
	}
	if cur.State() != m.StartStateID("INITIAL") {
		t.Fatalf("expected to be back in INITIAL after the comment closed, got state %d", cur.State())
	}
}

// {2,4} bounded repetition: matches 2 through 4, and the boundary cases
// on either side behave as the longest-match rule dictates.
func TestScenarioBoundedRepeatBoundary(t *testing.T) {
	m := buildMachine(t, []ruleSrc{{src: "a{2,4}", id: 1}})

	tooFew := scanAll(t, m, "a")
	if tooFew[0].ID != lexid.None {
		t.Fatalf("a{2,4} should reject a single 'a', got %+v", tooFew[0])
	}

	results := scanAll(t, m, "aaaaa")
	if results[0].ID != 1 || text("aaaaa", results[0]) != "aaaa" {
		t.Fatalf("a{2,4} against 'aaaaa' = %+v (%q), want 4 a's matched", results[0], text("aaaaa", results[0]))
	}
}
