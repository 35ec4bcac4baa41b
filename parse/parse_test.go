package parse

import (
	"errors"
	"testing"

	"lexgen/charset"
	"lexgen/lexerr"
	"lexgen/lexid"
	"lexgen/syntax"
	"lexgen/token"
)

func beginEnd(toks ...token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks)+2)
	out = append(out, token.Token{Type: token.BEGIN})
	out = append(out, toks...)
	out = append(out, token.Token{Type: token.END})
	return out
}

func charToken(r rune) token.Token {
	return token.Token{Type: token.CHARSET, Charset: charset.FromRune(r)}
}

func repToken(typ token.Type, extra string) token.Token {
	return token.Token{Type: typ, Extra: extra}
}

func mustParse(t *testing.T, toks []token.Token) (Result, *syntax.Tree, *CharsetMap) {
	t.Helper()
	tree := syntax.NewTree()
	cs := NewCharsetMap()
	res, err := Parse(toks, tree, cs, RuleMeta{RuleID: 0, UserID: 0, NextState: lexid.None, PushState: lexid.None})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res, tree, cs
}

func TestParseLiteralSequence(t *testing.T) {
	toks := beginEnd(charToken('a'), charToken('b'))
	res, tree, cs := mustParse(t, toks)

	if cs.Len() != 2 {
		t.Fatalf("expected 2 interned charsets, got %d", cs.Len())
	}
	root := tree.Node(res.Root)
	if root.Kind != syntax.KindSequence {
		t.Fatalf("root kind = %v, want KindSequence", root.Kind)
	}
}

func TestParseAlternation(t *testing.T) {
	toks := append(beginEnd(charToken('a'))[:2],
		[]token.Token{{Type: token.OR}, charToken('b'), {Type: token.END}}...)
	res, tree, _ := mustParse(t, toks)

	// root is SEQUENCE(orexp, END); root's left child, the orexp, is the selection.
	root := tree.Node(res.Root)
	if root.Kind != syntax.KindSequence {
		t.Fatalf("root kind = %v, want KindSequence", root.Kind)
	}
	inner := tree.Node(root.Left)
	if inner.Kind != syntax.KindSelection {
		t.Fatalf("inner kind = %v, want KindSelection", inner.Kind)
	}
}

func TestParseGrouping(t *testing.T) {
	toks := beginEnd(
		token.Token{Type: token.OPENPAREN},
		charToken('a'),
		token.Token{Type: token.OR},
		charToken('b'),
		token.Token{Type: token.CLOSEPAREN},
		charToken('c'),
	)
	res, tree, _ := mustParse(t, toks)
	root := tree.Node(res.Root)
	if root.Kind != syntax.KindSequence {
		t.Fatalf("root kind = %v, want KindSequence", root.Kind)
	}
}

func TestParseOptional(t *testing.T) {
	toks := beginEnd(charToken('a'), token.Token{Type: token.OPT})
	res, tree, _ := mustParse(t, toks)

	root := tree.Node(res.Root)
	opt := tree.Node(root.Left)
	if opt.Kind != syntax.KindSelection {
		t.Fatalf("a? kind = %v, want KindSelection", opt.Kind)
	}
	if !opt.Nullable {
		t.Fatalf("a? should be nullable")
	}
}

func TestParseZeroOrMore(t *testing.T) {
	toks := beginEnd(charToken('a'), token.Token{Type: token.ZEROORMORE})
	res, tree, _ := mustParse(t, toks)

	root := tree.Node(res.Root)
	star := tree.Node(root.Left)
	if star.Kind != syntax.KindIteration {
		t.Fatalf("a* kind = %v, want KindIteration", star.Kind)
	}
	if !star.Nullable {
		t.Fatalf("a* should be nullable")
	}
}

func TestParseOneOrMore(t *testing.T) {
	toks := beginEnd(charToken('a'), token.Token{Type: token.ONEORMORE})
	res, tree, _ := mustParse(t, toks)

	root := tree.Node(res.Root)
	plus := tree.Node(root.Left)
	if plus.Kind != syntax.KindSequence {
		t.Fatalf("a+ kind = %v, want KindSequence (a . a*)", plus.Kind)
	}
	if plus.Nullable {
		t.Fatalf("a+ should not be nullable")
	}
	tail := tree.Node(plus.Right)
	if tail.Kind != syntax.KindIteration {
		t.Fatalf("a+ tail kind = %v, want KindIteration", tail.Kind)
	}
}

func TestParseBoundedRepeat(t *testing.T) {
	// a{2,4}: 2 mandatory + 2 optional copies.
	toks := beginEnd(charToken('a'), repToken(token.REPEATN, "2,4"))
	res, tree, cs := mustParse(t, toks)

	if cs.Len() != 1 {
		t.Fatalf("expected exactly 1 distinct interned charset (copies share content), got %d", cs.Len())
	}
	root := tree.Node(res.Root)
	if root.Kind != syntax.KindSequence {
		t.Fatalf("root kind = %v, want KindSequence", root.Kind)
	}
}

func TestParseUnboundedRepeat(t *testing.T) {
	// a{2,}: 2 mandatory + trailing iteration.
	toks := beginEnd(charToken('a'), repToken(token.REPEATN, "2,"))
	res, tree, _ := mustParse(t, toks)

	root := tree.Node(res.Root)
	_ = root
	if res.Root == syntax.NullRef {
		t.Fatalf("expected a non-null root")
	}
}

func TestParseAnchors(t *testing.T) {
	toks := beginEnd(token.Token{Type: token.BOL}, charToken('a'), token.Token{Type: token.EOL})
	res, tree, cs := mustParse(t, toks)
	_ = tree

	if !res.HasNLCharset {
		t.Fatalf("expected HasNLCharset after EOL anchor")
	}
	if cs.Len() != 2 { // 'a' and the EOL '\n' charset
		t.Fatalf("expected 2 interned charsets, got %d", cs.Len())
	}
}

func TestParseMissingEndErrors(t *testing.T) {
	toks := []token.Token{{Type: token.BEGIN}, charToken('a')}
	tree := syntax.NewTree()
	_, err := Parse(toks, tree, NewCharsetMap(), RuleMeta{})
	var want *lexerr.SyntaxError
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want SyntaxError", err)
	}
}

func TestParseUnclosedGroupErrors(t *testing.T) {
	toks := beginEnd(token.Token{Type: token.OPENPAREN}, charToken('a'))
	tree := syntax.NewTree()
	_, err := Parse(toks, tree, NewCharsetMap(), RuleMeta{})
	var want *lexerr.SyntaxError
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want SyntaxError", err)
	}
}

func TestParseSharedCharsetInterning(t *testing.T) {
	toks := beginEnd(charToken('a'), charToken('a'))
	_, _, cs := mustParse(t, toks)
	if cs.Len() != 1 {
		t.Fatalf("identical charsets should intern to one id, got %d", cs.Len())
	}
}
