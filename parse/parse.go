// Package parse implements the shift-reduce regex parser described in the
// core design: REGEX -> OREXP -> SEQUENCE -> SUB -> EXPRESSION -> REPEAT,
// with DUP suffixes applying the postfix repetition operators. The token
// grammar is small enough, and free of genuine shift/shift or
// reduce/reduce ambiguity, that the handle-matching the precedence table
// would otherwise drive is expressed directly as one recursive-descent
// function per nonterminal; each function still performs exactly the
// reduction action (arena allocation) the core's grammar comment lists for
// that production, it just locates its own handle boundary instead of
// consulting a lhs/rhs precedence comparison first. A malformed token
// stream still surfaces the same SyntaxError{position, lhs_class,
// rhs_class} shape a table-driven engine would report.
package parse

import (
	"strconv"
	"strings"

	"lexgen/charset"
	"lexgen/lexerr"
	"lexgen/lexid"
	"lexgen/syntax"
	"lexgen/token"
)

// RuleMeta is the per-rule metadata parse.Parse bakes into the END node it
// attaches to the parsed tree.
type RuleMeta struct {
	RuleID     lexid.ID
	UserID     lexid.ID
	NextState  lexid.ID
	PushState  lexid.ID
	PopFlag    bool
}

// Result carries the parsed root alongside the bits the caller needs to
// finish building a start-state's combined tree: whether this rule used an
// EOL anchor (for the '\n' clash-repair charset id) is surfaced via
// NLCharsetID/HasNLCharset. BodyNullable reports whether the rule's body
// (before the END node was attached) can match the empty string, which is
// what the zero-length-match guard checks per rule, before rules are
// combined into one start-state tree.
type Result struct {
	Root         syntax.NodeRef
	HasNLCharset bool
	NLCharsetID  lexid.ID
	BodyNullable bool
}

type parser struct {
	toks     []token.Token
	pos      int
	tree     *syntax.Tree
	charsets *CharsetMap
	meta     RuleMeta

	hasNL bool
	nlID  lexid.ID
}

// Parse builds one rule's subtree into tree, interning every CharSet it
// encounters into charsets, and attaches a terminal END node carrying
// meta. tokens must be framed by BEGIN ... END as tokenize.Tokenize
// produces (after abstemious pruning).
func Parse(tokens []token.Token, tree *syntax.Tree, charsets *CharsetMap, meta RuleMeta) (Result, error) {
	p := &parser{toks: tokens, tree: tree, charsets: charsets, meta: meta}

	if p.cur().Type != token.BEGIN {
		return Result{}, p.syntaxErr("BEGIN")
	}
	p.pos++

	root, err := p.parseOrexp()
	if err != nil {
		return Result{}, err
	}

	if p.pos >= len(p.toks) || p.cur().Type != token.END {
		return Result{}, p.syntaxErr("END")
	}

	nullable := p.tree.Node(root).Nullable
	end := p.tree.NewEnd(meta.RuleID, meta.UserID, meta.NextState, meta.PushState, meta.PopFlag, syntax.GreedyYes)
	full := p.tree.NewSequence(root, end)

	return Result{Root: full, HasNLCharset: p.hasNL, NLCharsetID: p.nlID, BodyNullable: nullable}, nil
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.END}
	}
	return p.toks[p.pos]
}

func (p *parser) syntaxErr(expected string) error {
	return &lexerr.SyntaxError{Position: p.pos, LHSClass: expected, RHSClass: p.cur().Type.String()}
}

// parseOrexp: OREXP -> SEQUENCE | OREXP '|' SEQUENCE
func (p *parser) parseOrexp() (syntax.NodeRef, error) {
	left, err := p.parseSeq()
	if err != nil {
		return syntax.NullRef, err
	}
	for p.cur().Type == token.OR {
		p.pos++
		right, err := p.parseSeq()
		if err != nil {
			return syntax.NullRef, err
		}
		left = p.tree.NewSelection(left, right)
	}
	return left, nil
}

// parseSeq: SEQUENCE -> SUB; SUB -> EXPRESSION | SUB EXPRESSION. An empty
// sequence (e.g. an empty alternation branch, "a|") reduces to LEAF(NULL)
// rather than erroring, matching epsilon's role in the grammar.
func (p *parser) parseSeq() (syntax.NodeRef, error) {
	if !p.startsExpression() {
		return p.tree.NewLeaf(syntax.SymbolNull, lexid.None, syntax.GreedyYes), nil
	}
	left, err := p.parseExpression()
	if err != nil {
		return syntax.NullRef, err
	}
	for p.startsExpression() {
		right, err := p.parseExpression()
		if err != nil {
			return syntax.NullRef, err
		}
		left = p.tree.NewSequence(left, right)
	}
	return left, nil
}

func (p *parser) startsExpression() bool {
	switch p.cur().Type {
	case token.CHARSET, token.BOL, token.EOL, token.OPENPAREN:
		return true
	default:
		return false
	}
}

// parseExpression: EXPRESSION -> REPEAT; REPEAT -> REPEAT DUP (applied
// left-to-right, so "a?*" is (a?)*).
func (p *parser) parseExpression() (syntax.NodeRef, error) {
	node, err := p.parseRepeatBase()
	if err != nil {
		return syntax.NullRef, err
	}
	for isDup(p.cur().Type) {
		tok := p.cur()
		p.pos++
		node, err = p.applyDup(node, tok)
		if err != nil {
			return syntax.NullRef, err
		}
	}
	return node, nil
}

func isDup(t token.Type) bool {
	switch t {
	case token.OPT, token.AOPT, token.ZEROORMORE, token.AZEROORMORE,
		token.ONEORMORE, token.AONEORMORE, token.REPEATN, token.AREPEATN:
		return true
	default:
		return false
	}
}

// parseRepeatBase: REPEAT -> charset | '(' REGEX ')' | BOL | EOL. Macro
// references never reach the parser: tokenize.Tokenize has already
// inlined them into charsets and grouping tokens.
func (p *parser) parseRepeatBase() (syntax.NodeRef, error) {
	tok := p.cur()
	switch tok.Type {
	case token.CHARSET:
		p.pos++
		id := p.charsets.Intern(tok.Charset)
		return p.tree.NewLeaf(syntax.SymbolCharset, id, syntax.GreedyYes), nil
	case token.BOL:
		p.pos++
		return p.tree.NewLeaf(syntax.SymbolBOL, lexid.None, syntax.GreedyYes), nil
	case token.EOL:
		p.pos++
		p.hasNL = true
		p.nlID = p.charsets.Intern(charset.FromRune('\n'))
		return p.tree.NewLeaf(syntax.SymbolEOL, lexid.None, syntax.GreedyYes), nil
	case token.OPENPAREN:
		p.pos++
		inner, err := p.parseOrexp()
		if err != nil {
			return syntax.NullRef, err
		}
		if p.cur().Type != token.CLOSEPAREN {
			return syntax.NullRef, p.syntaxErr("CLOSEPAREN")
		}
		p.pos++
		return inner, nil
	default:
		return syntax.NullRef, p.syntaxErr("REPEAT")
	}
}

func greedyOf(t token.Type) syntax.Greedy {
	if t.IsAbstemious() {
		return syntax.GreedyNo
	}
	return syntax.GreedyYes
}

// applyDup performs the reduction action for one DUP token against the
// already-built operand top, per the core's §4.2 action table.
func (p *parser) applyDup(top syntax.NodeRef, tok token.Token) (syntax.NodeRef, error) {
	switch tok.Type {
	case token.OPT, token.AOPT:
		greedy := greedyOf(tok.Type)
		p.tree.SetGreedy(top, greedy)
		null := p.tree.NewLeaf(syntax.SymbolNull, lexid.None, syntax.GreedyYes)
		return p.tree.NewSelection(top, null), nil

	case token.ZEROORMORE, token.AZEROORMORE:
		greedy := greedyOf(tok.Type)
		p.tree.SetGreedy(top, greedy)
		return p.tree.NewIteration(top, greedy), nil

	case token.ONEORMORE, token.AONEORMORE:
		greedy := greedyOf(tok.Type)
		rest := p.tree.Copy(top)
		p.tree.SetGreedy(rest, greedy)
		it := p.tree.NewIteration(rest, greedy)
		return p.tree.NewSequence(top, it), nil

	case token.REPEATN, token.AREPEATN:
		return p.unrollRepeat(top, tok)

	default:
		return syntax.NullRef, p.syntaxErr("DUP")
	}
}

// unrollRepeat expands {n,m} into n mandatory copies of top followed by
// either m-n optional copies, or (when m is unbounded) a trailing
// iteration, per the core's bounded-repeat unrolling rule.
func (p *parser) unrollRepeat(top syntax.NodeRef, tok token.Token) (syntax.NodeRef, error) {
	n, m, unbounded, err := parseExtra(tok.Extra)
	if err != nil {
		return syntax.NullRef, err
	}
	greedy := greedyOf(tok.Type)

	var result syntax.NodeRef = syntax.NullRef
	append_ := func(ref syntax.NodeRef) {
		if result == syntax.NullRef {
			result = ref
		} else {
			result = p.tree.NewSequence(result, ref)
		}
	}

	used := false
	nextOperand := func() syntax.NodeRef {
		if !used {
			used = true
			return top
		}
		return p.tree.Copy(top)
	}

	for i := 0; i < n; i++ {
		append_(nextOperand())
	}

	if unbounded {
		tail := nextOperand()
		p.tree.SetGreedy(tail, greedy)
		append_(p.tree.NewIteration(tail, greedy))
		return result, nil
	}

	for i := n; i < m; i++ {
		operand := nextOperand()
		p.tree.SetGreedy(operand, greedy)
		null := p.tree.NewLeaf(syntax.SymbolNull, lexid.None, syntax.GreedyYes)
		append_(p.tree.NewSelection(operand, null))
	}

	if result == syntax.NullRef {
		result = p.tree.NewLeaf(syntax.SymbolNull, lexid.None, syntax.GreedyYes)
	}
	return result, nil
}

func parseExtra(extra string) (n, m int, unbounded bool, err error) {
	parts := strings.SplitN(extra, ",", 2)
	n, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, err
	}
	if len(parts) == 1 {
		return n, n, false, nil
	}
	if parts[1] == "" {
		return n, 0, true, nil
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, err
	}
	return n, m, false, nil
}
