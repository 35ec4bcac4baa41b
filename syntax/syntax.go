// Package syntax implements the arena-owned parse tree the regex parser
// builds and the DFA constructor walks. Nodes live in a single slab and
// refer to each other by index rather than by pointer, the same way
// CyberCzar01-LABS_4's astNode tree is built from typed node structs, but
// with the ownership cycle that followpos would otherwise create broken by
// making every cross-reference an arena index instead of a pointer.
//
// firstpos, lastpos and followpos are computed incrementally as each node
// is constructed, following the direct regex-to-DFA construction: leaves
// and END nodes are "positions"; SEQUENCE, SELECTION and ITERATION are
// pure combinators over their children's position sets.
package syntax

import "lexgen/lexid"

// NodeRef is an arena index into a Tree. NullRef denotes "no node".
type NodeRef int32

// NullRef is the absence of a node reference.
const NullRef NodeRef = -1

// Kind tags the shape of a Node.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindSequence
	KindSelection
	KindIteration
	KindEnd
)

// LeafSymbol distinguishes what a KindLeaf node matches.
type LeafSymbol uint8

const (
	// SymbolCharset matches the interned CharSet named by Node.CharsetID.
	SymbolCharset LeafSymbol = iota
	// SymbolBOL matches the synthetic beginning-of-line pseudo-column.
	SymbolBOL
	// SymbolEOL matches the synthetic end-of-line pseudo-column.
	SymbolEOL
	// SymbolNull matches the empty string (ε); it is never a position.
	SymbolNull
)

// Greedy is the three-state lattice used to arbitrate overlapping rules:
// a plain greedy match, a lazy ("abstemious") match, and a hard match.
// Combine and the partition package handle GreedyHard, but no parser or
// pruner step in this module produces it.
type Greedy uint8

const (
	GreedyYes Greedy = iota
	GreedyNo
	GreedyHard
)

// Combine resolves which of two overlapping leaves' greedy bits wins: the
// earlier-declared (lhs) side wins unless it is lazy and the other side is
// hard, in which case hard dominates.
func Combine(lhs, rhs Greedy) Greedy {
	if lhs == GreedyNo && rhs == GreedyHard {
		return GreedyHard
	}
	return lhs
}

// Node is one element of a Tree. Only the fields relevant to Kind are
// meaningful; see the per-kind constructors below.
type Node struct {
	Kind   Kind
	Left   NodeRef
	Right  NodeRef
	Greedy Greedy

	Symbol    LeafSymbol
	CharsetID lexid.ID

	RuleID, UserID, NextState, PushState lexid.ID
	PopFlag                              bool

	Nullable  bool
	Firstpos  []NodeRef
	Lastpos   []NodeRef
	Followpos []NodeRef // meaningful only for KindLeaf / KindEnd
}

// IsPosition reports whether a node occupies a position in firstpos,
// lastpos and followpos sets (leaves and END nodes do; SEQUENCE,
// SELECTION and ITERATION are pure combinators and never appear in those
// sets themselves).
func (n *Node) IsPosition() bool {
	return n.Kind == KindLeaf && n.Symbol != SymbolNull || n.Kind == KindEnd
}

// Tree is the arena owning every Node built while parsing one start-state's
// combined rule set.
type Tree struct {
	nodes []Node
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// Node returns a copy of the node at ref.
func (t *Tree) Node(ref NodeRef) Node {
	return t.nodes[ref]
}

// Len returns the number of nodes allocated so far.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) alloc(n Node) NodeRef {
	t.nodes = append(t.nodes, n)
	return NodeRef(len(t.nodes) - 1)
}

func unionRefs(a, b []NodeRef) []NodeRef {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	seen := make(map[NodeRef]bool, len(a)+len(b))
	out := make([]NodeRef, 0, len(a)+len(b))
	for _, r := range a {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, r := range b {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func (t *Tree) addFollowpos(positions []NodeRef, add []NodeRef) {
	for _, p := range positions {
		n := &t.nodes[p]
		n.Followpos = unionRefs(n.Followpos, add)
	}
}

// NewLeaf allocates a leaf matching either an interned CharSet (symbol ==
// SymbolCharset), the BOL/EOL pseudo-columns, or ε (SymbolNull).
func (t *Tree) NewLeaf(symbol LeafSymbol, charsetID lexid.ID, greedy Greedy) NodeRef {
	n := Node{Kind: KindLeaf, Left: NullRef, Right: NullRef, Symbol: symbol, CharsetID: charsetID, Greedy: greedy}
	if symbol == SymbolNull {
		n.Nullable = true
	} else {
		ref := NodeRef(len(t.nodes))
		n.Firstpos = []NodeRef{ref}
		n.Lastpos = []NodeRef{ref}
	}
	return t.alloc(n)
}

// NewEnd allocates the terminal node attached to one rule's tree,
// recording the metadata an accepting DFA state copies from it.
func (t *Tree) NewEnd(ruleID, userID, nextState, pushState lexid.ID, popFlag bool, greedy Greedy) NodeRef {
	ref := NodeRef(len(t.nodes))
	n := Node{
		Kind: KindEnd, Left: NullRef, Right: NullRef,
		RuleID: ruleID, UserID: userID, NextState: nextState, PushState: pushState, PopFlag: popFlag,
		Greedy:   greedy,
		Firstpos: []NodeRef{ref},
		Lastpos:  []NodeRef{ref},
	}
	return t.alloc(n)
}

// NewSequence builds SEQUENCE(left, right), propagating followpos from
// left's lastpos into right's firstpos.
func (t *Tree) NewSequence(left, right NodeRef) NodeRef {
	l, r := t.nodes[left], t.nodes[right]
	n := Node{
		Kind: KindSequence, Left: left, Right: right,
		Nullable: l.Nullable && r.Nullable,
	}
	if l.Nullable {
		n.Firstpos = unionRefs(l.Firstpos, r.Firstpos)
	} else {
		n.Firstpos = l.Firstpos
	}
	if r.Nullable {
		n.Lastpos = unionRefs(l.Lastpos, r.Lastpos)
	} else {
		n.Lastpos = r.Lastpos
	}
	t.addFollowpos(l.Lastpos, r.Firstpos)
	return t.alloc(n)
}

// NewSelection builds SELECTION(left, right) — alternation, and the
// '?'-wrapping of an optional subexpression against LEAF(NULL).
func (t *Tree) NewSelection(left, right NodeRef) NodeRef {
	l, r := t.nodes[left], t.nodes[right]
	n := Node{
		Kind: KindSelection, Left: left, Right: right,
		Nullable: l.Nullable || r.Nullable,
		Firstpos: unionRefs(l.Firstpos, r.Firstpos),
		Lastpos:  unionRefs(l.Lastpos, r.Lastpos),
	}
	return t.alloc(n)
}

// NewIteration builds ITERATION(child) — the Kleene star over child,
// feeding child's lastpos back into child's firstpos via followpos.
func (t *Tree) NewIteration(child NodeRef, greedy Greedy) NodeRef {
	c := t.nodes[child]
	n := Node{
		Kind: KindIteration, Left: child, Right: NullRef, Greedy: greedy,
		Nullable: true,
		Firstpos: c.Firstpos,
		Lastpos:  c.Lastpos,
	}
	t.addFollowpos(c.Lastpos, c.Firstpos)
	return t.alloc(n)
}

// SetGreedy overwrites the greedy bit on every position in ref's firstpos,
// used by the '?' reduction to mark the subtree it just wrapped.
func (t *Tree) SetGreedy(ref NodeRef, greedy Greedy) {
	for _, p := range t.nodes[ref].Firstpos {
		t.nodes[p].Greedy = greedy
	}
}

// Copy deep-copies the subtree rooted at ref into fresh arena slots,
// rebuilding firstpos/lastpos/followpos from scratch so the copy's
// positions are entirely independent of the original's. This is what '+'
// and bounded-repeat unrolling use to manufacture additional mandatory or
// optional occurrences of an operand.
func (t *Tree) Copy(ref NodeRef) NodeRef {
	n := t.nodes[ref]
	switch n.Kind {
	case KindLeaf:
		return t.NewLeaf(n.Symbol, n.CharsetID, n.Greedy)
	case KindEnd:
		return t.NewEnd(n.RuleID, n.UserID, n.NextState, n.PushState, n.PopFlag, n.Greedy)
	case KindSequence:
		return t.NewSequence(t.Copy(n.Left), t.Copy(n.Right))
	case KindSelection:
		return t.NewSelection(t.Copy(n.Left), t.Copy(n.Right))
	case KindIteration:
		return t.NewIteration(t.Copy(n.Left), n.Greedy)
	default:
		panic("syntax: unknown node kind")
	}
}
