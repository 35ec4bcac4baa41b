// Package dfa builds a table-driven DFA from a syntax.Tree via subset
// construction over firstpos/followpos, the direct regex-to-DFA
// construction that avoids ever materializing an explicit NFA.
package dfa

import (
	"sort"

	"lexgen/lexerr"
	"lexgen/lexid"
	"lexgen/parse"
	"lexgen/partition"
	"lexgen/syntax"
)

// Row is one DFA state: its accepting metadata (if any) and its outgoing
// transition for every alphabet column, where 0 means "no transition" (the
// jam state, row index 0 of Table.Rows).
type Row struct {
	EndState bool
	Greedy   syntax.Greedy

	RuleID, UserID, NextState, PushState lexid.ID
	PopFlag                              bool

	Transitions []int32
}

// Table is a compiled DFA for one start-state's combined rule tree, plus
// the alphabet partition its columns are indexed by. BOLColumn and
// EOLColumn are the synthetic pseudo-columns that `^`/`$` anchors
// transition on; they sit just past the real alphabet columns.
type Table struct {
	Rows         []Row
	Alphabet     partition.Alphabet
	BOLColumn    int
	EOLColumn    int
	TotalColumns int
}

// RuleDecl names a rule the builder must confirm is reachable, for the
// suppression check.
type RuleDecl struct {
	ID     lexid.ID
	Source string
}

// Build performs subset construction over root's firstpos/followpos sets,
// producing one row per distinct reachable position set. declared lists
// every rule a caller expects to be reachable; unless allowSuppressed is
// set, a declared rule that never becomes any row's RuleID fails the
// build with RuleSuppressed.
func Build(root syntax.NodeRef, tree *syntax.Tree, charsets *parse.CharsetMap, declared []RuleDecl, allowSuppressed bool) (*Table, error) {
	alphabet := partition.BuildAlphabet(charsets.All())
	bolCol := len(alphabet.Classes)
	eolCol := bolCol + 1
	totalCols := eolCol + 1

	rows := []Row{{Transitions: make([]int32, totalCols)}} // row 0: jam
	seen := map[string]int{}
	var stateList [][]syntax.NodeRef
	usedRuleIDs := map[lexid.ID]bool{}

	closure := func(positions []syntax.NodeRef) int32 {
		ordered := dedupOrdered(positions)
		if len(ordered) == 0 {
			return 0
		}
		key := canonicalKey(ordered)
		if idx, ok := seen[key]; ok {
			return int32(idx)
		}

		row := Row{Transitions: make([]int32, totalCols), NextState: lexid.None, PushState: lexid.None}
		// END nodes are allocated in rule declaration order, so the END with
		// the lowest arena index belongs to the earliest-declared rule.
		end := syntax.NullRef
		for _, p := range ordered {
			if tree.Node(p).Kind == syntax.KindEnd && (end == syntax.NullRef || p < end) {
				end = p
			}
		}
		if end != syntax.NullRef {
			n := tree.Node(end)
			row.EndState = true
			row.RuleID = n.RuleID
			row.UserID = n.UserID
			row.NextState = n.NextState
			row.PushState = n.PushState
			row.PopFlag = n.PopFlag
			row.Greedy = n.Greedy
			usedRuleIDs[n.RuleID] = true
		}

		rowIdx := len(rows)
		rows = append(rows, row)
		seen[key] = rowIdx
		stateList = append(stateList, ordered)
		return int32(rowIdx)
	}

	rootNode := tree.Node(root)
	closure(rootNode.Firstpos)

	for stateIdx := 0; stateIdx < len(stateList); stateIdx++ {
		positions := stateList[stateIdx]
		rowIdx := stateIdx + 1

		var equivs []*partition.EquivSet
		for _, p := range positions {
			n := tree.Node(p)
			if n.Kind == syntax.KindEnd {
				continue
			}
			var cols []int
			switch n.Symbol {
			case syntax.SymbolCharset:
				cols = alphabet.ColumnsFor(n.CharsetID)
			case syntax.SymbolBOL:
				cols = []int{bolCol}
			case syntax.SymbolEOL:
				cols = []int{eolCol}
			default:
				continue
			}
			if len(cols) == 0 {
				continue
			}
			equivs = append(equivs, &partition.EquivSet{
				Columns:   append([]int(nil), cols...),
				ID:        int32(p),
				Greedy:    n.Greedy,
				Followpos: n.Followpos,
			})
		}

		for _, e := range partition.BuildEquivList(equivs) {
			if len(e.Columns) == 0 {
				continue
			}
			target := closure(e.Followpos)
			if target == 0 {
				continue
			}
			// Once a state accepts, a lazy transition out of it would only
			// extend a match abstemious semantics says to stop, so it is
			// dropped.
			if rows[rowIdx].EndState && e.Greedy == syntax.GreedyNo {
				continue
			}
			for _, c := range e.Columns {
				rows[rowIdx].Transitions[c] = target
			}
		}
	}

	repairEOLClashes(rows, alphabet, eolCol)

	if !allowSuppressed {
		for _, d := range declared {
			if !usedRuleIDs[d.ID] {
				return nil, &lexerr.RuleSuppressed{RuleIndex: int(d.ID), RuleSource: d.Source}
			}
		}
	}

	return &Table{Rows: rows, Alphabet: alphabet, BOLColumn: bolCol, EOLColumn: eolCol, TotalColumns: totalCols}, nil
}

func dedupOrdered(positions []syntax.NodeRef) []syntax.NodeRef {
	seen := make(map[syntax.NodeRef]bool, len(positions))
	out := make([]syntax.NodeRef, 0, len(positions))
	for _, p := range positions {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func canonicalKey(positions []syntax.NodeRef) string {
	sorted := append([]syntax.NodeRef(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	buf := make([]byte, 0, len(sorted)*4)
	for _, p := range sorted {
		buf = append(buf, byte(p), byte(p>>8), byte(p>>16), byte(p>>24))
	}
	return string(buf)
}

func columnForRune(alphabet partition.Alphabet, r rune) (int, bool) {
	for i, cls := range alphabet.Classes {
		if cls.Contains(r) {
			return i, true
		}
	}
	return 0, false
}

// repairEOLClashes resolves the ambiguity between a `$` anchor and a
// literal `\r`/`\n` transition out of the same state: `$` must win, so the
// pre-EOL state's CR/NL transitions are cleared and reinstated on the
// post-EOL state instead (unless something is already there). This is the
// semantic form of the repair described for a rewrite rather than the
// source's layout-dependent trie descent.
func repairEOLClashes(rows []Row, alphabet partition.Alphabet, eolCol int) {
	nlCol, hasNL := columnForRune(alphabet, '\n')
	crCol, hasCR := columnForRune(alphabet, '\r')
	if !hasNL && !hasCR {
		return
	}

	for i := range rows {
		row := &rows[i]
		post := row.Transitions[eolCol]
		if post == 0 {
			continue
		}
		if hasNL && row.Transitions[nlCol] != 0 {
			target := row.Transitions[nlCol]
			row.Transitions[nlCol] = 0
			if rows[post].Transitions[nlCol] == 0 {
				rows[post].Transitions[nlCol] = target
			}
		}
		if hasCR && row.Transitions[crCol] != 0 {
			target := row.Transitions[crCol]
			row.Transitions[crCol] = 0
			if rows[post].Transitions[crCol] == 0 {
				rows[post].Transitions[crCol] = target
			}
		}
	}
}
