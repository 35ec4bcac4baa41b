// Package partition builds the disjoint equivalence classes the DFA
// constructor needs in two places: collapsing every interned CharSet into
// the smallest possible alphabet (each class is a column in the lookup
// table every state shares), and, during subset construction, merging
// positions that transition into the same place on the same input.
package partition

import (
	"sort"

	"lexgen/charset"
	"lexgen/lexid"
)

// Alphabet is the output of partitioning every interned CharSet into
// disjoint columns: Classes[c] is the set of code point ranges column c
// covers, and Columns[id] lists which columns charset id contributes to
// (a charset spanning more than one column happens whenever it overlaps
// partially with another charset in the rule set).
type Alphabet struct {
	Classes []*charset.Set
	Columns [][]int
}

// BuildAlphabet partitions sets (indexed by lexid.ID, as CharsetMap.All
// returns them) into the minimal set of disjoint column ranges such that
// every input CharSet is a union of whole columns. It sweeps the sorted
// range endpoints of every input set and cuts a new column at each one,
// which reaches the same disjoint partition the core's pairwise
// charset-intersect loop reaches, without needing that algorithm's
// overlap/remainder bookkeeping.
func BuildAlphabet(sets []*charset.Set) Alphabet {
	type boundary struct {
		at    rune
		start bool
	}
	var bounds []boundary
	for _, s := range sets {
		for _, r := range s.Ranges() {
			bounds = append(bounds, boundary{r.Lo, true}, boundary{r.Hi + 1, false})
		}
	}
	if len(bounds) == 0 {
		return Alphabet{Columns: make([][]int, len(sets))}
	}

	points := make(map[rune]bool, len(bounds))
	for _, b := range bounds {
		points[b.at] = true
	}
	sortedPoints := make([]rune, 0, len(points))
	for p := range points {
		sortedPoints = append(sortedPoints, p)
	}
	sort.Slice(sortedPoints, func(i, j int) bool { return sortedPoints[i] < sortedPoints[j] })

	var classes []*charset.Set
	for i := 0; i+1 < len(sortedPoints); i++ {
		lo, hi := sortedPoints[i], sortedPoints[i+1]-1
		if hi < lo {
			continue
		}
		covered := false
		for _, s := range sets {
			if s.Contains(lo) {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}
		classes = append(classes, charset.FromRange(lo, hi))
	}

	columns := make([][]int, len(sets))
	for id, s := range sets {
		for col, cls := range classes {
			lo, _ := cls.Ranges()[0].Lo, cls.Ranges()[0].Hi
			if s.Contains(lo) {
				columns[id] = append(columns[id], col)
			}
		}
	}

	return Alphabet{Classes: classes, Columns: columns}
}

// ColumnsFor maps the CharSet interned under id to its alphabet columns.
func (a Alphabet) ColumnsFor(id lexid.ID) []int {
	if int(id) < 0 || int(id) >= len(a.Columns) {
		return nil
	}
	return a.Columns[id]
}
