package partition

import (
	"sort"

	"lexgen/syntax"
)

// EquivSet is one candidate transition out of a DFA state under
// construction: the set of alphabet columns it fires on, the position
// (leaf) id and greediness that column contributes, and the followpos set
// that position transitions into. Two EquivSets with disjoint column sets
// never interact; two with overlapping column sets must be split so every
// resulting class maps to exactly one followpos set, which is what
// Intersect and BuildEquivList compute.
type EquivSet struct {
	Columns   []int
	ID        int32
	Greedy    syntax.Greedy
	Followpos []syntax.NodeRef
}

// Empty reports whether e contributes nothing (no columns and no
// followpos), the state equivset.hpp's intersect loop uses to decide
// whether a list entry has been fully consumed by overlap extraction.
func (e *EquivSet) Empty() bool {
	return len(e.Columns) == 0 && len(e.Followpos) == 0
}

func sortedCopy(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

func intersectInts(a, b []int) []int {
	a, b = sortedCopy(a), sortedCopy(b)
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func subtractInts(a, b []int) []int {
	remove := make(map[int]bool, len(b))
	for _, v := range b {
		remove[v] = true
	}
	var out []int
	for _, v := range a {
		if !remove[v] {
			out = append(out, v)
		}
	}
	return out
}

func unionPositions(a, b []syntax.NodeRef) []syntax.NodeRef {
	seen := make(map[syntax.NodeRef]bool, len(a)+len(b))
	out := make([]syntax.NodeRef, 0, len(a)+len(b))
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

func combineGreedy(lhs, rhs syntax.Greedy) syntax.Greedy {
	if lhs == syntax.GreedyNo && rhs == syntax.GreedyHard {
		return rhs
	}
	return lhs
}

// Intersect splits the overlap between e and rhs into a third EquivSet,
// mutating both e and rhs to remove the columns that moved into the
// overlap. The left-hand side's id and greediness win on the overlap so
// earlier-declared rules keep priority, matching the core's comment that
// "the LHS takes priority in order to respect rule ordering priority".
func (e *EquivSet) Intersect(rhs *EquivSet) *EquivSet {
	overlap := &EquivSet{Columns: intersectInts(e.Columns, rhs.Columns)}
	if len(overlap.Columns) == 0 {
		return overlap
	}

	overlap.ID = e.ID
	overlap.Greedy = combineGreedy(e.Greedy, rhs.Greedy)
	overlap.Followpos = unionPositions(e.Followpos, rhs.Followpos)

	e.Columns = subtractInts(e.Columns, overlap.Columns)
	rhs.Columns = subtractInts(rhs.Columns, overlap.Columns)

	if len(e.Columns) == 0 {
		e.Followpos = nil
	}
	if len(rhs.Columns) == 0 {
		rhs.Followpos = nil
	}

	return overlap
}

// BuildEquivList merges a state's candidate transitions (one per position
// reachable by that state, before disjointness is enforced) into a list
// where every element's Columns set is disjoint from every other's,
// splitting any overlapping candidates into a shared overlap entry plus
// the leftover remainders of each side. This is the list-insertion loop
// from the core's build_equiv_list(DFA version), ported from its
// linked-list splice pattern to slice insertion since Go has no
// std::list::insert equivalent worth reproducing.
func BuildEquivList(rhs []*EquivSet) []*EquivSet {
	var lhs []*EquivSet
	for _, r := range rhs {
		if r.Empty() {
			continue
		}
		if len(lhs) == 0 {
			lhs = append(lhs, r)
			continue
		}

		cur := r
	inner:
		for i := 0; !cur.Empty() && i < len(lhs); {
			l := lhs[i]
			overlap := l.Intersect(cur)

			switch {
			case overlap.Empty():
				i++
			case l.Empty():
				lhs[i] = overlap
				i++
			case cur.Empty():
				cur = overlap
				break inner
			default:
				tail := append([]*EquivSet{overlap}, lhs[i+1:]...)
				lhs = append(lhs[:i+1], tail...)
				i += 2
			}
		}
		if !cur.Empty() {
			lhs = append(lhs, cur)
		}
	}
	return lhs
}
