package machine

import "lexgen/partition"

// Lookup maps a decoded code point to its alphabet column, or -1 if the
// code point falls outside every rule's character classes (a jam
// transition by construction, since no DFA row has a transition on a
// column no rule ever claimed).
type Lookup interface {
	Column(r rune) int32
}

// DenseLookup is the direct byte-indexed table used for byte alphabets
// (every CharSet confined to code points 0-255).
type DenseLookup struct {
	cols [256]int32
}

// BuildDenseLookup fills a 256-entry table from alphabet's disjoint
// classes. Only meant to be used when every class lies inside the Latin-1
// range; callers should check that before choosing this strategy over
// BuildTrieLookup.
func BuildDenseLookup(alphabet partition.Alphabet) *DenseLookup {
	d := &DenseLookup{}
	for i := range d.cols {
		d.cols[i] = -1
	}
	for col, cls := range alphabet.Classes {
		for _, rg := range cls.Ranges() {
			lo, hi := rg.Lo, rg.Hi
			if lo > 255 {
				continue
			}
			if hi > 255 {
				hi = 255
			}
			for r := lo; r <= hi; r++ {
				d.cols[r] = int32(col)
			}
		}
	}
	return d
}

func (d *DenseLookup) Column(r rune) int32 {
	if r < 0 || r > 255 {
		return -1
	}
	return d.cols[r]
}

// TrieLookup is the compressed three-level byte trie for 21-bit code
// point alphabets: a code point is split into (hi, mid, lo) bytes, each
// level indexing into the next, with the final level's entries being
// alphabet columns.
type TrieLookup struct {
	hi  [256]int32 // -1 = no mid row
	mid [][256]int32
	lo  [][256]int32
}

func (t *TrieLookup) Column(r rune) int32 {
	if r < 0 || r > 0x10FFFF {
		return -1
	}
	hiB := byte((r >> 16) & 0xFF)
	midB := byte((r >> 8) & 0xFF)
	loB := byte(r & 0xFF)

	midIdx := t.hi[hiB]
	if midIdx < 0 {
		return -1
	}
	loIdx := t.mid[midIdx][midB]
	if loIdx < 0 {
		return -1
	}
	return t.lo[loIdx][loB]
}

func (t *TrieLookup) midRow(hiB byte) *[256]int32 {
	if t.hi[hiB] < 0 {
		t.mid = append(t.mid, [256]int32{})
		row := &t.mid[len(t.mid)-1]
		for i := range row {
			row[i] = -1
		}
		t.hi[hiB] = int32(len(t.mid) - 1)
	}
	return &t.mid[t.hi[hiB]]
}

func (t *TrieLookup) loRow(midRow *[256]int32, midB byte) *[256]int32 {
	if midRow[midB] < 0 {
		t.lo = append(t.lo, [256]int32{})
		row := &t.lo[len(t.lo)-1]
		for i := range row {
			row[i] = -1
		}
		midRow[midB] = int32(len(t.lo) - 1)
	}
	return &t.lo[midRow[midB]]
}

// BuildTrieLookup fills a fresh three-level trie from alphabet's disjoint
// classes, growing mid/lo rows on demand rather than allocating the full
// 21-bit code point space up front.
func BuildTrieLookup(alphabet partition.Alphabet) *TrieLookup {
	t := &TrieLookup{}
	for i := range t.hi {
		t.hi[i] = -1
	}

	for col, cls := range alphabet.Classes {
		for _, rg := range cls.Ranges() {
			fillRange(t, rg.Lo, rg.Hi, int32(col))
		}
	}
	return t
}

func fillRange(t *TrieLookup, lo, hi rune, col int32) {
	for cur := lo; cur <= hi; {
		hiB := byte((cur >> 16) & 0xFF)
		bucketEnd := cur | 0xFFFF
		end := hi
		if bucketEnd < end {
			end = bucketEnd
		}
		fillHiBucket(t, hiB, cur, end, col)
		if end == hi {
			break
		}
		cur = end + 1
	}
}

func fillHiBucket(t *TrieLookup, hiB byte, lo, hi rune, col int32) {
	midRow := t.midRow(hiB)
	for cur := lo; cur <= hi; {
		midB := byte((cur >> 8) & 0xFF)
		bucketEnd := cur | 0xFF
		end := hi
		if bucketEnd < end {
			end = bucketEnd
		}
		loRow := t.loRow(midRow, midB)
		for l := byte(cur & 0xFF); ; l++ {
			loRow[l] = col
			if l == byte(end&0xFF) {
				break
			}
		}
		if end == hi {
			break
		}
		cur = end + 1
	}
}
