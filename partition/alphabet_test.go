package partition

import (
	"testing"

	"lexgen/charset"
)

func TestBuildAlphabetDisjointSets(t *testing.T) {
	a := charset.FromRange('a', 'z')
	digits := charset.FromRange('0', '9')

	alpha := BuildAlphabet([]*charset.Set{a, digits})
	if len(alpha.Classes) != 2 {
		t.Fatalf("expected 2 disjoint classes for disjoint inputs, got %d", len(alpha.Classes))
	}
	if len(alpha.Columns[0]) != 1 || len(alpha.Columns[1]) != 1 {
		t.Fatalf("each disjoint input should map to exactly one column: %v", alpha.Columns)
	}
	if alpha.Columns[0][0] == alpha.Columns[1][0] {
		t.Fatalf("disjoint inputs should not share a column")
	}
}

func TestBuildAlphabetOverlappingSets(t *testing.T) {
	lower := charset.FromRange('a', 'z')
	vowels := charset.New()
	for _, r := range "aeiou" {
		vowels.AddRune(r)
	}

	alpha := BuildAlphabet([]*charset.Set{lower, vowels})
	// lower covers the whole a-z run; vowels only covers scattered runes
	// within it, so lower must map to more than one column while vowels's
	// columns are a subset of lower's.
	if len(alpha.Columns[0]) <= len(alpha.Columns[1]) {
		t.Fatalf("expected lower to span more columns than vowels: %v", alpha.Columns)
	}
	lowerCols := make(map[int]bool)
	for _, c := range alpha.Columns[0] {
		lowerCols[c] = true
	}
	for _, c := range alpha.Columns[1] {
		if !lowerCols[c] {
			t.Fatalf("vowels column %d not covered by lower's columns", c)
		}
	}
}

func TestBuildAlphabetEmpty(t *testing.T) {
	alpha := BuildAlphabet(nil)
	if len(alpha.Classes) != 0 {
		t.Fatalf("expected no classes for empty input")
	}
}
