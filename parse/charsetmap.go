package parse

import (
	"lexgen/charset"
	"lexgen/lexid"
)

// CharsetMap interns CharSets into dense ids starting at 0, so identical
// character classes seen in different rules collapse to the same leaf
// payload instead of duplicating partition work later.
type CharsetMap struct {
	sets  []*charset.Set
	index map[string]lexid.ID
}

// NewCharsetMap returns an empty interning table.
func NewCharsetMap() *CharsetMap {
	return &CharsetMap{index: make(map[string]lexid.ID)}
}

// key derives a content-based interning key from a CharSet's ranges. The
// negatable flag is bookkeeping for the tokenizer's fold/complement order
// and has no bearing on which code points the set matches, so it is not
// part of the key.
func key(s *charset.Set) string {
	return s.String()
}

// Intern returns the dense id for s, allocating a new one if s has not
// been seen (by value, not by pointer identity) before.
func (m *CharsetMap) Intern(s *charset.Set) lexid.ID {
	k := key(s)
	if id, ok := m.index[k]; ok {
		return id
	}
	id := lexid.ID(len(m.sets))
	m.sets = append(m.sets, s)
	m.index[k] = id
	return id
}

// Set returns the CharSet interned under id.
func (m *CharsetMap) Set(id lexid.ID) *charset.Set {
	return m.sets[id]
}

// Len returns the number of distinct CharSets interned so far.
func (m *CharsetMap) Len() int { return len(m.sets) }

// All returns every interned CharSet, indexed by its dense id.
func (m *CharsetMap) All() []*charset.Set { return m.sets }
