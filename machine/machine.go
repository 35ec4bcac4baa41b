// Package machine assembles the per-start-state DFA tables the dfa package
// builds into one compiled StateMachine: a shared alphabet lookup (dense
// byte table or compressed trie, chosen by the caller's Compressed flag),
// the aggregated BOL feature bit, and the start-state name-to-id mapping
// the rules package hands over.
package machine

import (
	"lexgen/dfa"
	"lexgen/partition"
)

// Features records lexer-wide properties the scan loop needs to know
// about ahead of time, aggregated across every start-state's rules.
type Features struct {
	BOL bool
}

// StartState names one compiled DFA table and the id the rules package
// assigned it.
type StartState struct {
	Name  string
	Table *dfa.Table
}

// StateMachine is the immutable, concurrency-safe result of Build: once
// constructed, no method mutates it, so a *StateMachine may be shared
// across any number of goroutines scanning independent inputs.
type StateMachine struct {
	states     []StartState
	nameToID   map[string]int
	lookup     Lookup
	compressed bool
	features   Features
}

// Build assembles states (already-compiled per-start-state DFA tables,
// all sharing one alphabet partition) into a StateMachine. compressed
// selects the trie lookup strategy regardless of alphabet width; when
// false, Build still falls back to the trie if any class exceeds the
// Latin-1 range, since a byte-indexed table cannot address it.
func Build(states []StartState, features Features, compressed bool) *StateMachine {
	nameToID := make(map[string]int, len(states))
	for id, s := range states {
		nameToID[s.Name] = id
	}

	var alphabet partition.Alphabet
	if len(states) > 0 {
		alphabet = states[0].Table.Alphabet
	}

	useTrie := compressed || !fitsLatin1(alphabet)
	var lookup Lookup
	if useTrie {
		lookup = BuildTrieLookup(alphabet)
	} else {
		lookup = BuildDenseLookup(alphabet)
	}

	return &StateMachine{
		states:     states,
		nameToID:   nameToID,
		lookup:     lookup,
		compressed: useTrie,
		features:   features,
	}
}

func fitsLatin1(alphabet partition.Alphabet) bool {
	for _, cls := range alphabet.Classes {
		for _, rg := range cls.Ranges() {
			if rg.Hi > 255 {
				return false
			}
		}
	}
	return true
}

// StartStateID resolves a start-state name to its compiled index, or -1
// if no such start-state was registered.
func (m *StateMachine) StartStateID(name string) int {
	if id, ok := m.nameToID[name]; ok {
		return id
	}
	return -1
}

// Table returns the compiled DFA for start-state id.
func (m *StateMachine) Table(id int) *dfa.Table {
	return m.states[id].Table
}

// NumStates returns the number of registered start-states.
func (m *StateMachine) NumStates() int { return len(m.states) }

// Column maps a code point to its alphabet column via the shared lookup.
func (m *StateMachine) Column(r rune) int32 {
	return m.lookup.Column(r)
}

// Features returns the aggregated lexer feature bits.
func (m *StateMachine) Features() Features { return m.features }

// Compressed reports whether the trie lookup strategy is in use.
func (m *StateMachine) Compressed() bool { return m.compressed }
