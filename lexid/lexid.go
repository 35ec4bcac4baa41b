// Package lexid defines the small integer identifier type shared by every
// layer of the lexer-generator pipeline: charset ids, rule ids, user ids,
// start-state ids and DFA row indexes are all the same underlying type.
package lexid

// ID is the id_type of the lexer-generator core. A signed 32-bit integer is
// more than enough range for any alphabet, rule count or DFA row count a
// hand-written lexer specification will ever produce, and it keeps negative
// sentinel values (see None) cheap to carry around.
type ID = int32

// None is the "no such id" sentinel described by the NPOS entry in the
// glossary. Most public functions that can fail to produce an id pair it
// with a bool or an error, but it does cross public APIs on its own:
// machine.StartStateID returns -1 for an unknown name, and a rejected
// lookup.MatchResult carries None as its ID.
const None ID = -1

// Valid reports whether id is not the None sentinel.
func Valid(id ID) bool { return id != None }
