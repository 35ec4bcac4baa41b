package tokenize

import (
	"strings"

	"lexgen/token"
)

// PruneAbstemious removes vacuous trailing lazy quantifiers from tokens.
// indexes holds the positions (within tokens) of every AOPT, AZEROORMORE,
// AONEORMORE and AREPEATN token, in the order the tokenizer recorded them;
// it is consumed (and the relevant entries dropped) as pruning proceeds.
func PruneAbstemious(tokens []token.Token, indexes []int) []token.Token {
	for len(indexes) > 0 {
		start := indexes[len(indexes)-1]
		idx := start

		if isEnd(tokens, idx) {
			switch tokens[idx].Type {
			case token.AOPT, token.AZEROORMORE:
				tokens, start, idx = removeSequence(tokens, start, idx)
			case token.AONEORMORE:
				tokens = append(tokens[:idx], tokens[idx+1:]...)
			case token.AREPEATN:
				extra := tokens[idx].Extra
				if i := strings.IndexByte(extra, ','); i >= 0 {
					extra = extra[:i]
				}
				tokens[idx].Type = token.REPEATN
				tokens[idx].Extra = extra
				if extra == "0" {
					tokens, start, idx = removeSequence(tokens, start, idx)
				}
			}
		}

		indexes = indexes[:len(indexes)-1]

		for len(indexes) > 0 {
			back := indexes[len(indexes)-1]
			if back >= start && back <= idx {
				indexes = indexes[:len(indexes)-1]
			} else {
				break
			}
		}
	}
	return tokens
}

// isEnd reports whether every token after start, on the current
// alternation branch or any branch reachable by skipping over nested
// OR-groups, resolves only to END — i.e. start is truly the last
// meaningful operator on its path through the pattern.
func isEnd(tokens []token.Token, start int) bool {
	for idx := start + 1; idx < len(tokens); {
		switch tokens[idx].Type {
		case token.OR:
			idx = endBlock(tokens, idx+1)
		case token.CLOSEPAREN:
			idx++
		case token.END:
			return true
		default:
			return false
		}
	}
	return true
}

// endBlock finds the end of the alternation branch beginning at start,
// tracking balanced parens so an OR or CLOSEPAREN belonging to a nested
// group does not terminate the scan early.
func endBlock(tokens []token.Token, start int) int {
	idx := start + 1
	parens := 0
	for ; idx < len(tokens); idx++ {
		switch tokens[idx].Type {
		case token.OR:
			if parens == 0 {
				return idx
			}
		case token.OPENPAREN:
			parens++
		case token.CLOSEPAREN:
			if parens == 0 {
				return idx
			}
			parens--
		case token.END:
			return idx
		}
	}
	return idx
}

// removeSequence deletes the operand subsequence that the abstemious
// operator at idx applies to, widening the deleted range leftward over a
// balanced parenthesized block when the operand is one, and cleaning up
// whichever dangling '|' the deletion leaves behind. It returns the
// updated token slice and the widened [start, idx] boundary (in the
// original, pre-deletion index space) so the caller can drop any other
// pending abstemious indexes that fell inside the removed range.
func removeSequence(tokens []token.Token, start, idx int) ([]token.Token, int, int) {
	iter := idx - 1

	if tokens[iter].Type == token.CLOSEPAREN {
		parens := 1
		for parens > 0 {
			iter--
			switch tokens[iter].Type {
			case token.OPENPAREN:
				parens--
			case token.CLOSEPAREN:
				parens++
			}
		}
	}

	start = iter

	for tokens[start-1].Type == token.OPENPAREN && tokens[idx+1].Type == token.CLOSEPAREN {
		start--
		iter--
		idx++
	}

	out := make([]token.Token, 0, len(tokens)-(idx-iter+1))
	out = append(out, tokens[:iter]...)
	out = append(out, tokens[idx+1:]...)

	tail := iter
	switch {
	case tail < len(out) && out[tail].Type == token.OR:
		out = append(out[:tail], out[tail+1:]...)
	case tail < len(out) && out[tail].Type != token.BEGIN && tail > 0 && out[tail-1].Type == token.OR:
		out = append(out[:tail-1], out[tail:]...)
	}

	return out, start, idx
}
