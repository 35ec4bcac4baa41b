// Package lexerr collects the error kinds that the tokenizer, parser, DFA
// builder and runtime can report. Each kind is its own exported type so
// callers can discriminate with errors.As instead of parsing strings.
package lexerr

import "fmt"

// SyntaxError reports a shift-reduce precedence violation or otherwise
// malformed regex source.
type SyntaxError struct {
	Position int
	LHSClass string
	RHSClass string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %q against %q", e.Position, e.LHSClass, e.RHSClass)
}

// UnknownMacro reports a {name} reference to a macro that was never defined.
type UnknownMacro struct{ Name string }

func (e *UnknownMacro) Error() string { return fmt.Sprintf("unknown macro %q", e.Name) }

// MacroRecursion reports a macro whose expansion refers back to itself.
type MacroRecursion struct{ Name string }

func (e *MacroRecursion) Error() string { return fmt.Sprintf("macro %q is recursively defined", e.Name) }

// UnknownUnicodeProperty reports an unresolvable \p{Name} / \P{Name} escape.
type UnknownUnicodeProperty struct{ Name string }

func (e *UnknownUnicodeProperty) Error() string {
	return fmt.Sprintf("unknown unicode property %q", e.Name)
}

// InvalidEscape reports a malformed backslash escape.
type InvalidEscape struct{ Position int }

func (e *InvalidEscape) Error() string {
	return fmt.Sprintf("invalid escape sequence at position %d", e.Position)
}

// EmptyCharacterClass reports a bracket expression with no members, when the
// tokenizer flags do not permit one.
type EmptyCharacterClass struct{ Position int }

func (e *EmptyCharacterClass) Error() string {
	return fmt.Sprintf("empty character class at position %d", e.Position)
}

// RepeatOutOfRange reports a {n,m} repetition with n > m.
type RepeatOutOfRange struct{ Min, Max int }

func (e *RepeatOutOfRange) Error() string {
	return fmt.Sprintf("repeat count out of range: {%d,%d}", e.Min, e.Max)
}

// EmptyRule reports a regex source string with no tokens.
type EmptyRule struct{ RuleIndex int }

func (e *EmptyRule) Error() string {
	return fmt.Sprintf("empty rule at index %d", e.RuleIndex)
}

// EmptyLexerState reports a start-state with zero rules attached.
type EmptyLexerState struct{ State string }

func (e *EmptyLexerState) Error() string {
	return fmt.Sprintf("lexer state %q has no rules", e.State)
}

// ZeroLengthMatch reports a rule that can match the empty string, which is
// fatal unless the caller set the MatchZeroLen flag.
type ZeroLengthMatch struct{ RuleSource string }

func (e *ZeroLengthMatch) Error() string {
	return fmt.Sprintf("rule %q can match zero-length input", e.RuleSource)
}

// RuleSuppressed reports a rule that is dominated by an earlier rule and can
// never produce a terminal state, which is fatal unless the caller set the
// AllowSuppressedRules flag.
type RuleSuppressed struct {
	RuleIndex  int
	RuleSource string
}

func (e *RuleSuppressed) Error() string {
	return fmt.Sprintf("rule %d (%q) is suppressed by an earlier rule", e.RuleIndex, e.RuleSource)
}

// AlphabetOverflow reports that the chosen id type cannot hold the computed
// alphabet width or DFA row count.
type AlphabetOverflow struct{ Detail string }

func (e *AlphabetOverflow) Error() string { return "alphabet overflow: " + e.Detail }

// StateStackUnderflow reports a runtime pop() against an empty start-state
// stack.
type StateStackUnderflow struct{}

func (e *StateStackUnderflow) Error() string { return "state stack underflow" }

// UnknownState reports a next-state or push-state name that was never
// registered with Rules.NewState. Not one of the core's named error kinds,
// but the same discriminable-by-errors.As idiom: the rule-definition
// surface needs some way to reject a typo'd state name.
type UnknownState struct{ Name string }

func (e *UnknownState) Error() string { return fmt.Sprintf("unknown lexer state %q", e.Name) }

// DuplicateState reports a second Rules.NewState call for a name already
// registered.
type DuplicateState struct{ Name string }

func (e *DuplicateState) Error() string { return fmt.Sprintf("lexer state %q already declared", e.Name) }

// InvalidUtf reports malformed bytes/words seen by a codec adapter.
type InvalidUtf struct{ Offset int }

func (e *InvalidUtf) Error() string {
	return fmt.Sprintf("invalid UTF input at offset %d", e.Offset)
}

// TruncatedUtf reports a codec adapter reaching end-of-input in the middle of
// a multi-unit sequence.
type TruncatedUtf struct{ Offset int }

func (e *TruncatedUtf) Error() string {
	return fmt.Sprintf("truncated UTF sequence at offset %d", e.Offset)
}
