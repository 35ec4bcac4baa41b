// Package ruledef loads the textual rule-definition format described in §6
// into a *rules.Rules. It sits beside the core, calling only the core's
// public rules API — it is not itself part of the four core subsystems and
// never bypasses them.
//
// A source file is a sequence of lines:
//
//	# comment
//	%x COMMENT
//	%flag icase skip_ws
//	DIGIT = [0-9]
//	INITIAL         {DIGIT}+        1
//	INITIAL         /\*             1 => push:COMMENT
//	COMMENT         \*/             2 <- pop
//	*               \s+             0
//
// Blank lines and lines starting with '#' are skipped. A rule line's first
// field is a comma-separated state list (or the Wildcard "*"), its second
// field is the regex source, and everything after that is the action,
// parsed with the small grammar in action.go. The regex field is taken
// literally as the line's second whitespace-delimited run of characters, so
// a pattern that needs to contain a literal space must escape it (`\ `) or
// put it in a bracket expression (`[ ]`); this is the same restriction
// classic lex-family tools place on their pattern column.
package ruledef

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lexgen/lexid"
	"lexgen/rules"
)

// Load reads a rule-definition file from src and returns the *rules.Rules
// it describes, ready for Build.
func Load(src io.Reader) (*rules.Rules, error) {
	r := rules.New()
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 4096), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := loadLine(r, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func loadLine(r *rules.Rules, line string) error {
	switch {
	case strings.HasPrefix(line, "%x"):
		return loadStateDecl(r, line)
	case strings.HasPrefix(line, "%flag"):
		return loadFlagDecl(r, line)
	}

	fields := strings.Fields(line)
	if len(fields) >= 2 && fields[1] == "=" {
		return loadMacro(r, fields)
	}
	return loadRule(r, fields)
}

func loadStateDecl(r *rules.Rules, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("%%x expects exactly one state name, got %q", line)
	}
	_, err := r.NewState(fields[1])
	return err
}

var flagBits = map[string]rules.Flags{
	"icase":                  rules.ICase,
	"dot_not_newline":        rules.DotNotNewline,
	"dot_not_cr_lf":          rules.DotNotCRLF,
	"skip_ws":                rules.SkipWS,
	"match_zero_len":         rules.MatchZeroLen,
	"allow_suppressed_rules": rules.AllowSuppressedRules,
	"compressed":             rules.Compressed,
}

func loadFlagDecl(r *rules.Rules, line string) error {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	flags := r.Flags()
	for _, name := range fields[1:] {
		bit, ok := flagBits[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown flag %q", name)
		}
		flags |= bit
	}
	r.SetFlags(flags)
	return nil
}

func loadMacro(r *rules.Rules, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("macro line needs a regex after '='")
	}
	r.InsertMacro(fields[0], strings.Join(fields[2:], ""))
	return nil
}

func loadRule(r *rules.Rules, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("rule line needs a state list, a pattern and an action, got %q", strings.Join(fields, " "))
	}
	states := strings.Split(fields[0], ",")
	pattern := fields[1]
	act, err := parseAction(strings.Join(fields[2:], " "))
	if err != nil {
		return fmt.Errorf("action %q: %w", strings.Join(fields[2:], " "), err)
	}

	spec := rules.RuleSpec{
		Regex:   pattern,
		RuleID:  lexid.ID(act.RuleID),
		UserID:  lexid.ID(act.RuleID),
		PopFlag: act.Pop,
	}
	if act.Push != nil {
		spec.PushState = act.Push.PushState
		spec.NextState = act.Push.NextState
	} else {
		spec.NextState = act.Next
	}

	for _, state := range states {
		state = strings.TrimSpace(state)
		s := spec
		s.State = state
		if err := r.PushRule(s); err != nil {
			return err
		}
	}
	return nil
}
