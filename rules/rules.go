// Package rules implements the external rule-definition surface described
// in §6: a Rules object that an embedder (CLI, config loader, or any other
// collaborator outside the core) populates with start-states, macros and
// regex rules, then compiles with Build into a *machine.StateMachine.
//
// Build is the glue the core's four subsystems do not provide on their
// own: it tokenizes every rule, parses each start-state's rules into one
// combined syntax tree over a single shared charset universe (so every
// start-state's DFA shares the same alphabet columns, per §3's
// PartitionedAlphabet), applies the per-state BOL fix-up and the
// zero-length/suppression guards from §4.2/§4.5, and hands the resulting
// tables to machine.Build.
package rules

import (
	"fmt"

	"lexgen/dfa"
	"lexgen/lexerr"
	"lexgen/lexid"
	"lexgen/machine"
	"lexgen/parse"
	"lexgen/syntax"
	"lexgen/tokenize"
)

// Flags is the bitmask of regex/build options §6 describes (icase,
// dot_not_newline, dot_not_cr_lf, skip_ws, match_zero_len,
// allow_suppressed_rules, compressed). It is tokenize.Flags under the name
// the external surface uses, since the same bits govern both tokenizing
// and the build-time guards.
type Flags = tokenize.Flags

const (
	ICase                = tokenize.ICase
	DotNotNewline        = tokenize.DotNotNewline
	DotNotCRLF           = tokenize.DotNotCRLF
	SkipWS               = tokenize.SkipWS
	MatchZeroLen         = tokenize.MatchZeroLen
	AllowSuppressedRules = tokenize.AllowSuppressedRules
	Compressed           = tokenize.Compressed
)

// Wildcard is the state name that attaches a rule to every start-state,
// whether declared before or after the Push call, rather than one state in
// particular.
const Wildcard = "*"

// Initial is the name Rules pre-declares as start-state 0, per §3's
// invariant that start-state 0 is INITIAL.
const Initial = "INITIAL"

// RuleSpec is one rule's full declaration, the union of every field the
// §6 push() variants (plain, +user_id, +push_state_name, +pop_flag) can
// set. NextState and PushState name start-states; an empty NextState
// means "stay in the declaring state", or, for a rule that pushes, "go to
// PushState". RuleID is normally nonzero, but 0 is used by convention for
// a skip rule (e.g. "\s+" => 0-skip); the scanner still returns its
// matches as id-0 tokens. It is freely usable as a RuleID, just not
// distinguishable from the end-of-input sentinel (see
// lookup.MatchResult.IsEOI) unless lexeme length is also checked.
type RuleSpec struct {
	State     string
	Regex     string
	RuleID    lexid.ID
	UserID    lexid.ID
	NextState string
	PushState string
	PopFlag   bool
}

type ruleRecord struct {
	spec RuleSpec
	decl int
}

// Rules is the mutable rule-definition surface. The zero value is not
// usable; construct with New.
type Rules struct {
	stateNames []string
	stateIndex map[string]int
	records    []ruleRecord
	macros     *tokenize.MacroTable
	flags      Flags
	declCount  int
}

// New returns a Rules with start-state 0 pre-declared as INITIAL, per the
// core's start-state invariant.
func New() *Rules {
	r := &Rules{stateIndex: make(map[string]int)}
	r.stateNames = append(r.stateNames, Initial)
	r.stateIndex[Initial] = 0
	r.macros = tokenize.NewMacroTable()
	return r
}

// NewState registers name as an additional start-state and returns its id.
// Declaring the same name twice is an error.
func (r *Rules) NewState(name string) (lexid.ID, error) {
	if _, exists := r.stateIndex[name]; exists {
		return lexid.None, &lexerr.DuplicateState{Name: name}
	}
	id := lexid.ID(len(r.stateNames))
	r.stateNames = append(r.stateNames, name)
	r.stateIndex[name] = int(id)
	return id, nil
}

// StateID resolves a start-state name to its id.
func (r *Rules) StateID(name string) (lexid.ID, bool) {
	id, ok := r.stateIndex[name]
	if !ok {
		return lexid.None, false
	}
	return lexid.ID(id), true
}

// InsertMacro records name as expanding to regex. A macro must be defined
// before it is referenced by a rule or by another macro; since expansion
// happens lazily inside Build (after every InsertMacro/Push call has
// already run), this is satisfied automatically except for a name that is
// genuinely never defined, which still surfaces lexerr.UnknownMacro from
// the tokenizer.
func (r *Rules) InsertMacro(name, regex string) {
	r.macros.Define(name, regex)
}

// SetFlags installs the bitmask governing every rule's tokenizing and the
// build-time guards (zero-length, suppression, compressed alphabet).
func (r *Rules) SetFlags(flags Flags) {
	r.flags = flags
}

// Flags returns the currently installed flag bitmask.
func (r *Rules) Flags() Flags { return r.flags }

// Push registers the plain push(state, regex, rule_id, next_state) variant:
// UserID defaults to RuleID, no push-state, no pop.
func (r *Rules) Push(state, regex string, ruleID lexid.ID, nextState string) error {
	return r.PushRule(RuleSpec{State: state, Regex: regex, RuleID: ruleID, UserID: ruleID, NextState: nextState})
}

// PushUserID registers a rule carrying a distinct user-supplied id
// alongside its RuleID.
func (r *Rules) PushUserID(state, regex string, ruleID, userID lexid.ID, nextState string) error {
	return r.PushRule(RuleSpec{State: state, Regex: regex, RuleID: ruleID, UserID: userID, NextState: nextState})
}

// PushStack registers a rule that, on match, pushes the current start-state
// onto the runtime's state stack before switching to pushState and then to
// nextState (§4.7's push/pop semantics).
func (r *Rules) PushStack(state, regex string, ruleID lexid.ID, pushState, nextState string) error {
	return r.PushRule(RuleSpec{State: state, Regex: regex, RuleID: ruleID, UserID: ruleID, PushState: pushState, NextState: nextState})
}

// PushPop registers a rule that, on match, pops the runtime's state stack
// instead of following a next-state.
func (r *Rules) PushPop(state, regex string, ruleID lexid.ID) error {
	return r.PushRule(RuleSpec{State: state, Regex: regex, RuleID: ruleID, UserID: ruleID, PopFlag: true})
}

// PushRule is the general entry point every convenience variant above
// forwards to: it just records spec, in declaration order, for Build to
// consume later. It performs no validation itself (an unknown NextState or
// a State neither Wildcard nor yet declared is only caught by Build, since
// Push and NewState may be interleaved in either order).
func (r *Rules) PushRule(spec RuleSpec) error {
	r.declCount++
	r.records = append(r.records, ruleRecord{spec: spec, decl: r.declCount})
	return nil
}

// effectiveRules returns, in declaration order, every rule that applies to
// the start-state named name: rules pushed directly at name, plus every
// Wildcard rule regardless of when it was declared relative to name.
func (r *Rules) effectiveRules(name string) []ruleRecord {
	var out []ruleRecord
	for _, rec := range r.records {
		if rec.spec.State == name || rec.spec.State == Wildcard {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Rules) resolveState(name, current string) (lexid.ID, error) {
	if name == "" {
		id, _ := r.StateID(current)
		return id, nil
	}
	id, ok := r.StateID(name)
	if !ok {
		return lexid.None, &lexerr.UnknownState{Name: name}
	}
	return id, nil
}

// defaultNextState resolves an unspecified NextState per §4.7: "push
// state, switch to push_state, then switch to next_state" only does
// something useful once next_state is given, so an omitted one defaults to
// wherever the rule already lands — the state it just pushed into, if any,
// or effectiveState (the concrete start-state this rule is currently being
// compiled into, never the Wildcard name it may have been declared under)
// otherwise. A caller that wants a push rule to immediately transition past
// the pushed-to state still can, by naming NextState explicitly.
func defaultNextState(spec RuleSpec, effectiveState string) string {
	if spec.NextState != "" {
		return spec.NextState
	}
	if spec.PushState != "" {
		return spec.PushState
	}
	return effectiveState
}

type stateBuild struct {
	name     string
	tree     *syntax.Tree
	root     syntax.NodeRef
	declared []dfa.RuleDecl
	hasBOL   bool
}

func applyBOLFixup(tree *syntax.Tree, root syntax.NodeRef) syntax.NodeRef {
	bol := tree.NewLeaf(syntax.SymbolBOL, lexid.None, syntax.GreedyYes)
	null := tree.NewLeaf(syntax.SymbolNull, lexid.None, syntax.GreedyYes)
	sel := tree.NewSelection(bol, null)
	return tree.NewSequence(sel, root)
}

// Build compiles every declared start-state's rules into a
// *machine.StateMachine. Every rule is tokenized and parsed into its own
// start-state's syntax.Tree, but all start-states intern their charsets
// into one shared parse.CharsetMap, so the alphabet partition dfa.Build
// computes from that map is identical across every start-state, which is
// what lets machine.Build share one alphabet lookup for all of them.
func (r *Rules) Build() (*machine.StateMachine, error) {
	charsets := parse.NewCharsetMap()
	builds := make([]stateBuild, 0, len(r.stateNames))

	for _, name := range r.stateNames {
		records := r.effectiveRules(name)
		if len(records) == 0 {
			return nil, &lexerr.EmptyLexerState{State: name}
		}

		tree := syntax.NewTree()
		var root syntax.NodeRef = syntax.NullRef
		var declared []dfa.RuleDecl
		hasBOL := false

		for _, rec := range records {
			toks, feat, err := tokenize.Tokenize(rec.spec.Regex, r.flags, r.macros)
			if err != nil {
				return nil, fmt.Errorf("state %q, rule %q: %w", name, rec.spec.Regex, err)
			}
			if len(toks) == 2 { // BEGIN, END only: no operand at all
				return nil, &lexerr.EmptyRule{RuleIndex: rec.decl}
			}
			if feat.BOL {
				hasBOL = true
			}

			nextID, err := r.resolveState(defaultNextState(rec.spec, name), name)
			if err != nil {
				return nil, fmt.Errorf("state %q, rule %q: %w", name, rec.spec.Regex, err)
			}
			pushID := lexid.None
			if rec.spec.PushState != "" {
				pushID, err = r.resolveState(rec.spec.PushState, name)
				if err != nil {
					return nil, fmt.Errorf("state %q, rule %q: %w", name, rec.spec.Regex, err)
				}
			}

			meta := parse.RuleMeta{
				RuleID:    rec.spec.RuleID,
				UserID:    rec.spec.UserID,
				NextState: nextID,
				PushState: pushID,
				PopFlag:   rec.spec.PopFlag,
			}

			res, err := parse.Parse(toks, tree, charsets, meta)
			if err != nil {
				return nil, fmt.Errorf("state %q, rule %q: %w", name, rec.spec.Regex, err)
			}
			if res.BodyNullable && r.flags&tokenize.MatchZeroLen == 0 {
				return nil, &lexerr.ZeroLengthMatch{RuleSource: rec.spec.Regex}
			}

			if root == syntax.NullRef {
				root = res.Root
			} else {
				root = tree.NewSelection(root, res.Root)
			}
			declared = append(declared, dfa.RuleDecl{ID: rec.spec.RuleID, Source: rec.spec.Regex})
		}

		if hasBOL {
			root = applyBOLFixup(tree, root)
		}

		builds = append(builds, stateBuild{name: name, tree: tree, root: root, declared: declared, hasBOL: hasBOL})
	}

	allowSuppressed := r.flags&tokenize.AllowSuppressedRules != 0
	startStates := make([]machine.StartState, 0, len(builds))
	features := machine.Features{}

	for _, b := range builds {
		table, err := dfa.Build(b.root, b.tree, charsets, b.declared, allowSuppressed)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", b.name, err)
		}
		startStates = append(startStates, machine.StartState{Name: b.name, Table: table})
		if b.hasBOL {
			features.BOL = true
		}
	}

	compressed := r.flags&tokenize.Compressed != 0
	return machine.Build(startStates, features, compressed), nil
}
