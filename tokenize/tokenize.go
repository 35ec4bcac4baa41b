// Package tokenize turns one rule's regex source text into the linear
// token stream the recursive-descent parser consumes, and prunes vacuous
// trailing lazy quantifiers out of that stream before the parser ever sees
// them. An Aho-Corasick automaton (github.com/coregx/ahocorasick) screens a
// bracket expression's "[:name:]" text for any known POSIX class name
// before the name is resolved by comparing it against the class table,
// mirroring how coregx-coregex reaches for the same library whenever it
// needs fast multi-pattern membership tests.
package tokenize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"

	"lexgen/charset"
	"lexgen/lexerr"
	"lexgen/token"
	"lexgen/unicodedata"
)

// Flags is the bitmask of regex compilation options a caller can request.
type Flags uint16

const (
	ICase Flags = 1 << iota
	DotNotNewline
	DotNotCRLF
	SkipWS
	MatchZeroLen
	AllowSuppressedRules
	Compressed
)

// Features records the aggregate, non-structural properties a tokenized
// rule turned out to have, which the caller folds together across every
// rule in a start-state (e.g. the BOL pseudo-column fix-up is keyed off
// whether *any* rule in the state used '^', not just this one).
type Features struct {
	BOL bool
}

// MacroTable holds named regex fragments that {NAME} references expand to.
// Macros must be defined before they are first referenced; recursive
// definitions are rejected at expansion time via the active-name stack
// carried on the tokenizer.
type MacroTable struct {
	defs map[string]string
}

// NewMacroTable returns an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{defs: make(map[string]string)}
}

// Define records name as expanding to regex. Redefining a name overwrites
// the previous definition.
func (m *MacroTable) Define(name, regex string) {
	m.defs[name] = regex
}

func (m *MacroTable) lookup(name string) (string, bool) {
	s, ok := m.defs[name]
	return s, ok
}

var posixClasses = buildPosixAutomaton()

type posixClass struct {
	name string
	set  func() *charset.Set
}

var posixClassTable = []posixClass{
	{"alpha", func() *charset.Set { return rangesSet('A', 'Z', 'a', 'z') }},
	{"digit", func() *charset.Set { return charset.FromRange('0', '9') }},
	{"alnum", func() *charset.Set { return rangesSet('A', 'Z', 'a', 'z', '0', '9') }},
	{"upper", func() *charset.Set { return charset.FromRange('A', 'Z') }},
	{"lower", func() *charset.Set { return charset.FromRange('a', 'z') }},
	{"space", func() *charset.Set { return runesSet(' ', '\t', '\n', '\r', '\f', '\v') }},
	{"blank", func() *charset.Set { return runesSet(' ', '\t') }},
	{"punct", func() *charset.Set {
		s := rangesSet('!', '/', ':', '@', '[', '`', '{', '~')
		return s
	}},
	{"cntrl", func() *charset.Set { return rangesSet(0x00, 0x1f, 0x7f, 0x7f) }},
	{"print", func() *charset.Set { return charset.FromRange(0x20, 0x7e) }},
	{"graph", func() *charset.Set { return charset.FromRange(0x21, 0x7e) }},
	{"xdigit", func() *charset.Set { return rangesSet('0', '9', 'A', 'F', 'a', 'f') }},
}

func buildPosixAutomaton() *ahocorasick.Automaton {
	b := ahocorasick.NewBuilder()
	for _, c := range posixClassTable {
		b.AddPattern([]byte(c.name))
	}
	auto, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("tokenize: building posix class automaton: %v", err))
	}
	return auto
}

func rangesSet(pairs ...rune) *charset.Set {
	s := charset.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.AddRange(pairs[i], pairs[i+1])
	}
	return s
}

func runesSet(rs ...rune) *charset.Set {
	s := charset.New()
	for _, r := range rs {
		s.AddRune(r)
	}
	return s
}

func posixClassSet(name string) (*charset.Set, bool) {
	if !posixClasses.IsMatch([]byte(name)) {
		return nil, false
	}
	for _, c := range posixClassTable {
		if c.name == name {
			return c.set(), true
		}
	}
	return nil, false
}

// tokenizer is the scanning state for one Tokenize (or nested macro
// expansion) call.
type tokenizer struct {
	src    []rune
	pos    int
	flags  Flags
	macros *MacroTable
	active map[string]bool
	feat   Features
}

// Tokenize converts src into the token stream for one rule, framed by
// BEGIN ... END, with vacuous trailing lazy quantifiers already pruned.
func Tokenize(src string, flags Flags, macros *MacroTable) ([]token.Token, Features, error) {
	t := &tokenizer{src: []rune(src), flags: flags, macros: macros, active: map[string]bool{}}

	body, idxs, err := t.scanBody(t.src)
	if err != nil {
		return nil, t.feat, err
	}

	out := make([]token.Token, 0, len(body)+2)
	out = append(out, token.Token{Type: token.BEGIN})
	out = append(out, body...)
	out = append(out, token.Token{Type: token.END})

	offset := make([]int, len(idxs))
	for i, ix := range idxs {
		offset[i] = ix + 1
	}

	out = PruneAbstemious(out, offset)
	return out, t.feat, nil
}

// scanBody tokenizes src with no BEGIN/END framing, returning the abstemious
// operator indexes relative to the returned slice itself.
func (t *tokenizer) scanBody(src []rune) ([]token.Token, []int, error) {
	save := t.src
	savePos := t.pos
	t.src = src
	t.pos = 0
	defer func() { t.src, t.pos = save, savePos }()

	var out []token.Token
	var idxs []int

	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch c {
		case '(':
			t.pos++
			out = append(out, token.Token{Type: token.OPENPAREN})
		case ')':
			t.pos++
			out = append(out, token.Token{Type: token.CLOSEPAREN})
		case '|':
			t.pos++
			out = append(out, token.Token{Type: token.OR})
		case '^':
			t.pos++
			out = append(out, token.Token{Type: token.BOL})
			t.feat.BOL = true
		case '$':
			t.pos++
			out = append(out, token.Token{Type: token.EOL})
		case '?', '*', '+':
			t.pos++
			abstemious := t.eatQuestion()
			out = append(out, t.dupToken(c, "", abstemious))
			idxs = append(idxs, len(out)-1)
		case '{':
			if tok, ok, err := t.tryRepeatCount(); err != nil {
				return nil, nil, err
			} else if ok {
				out = append(out, tok)
				idxs = append(idxs, len(out)-1)
				continue
			}
			exp, err := t.scanMacroRef()
			if err != nil {
				return nil, nil, err
			}
			base := len(out)
			out = append(out, exp.tokens...)
			for _, mi := range exp.abstemious {
				idxs = append(idxs, base+mi)
			}
		default:
			set, macroTokens, err := t.scanOperand()
			if err != nil {
				return nil, nil, err
			}
			if macroTokens != nil {
				base := len(out)
				out = append(out, macroTokens.tokens...)
				for _, mi := range macroTokens.abstemious {
					idxs = append(idxs, base+mi)
				}
				continue
			}
			out = append(out, token.Token{Type: token.CHARSET, Charset: set})
		}
	}

	return out, idxs, nil
}

type macroExpansion struct {
	tokens     []token.Token
	abstemious []int
}

// scanOperand consumes one CHARSET-producing operand at the current
// position: a literal, an escape, a bracket expression, or '.'.
func (t *tokenizer) scanOperand() (*charset.Set, *macroExpansion, error) {
	c := t.src[t.pos]
	switch c {
	case '.':
		t.pos++
		return t.dotSet(), nil, nil
	case '\\':
		set, err := t.scanEscape()
		if err != nil {
			return nil, nil, err
		}
		return set, nil, nil
	case '[':
		set, err := t.scanBracket()
		if err != nil {
			return nil, nil, err
		}
		return set, nil, nil
	default:
		t.pos++
		return t.foldLiteral(c), nil, nil
	}
}

func (t *tokenizer) foldLiteral(r rune) *charset.Set {
	s := charset.FromRune(r)
	if t.flags&ICase != 0 {
		s = s.Fold(unicodedata.FoldOrbit)
	}
	return s
}

func (t *tokenizer) dotSet() *charset.Set {
	s := charset.FromRange(0, charset.MaxCodePoint)
	if t.flags&DotNotNewline != 0 {
		s = s.Subtract(charset.FromRune('\n'))
	}
	if t.flags&DotNotCRLF != 0 {
		s = s.Subtract(charset.FromRune('\r'))
	}
	return s
}

// eatQuestion consumes a trailing '?' marking the lazy/abstemious variant
// of the operator just scanned, and reports whether it was present.
func (t *tokenizer) eatQuestion() bool {
	if t.pos < len(t.src) && t.src[t.pos] == '?' {
		t.pos++
		return true
	}
	return false
}

func (t *tokenizer) dupToken(op rune, extra string, abstemious bool) token.Token {
	switch op {
	case '?':
		if abstemious {
			return token.Token{Type: token.AOPT, Extra: extra}
		}
		return token.Token{Type: token.OPT, Extra: extra}
	case '*':
		if abstemious {
			return token.Token{Type: token.AZEROORMORE, Extra: extra}
		}
		return token.Token{Type: token.ZEROORMORE, Extra: extra}
	case '+':
		if abstemious {
			return token.Token{Type: token.AONEORMORE, Extra: extra}
		}
		return token.Token{Type: token.ONEORMORE, Extra: extra}
	default:
		if abstemious {
			return token.Token{Type: token.AREPEATN, Extra: extra}
		}
		return token.Token{Type: token.REPEATN, Extra: extra}
	}
}

// tryRepeatCount attempts to parse a '{n}' / '{n,}' / '{n,m}' repeat count
// starting at the current '{'. If the text does not parse as a repeat
// count (e.g. it is a macro reference instead) ok is false and the
// position is left unchanged.
func (t *tokenizer) tryRepeatCount() (token.Token, bool, error) {
	p := t.pos + 1
	n, p2, ok := scanDigits(t.src, p)
	if !ok {
		return token.Token{}, false, nil
	}
	p = p2

	m := n
	unbounded := false
	if p < len(t.src) && t.src[p] == ',' {
		p++
		if m2, p3, ok := scanDigits(t.src, p); ok {
			m = m2
			p = p3
		} else {
			unbounded = true
		}
	}
	if p >= len(t.src) || t.src[p] != '}' {
		return token.Token{}, false, nil
	}
	p++

	if !unbounded && n > m {
		return token.Token{}, false, &lexerr.RepeatOutOfRange{Min: n, Max: m}
	}

	t.pos = p
	abstemious := t.eatQuestion()

	switch {
	case n == 0 && unbounded:
		return t.dupToken('*', "", abstemious), true, nil
	case n == 0 && m == 1 && !unbounded:
		return t.dupToken('?', "", abstemious), true, nil
	case n == 1 && unbounded:
		return t.dupToken('+', "", abstemious), true, nil
	default:
		extra := strconv.Itoa(n) + ","
		if !unbounded {
			extra += strconv.Itoa(m)
		}
		return t.dupToken(0, extra, abstemious), true, nil
	}
}

func scanDigits(src []rune, p int) (int, int, bool) {
	start := p
	for p < len(src) && src[p] >= '0' && src[p] <= '9' {
		p++
	}
	if p == start {
		return 0, start, false
	}
	n, err := strconv.Atoi(string(src[start:p]))
	if err != nil {
		return 0, start, false
	}
	return n, p, true
}

// scanMacroRef consumes a '{NAME}' macro reference and recursively
// tokenizes the macro's body, wrapping the result in implicit parens if it
// expanded to more than one significant token.
func (t *tokenizer) scanMacroRef() (*macroExpansion, error) {
	pos0 := t.pos
	p := t.pos + 1
	start := p
	for p < len(t.src) && t.src[p] != '}' {
		p++
	}
	if p >= len(t.src) {
		return nil, &lexerr.SyntaxError{Position: pos0, LHSClass: "MACRO", RHSClass: "EOF"}
	}
	name := string(t.src[start:p])
	t.pos = p + 1

	body, ok := t.macros.lookup(name)
	if !ok {
		return nil, &lexerr.UnknownMacro{Name: name}
	}
	if t.active[name] {
		return nil, &lexerr.MacroRecursion{Name: name}
	}

	t.active[name] = true
	toks, idxs, err := t.scanBody([]rune(body))
	delete(t.active, name)
	if err != nil {
		return nil, err
	}

	if len(toks) <= 1 {
		return &macroExpansion{tokens: toks, abstemious: idxs}, nil
	}

	wrapped := make([]token.Token, 0, len(toks)+2)
	wrapped = append(wrapped, token.Token{Type: token.OPENPAREN})
	wrapped = append(wrapped, toks...)
	wrapped = append(wrapped, token.Token{Type: token.CLOSEPAREN})
	shifted := make([]int, len(idxs))
	for i, ix := range idxs {
		shifted[i] = ix + 1
	}
	return &macroExpansion{tokens: wrapped, abstemious: shifted}, nil
}

// scanEscape consumes a backslash escape and returns the CharSet it
// denotes.
func (t *tokenizer) scanEscape() (*charset.Set, error) {
	pos0 := t.pos
	t.pos++ // consume '\'
	if t.pos >= len(t.src) {
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
	c := t.src[t.pos]
	t.pos++

	switch c {
	case 'n':
		return charset.FromRune('\n'), nil
	case 't':
		return charset.FromRune('\t'), nil
	case 'r':
		return charset.FromRune('\r'), nil
	case 'f':
		return charset.FromRune('\f'), nil
	case 'v':
		return charset.FromRune('\v'), nil
	case 'a':
		return charset.FromRune('\a'), nil
	case 'b':
		return charset.FromRune('\b'), nil
	case '0':
		return charset.FromRune(0), nil
	case 'd':
		return charset.FromRange('0', '9'), nil
	case 'D':
		return charset.FromRange('0', '9').Complement(), nil
	case 's':
		return runesSet(' ', '\t', '\n', '\r', '\f', '\v'), nil
	case 'S':
		return runesSet(' ', '\t', '\n', '\r', '\f', '\v').Complement(), nil
	case 'w':
		return rangesSet('A', 'Z', 'a', 'z', '0', '9', '_', '_'), nil
	case 'W':
		return rangesSet('A', 'Z', 'a', 'z', '0', '9', '_', '_').Complement(), nil
	case 'x':
		return t.scanHexEscape(pos0)
	case 'p', 'P':
		return t.scanUnicodeProperty(pos0, c == 'P')
	default:
		if strings.ContainsRune(".^$|()[]{}*+?\\/", c) || !isAlnum(c) {
			return t.foldLiteral(c), nil
		}
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (t *tokenizer) scanHexEscape(pos0 int) (*charset.Set, error) {
	if t.pos < len(t.src) && t.src[t.pos] == '{' {
		t.pos++
		start := t.pos
		for t.pos < len(t.src) && t.src[t.pos] != '}' {
			t.pos++
		}
		if t.pos >= len(t.src) {
			return nil, &lexerr.InvalidEscape{Position: pos0}
		}
		v, err := strconv.ParseInt(string(t.src[start:t.pos]), 16, 32)
		if err != nil {
			return nil, &lexerr.InvalidEscape{Position: pos0}
		}
		t.pos++
		return t.foldLiteral(rune(v)), nil
	}

	if t.pos+1 >= len(t.src) {
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
	v, err := strconv.ParseInt(string(t.src[t.pos:t.pos+2]), 16, 32)
	if err != nil {
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
	t.pos += 2
	return t.foldLiteral(rune(v)), nil
}

func (t *tokenizer) scanUnicodeProperty(pos0 int, negate bool) (*charset.Set, error) {
	if t.pos >= len(t.src) || t.src[t.pos] != '{' {
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
	t.pos++
	start := t.pos
	for t.pos < len(t.src) && t.src[t.pos] != '}' {
		t.pos++
	}
	if t.pos >= len(t.src) {
		return nil, &lexerr.InvalidEscape{Position: pos0}
	}
	name := string(t.src[start:t.pos])
	t.pos++

	rt, ok := unicodedata.Property(name)
	if !ok {
		return nil, &lexerr.UnknownUnicodeProperty{Name: name}
	}
	set := rangeTableSet(rt)
	if negate {
		set = set.Complement()
	}
	if t.flags&ICase != 0 {
		set = set.Fold(unicodedata.FoldOrbit)
	}
	return set, nil
}

// rangeTableSet converts a standard library Unicode range table into a
// CharSet over the same code points.
func rangeTableSet(rt *unicode.RangeTable) *charset.Set {
	s := charset.New()
	for _, r16 := range rt.R16 {
		for lo := rune(r16.Lo); lo <= rune(r16.Hi); lo += rune(r16.Stride) {
			s.AddRune(lo)
			if r16.Stride == 0 {
				break
			}
		}
	}
	for _, r32 := range rt.R32 {
		for lo := rune(r32.Lo); lo <= rune(r32.Hi); lo += rune(r32.Stride) {
			s.AddRune(lo)
			if r32.Stride == 0 {
				break
			}
		}
	}
	return s
}

// scanBracket consumes a '[...]' or '[^...]' bracket expression.
func (t *tokenizer) scanBracket() (*charset.Set, error) {
	pos0 := t.pos
	t.pos++ // consume '['
	negate := false
	if t.pos < len(t.src) && t.src[t.pos] == '^' {
		negate = true
		t.pos++
	}

	set := charset.New()
	first := true
	for {
		if t.pos >= len(t.src) {
			return nil, &lexerr.SyntaxError{Position: pos0, LHSClass: "CHARSET", RHSClass: "EOF"}
		}
		if t.src[t.pos] == ']' && !first {
			t.pos++
			break
		}
		first = false

		if t.src[t.pos] == '[' && t.pos+1 < len(t.src) && t.src[t.pos+1] == ':' {
			cls, err := t.scanPosixClass(pos0)
			if err != nil {
				return nil, err
			}
			set = set.Union(cls)
			continue
		}

		lo, err := t.scanBracketAtom(pos0)
		if err != nil {
			return nil, err
		}
		if lo.isClass {
			set = set.Union(lo.class)
			continue
		}

		hi := lo.r
		if t.pos+1 < len(t.src) && t.src[t.pos] == '-' && t.src[t.pos+1] != ']' {
			t.pos++
			hiAtom, err := t.scanBracketAtom(pos0)
			if err != nil {
				return nil, err
			}
			if hiAtom.isClass {
				return nil, &lexerr.SyntaxError{Position: pos0, LHSClass: "RANGE", RHSClass: "CLASS"}
			}
			hi = hiAtom.r
		}
		set.AddRange(lo.r, hi)
	}

	if t.flags&ICase != 0 {
		set = set.Fold(unicodedata.FoldOrbit)
	}
	set.SetNegatable(negate)
	if negate {
		set = set.Complement()
	}
	if set.IsEmpty() {
		return nil, &lexerr.EmptyCharacterClass{Position: pos0}
	}
	return set, nil
}

type bracketAtom struct {
	r       rune
	isClass bool
	class   *charset.Set
}

func (t *tokenizer) scanBracketAtom(pos0 int) (bracketAtom, error) {
	c := t.src[t.pos]
	if c == '\\' {
		set, err := t.scanEscape()
		if err != nil {
			return bracketAtom{}, err
		}
		ranges := set.Ranges()
		if len(ranges) == 1 && ranges[0].Lo == ranges[0].Hi {
			return bracketAtom{r: ranges[0].Lo}, nil
		}
		return bracketAtom{isClass: true, class: set}, nil
	}
	t.pos++
	return bracketAtom{r: c}, nil
}

func (t *tokenizer) scanPosixClass(pos0 int) (*charset.Set, error) {
	start := t.pos
	t.pos += 2 // consume "[:"
	nameStart := t.pos
	for t.pos < len(t.src) && t.src[t.pos] != ':' {
		t.pos++
	}
	name := string(t.src[nameStart:t.pos])
	if t.pos+1 >= len(t.src) || t.src[t.pos] != ':' || t.src[t.pos+1] != ']' {
		t.pos = start
		return nil, &lexerr.SyntaxError{Position: pos0, LHSClass: "CHARSET", RHSClass: "POSIX"}
	}
	t.pos += 2

	set, ok := posixClassSet(name)
	if !ok {
		return nil, &lexerr.SyntaxError{Position: pos0, LHSClass: "CHARSET", RHSClass: "POSIX:" + name}
	}
	return set, nil
}
