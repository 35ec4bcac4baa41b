// Package unicodedata resolves the Unicode property and case-fold queries
// the regex tokenizer needs for \p{Name}, \P{Name} and case-insensitive
// matching, without generating tables from the Unicode Character Database
// itself — that generation step is an external collaborator per the core
// spec. Category and script tables are the ones already bundled with the Go
// standard library (unicode.Categories, unicode.Scripts); named Unicode
// blocks have no standard-library table, so a small built-in set is
// provided with a registration hook for an embedder to extend.
package unicodedata

import "unicode"

// Property resolves a \p{Name} / \P{Name} argument to a range table. It
// checks general categories first (Lu, Nd, ...), then scripts (Greek,
// Han, ...), then the stdlib properties (White_Space, ...), then named
// blocks (InBasicLatin, ...), mirroring the lookup
// order real regex engines use for Unicode property escapes.
func Property(name string) (*unicode.RangeTable, bool) {
	if rt, ok := unicode.Categories[name]; ok {
		return rt, true
	}
	if rt, ok := unicode.Scripts[name]; ok {
		return rt, true
	}
	if rt, ok := unicode.Properties[name]; ok {
		return rt, true
	}
	if blockName, ok := stripBlockPrefix(name); ok {
		return Block(blockName)
	}
	return nil, false
}

func stripBlockPrefix(name string) (string, bool) {
	const prefix = "In"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):], true
	}
	return "", false
}

var blocks = map[string]*unicode.RangeTable{
	"BasicLatin":        {R16: []unicode.Range16{{Lo: 0x0000, Hi: 0x007F, Stride: 1}}},
	"Latin1Supplement":  {R16: []unicode.Range16{{Lo: 0x0080, Hi: 0x00FF, Stride: 1}}},
	"LatinExtendedA":    {R16: []unicode.Range16{{Lo: 0x0100, Hi: 0x017F, Stride: 1}}},
	"GreekAndCoptic":    {R16: []unicode.Range16{{Lo: 0x0370, Hi: 0x03FF, Stride: 1}}},
	"Cyrillic":          {R16: []unicode.Range16{{Lo: 0x0400, Hi: 0x04FF, Stride: 1}}},
	"Arabic":            {R16: []unicode.Range16{{Lo: 0x0600, Hi: 0x06FF, Stride: 1}}},
	"Hiragana":          {R16: []unicode.Range16{{Lo: 0x3040, Hi: 0x309F, Stride: 1}}},
	"Katakana":          {R16: []unicode.Range16{{Lo: 0x30A0, Hi: 0x30FF, Stride: 1}}},
	"CJKUnifiedIdeographs": {R16: []unicode.Range16{{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}}},
}

// Block resolves a bare block name (without the "In" prefix) to a range
// table.
func Block(name string) (*unicode.RangeTable, bool) {
	rt, ok := blocks[name]
	return rt, ok
}

// RegisterBlock extends the built-in block table, for embedders that need
// Unicode blocks beyond the small default set.
func RegisterBlock(name string, lo, hi rune) {
	blocks[name] = &unicode.RangeTable{
		R32: []unicode.Range32{{Lo: uint32(lo), Hi: uint32(hi), Stride: 1}},
	}
}

// FoldOrbit returns every code point that case-folds to the same value as r,
// r included, using the standard library's simple case-fold cycle
// (unicode.SimpleFold). This is the "bundled Unicode fold table" the spec
// calls for; rather than embedding a second copy of the table as static
// data, it is derived on demand from the one the standard library already
// carries.
func FoldOrbit(r rune) []rune {
	out := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		out = append(out, f)
	}
	return out
}
