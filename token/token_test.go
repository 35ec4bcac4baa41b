package token

import (
	"testing"

	"lexgen/charset"
)

func TestIsAbstemious(t *testing.T) {
	abstemious := []Type{AOPT, AZEROORMORE, AONEORMORE, AREPEATN}
	greedy := []Type{OPT, ZEROORMORE, ONEORMORE, REPEATN, CHARSET, OR}

	for _, ty := range abstemious {
		if !ty.IsAbstemious() {
			t.Errorf("%v.IsAbstemious() = false, want true", ty)
		}
	}
	for _, ty := range greedy {
		if ty.IsAbstemious() {
			t.Errorf("%v.IsAbstemious() = true, want false", ty)
		}
	}
}

func TestString(t *testing.T) {
	if got := CHARSET.String(); got != "CHARSET" {
		t.Errorf("CHARSET.String() = %q", got)
	}
	if got := Type(200).String(); got != "UNKNOWN" {
		t.Errorf("Type(200).String() = %q, want UNKNOWN", got)
	}
}

func TestTokenEqual(t *testing.T) {
	a := Token{Type: CHARSET, Charset: charset.FromRange('a', 'z'), Greedy: true}
	b := Token{Type: CHARSET, Charset: charset.FromRange('a', 'z'), Greedy: true}
	c := Token{Type: CHARSET, Charset: charset.FromRange('a', 'y'), Greedy: true}

	if !a.Equal(b) {
		t.Errorf("expected a.Equal(b)")
	}
	if a.Equal(c) {
		t.Errorf("did not expect a.Equal(c)")
	}

	d := Token{Type: REPEATN, Extra: "2,4"}
	e := Token{Type: REPEATN, Extra: "2,4"}
	f := Token{Type: REPEATN, Extra: "2,5"}
	if !d.Equal(e) {
		t.Errorf("expected d.Equal(e)")
	}
	if d.Equal(f) {
		t.Errorf("did not expect d.Equal(f)")
	}
}
