// Package codec adapts caller-owned byte/word buffers into a single
// scalar-at-a-time decoding surface the scanner consumes, the way
// regexlib's lexer decodes one rune per step with utf8.DecodeRuneInString
// but generalized to UTF-8, UTF-16 and UTF-32 input.
package codec

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"lexgen/lexerr"
)

// Decoder decodes one code point at a time from an input buffer, reporting
// how many input units that code point consumed.
type Decoder interface {
	// Decode returns the next code point starting at offset and the
	// number of bytes it occupied (for UTF-16, 2 or 4; for UTF-32,
	// always 4). ok is false at end of input.
	Decode(offset int) (r rune, width int, ok bool, err error)
	// Len returns the total number of underlying units in the buffer.
	Len() int
}

// UTF8Decoder decodes a UTF-8 byte slice.
type UTF8Decoder struct{ Data []byte }

func (d UTF8Decoder) Len() int { return len(d.Data) }

func (d UTF8Decoder) Decode(offset int) (rune, int, bool, error) {
	if offset >= len(d.Data) {
		return 0, 0, false, nil
	}
	r, size := utf8.DecodeRune(d.Data[offset:])
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(d.Data[offset:]) {
			return 0, 0, false, &lexerr.TruncatedUtf{Offset: offset}
		}
		return 0, 0, false, &lexerr.InvalidUtf{Offset: offset}
	}
	return r, size, true, nil
}

// UTF16Decoder decodes a big-endian UTF-16 byte slice, handling surrogate
// pairs for astral code points.
type UTF16Decoder struct{ Data []byte }

func (d UTF16Decoder) Len() int { return len(d.Data) }

func (d UTF16Decoder) Decode(offset int) (rune, int, bool, error) {
	if offset >= len(d.Data) {
		return 0, 0, false, nil
	}
	if offset+2 > len(d.Data) {
		return 0, 0, false, &lexerr.TruncatedUtf{Offset: offset}
	}
	u0 := binary.BigEndian.Uint16(d.Data[offset:])
	if utf16.IsSurrogate(rune(u0)) {
		if offset+4 > len(d.Data) {
			return 0, 0, false, &lexerr.TruncatedUtf{Offset: offset}
		}
		u1 := binary.BigEndian.Uint16(d.Data[offset+2:])
		r := utf16.DecodeRune(rune(u0), rune(u1))
		if r == utf8.RuneError {
			return 0, 0, false, &lexerr.InvalidUtf{Offset: offset}
		}
		return r, 4, true, nil
	}
	return rune(u0), 2, true, nil
}

// UTF32Decoder decodes a big-endian UTF-32 byte slice: one 4-byte code
// point per step, with no surrogate handling needed.
type UTF32Decoder struct{ Data []byte }

func (d UTF32Decoder) Len() int { return len(d.Data) }

func (d UTF32Decoder) Decode(offset int) (rune, int, bool, error) {
	if offset >= len(d.Data) {
		return 0, 0, false, nil
	}
	if offset+4 > len(d.Data) {
		return 0, 0, false, &lexerr.TruncatedUtf{Offset: offset}
	}
	v := binary.BigEndian.Uint32(d.Data[offset:])
	r := rune(v)
	if r < 0 || r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, 0, false, &lexerr.InvalidUtf{Offset: offset}
	}
	return r, 4, true, nil
}
