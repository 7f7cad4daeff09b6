package position

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 code unit offset, the unit the
// language server protocol counts columns in, to a byte offset in the
// UTF-8 string s. Offsets past the end of s clamp to len(s); an offset
// that lands between the two units of a surrogate pair clamps to the
// start of that rune.
func UTF16ToByteOffset(s string, col int) int {
	if col <= 0 {
		return 0
	}
	units, off := 0, 0
	for off < len(s) && units < col {
		r, size := utf8.DecodeRuneInString(s[off:])
		if r == utf8.RuneError && size == 1 {
			// invalid byte, counts as one unit
			off++
			units++
			continue
		}
		n := utf16.RuneLen(r)
		if n == 2 && units+1 == col {
			break
		}
		units += n
		off += size
	}
	return off
}

// StringLengthUTF16 returns the length of s in UTF-16 code units.
// Invalid bytes decode as the replacement character and count as one.
func StringLengthUTF16(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
