package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscapeSwiftString makes a user-supplied value safe to embed inside a
// Swift string literal. Backslashes, quotes and interpolation delimiters
// are escaped; control characters become \u{...} escapes. Values that are
// not valid UTF-8 cannot be represented in Swift source and are rejected.
func EscapeSwiftString(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("value is not valid UTF-8")
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\x00':
			b.WriteString(`\0`)
		default:
			// Remaining control characters and the Unicode line
			// separators would break the literal if emitted raw.
			if r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029' {
				fmt.Fprintf(&b, `\u{%X}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	return b.String(), nil
}
