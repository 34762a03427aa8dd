package cmis

import (
	"fmt"
	"strings"
)

// EscapeMode selects how backslash escapes inside a quoted string are
// interpreted.
type EscapeMode int

const (
	// EscapeLiteral unescapes \' and \\.
	EscapeLiteral EscapeMode = iota
	// EscapeLike unescapes \' and keeps \%, \_ and \\ for the LIKE matcher.
	EscapeLike
	// EscapeContains unescapes \' and keeps \\ for the FTS lexer. Outside
	// strict mode any escaped character is taken literally.
	EscapeContains
)

// Unescape removes the surrounding quotes from a QUOTED_STRING token text and
// applies mode to its escapes.
func Unescape(quoted string, mode EscapeMode, strict bool) (string, error) {
	s := quoted
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for i, c := range s {
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				b.WriteRune(c)
			}
			continue
		}
		escaped = false

		switch {
		case c == '\'':
			b.WriteRune(c)
		case mode == EscapeLike && (c == '%' || c == '_' || c == '\\'):
			b.WriteByte('\\')
			b.WriteRune(c)
		case mode == EscapeContains && c == '\\' && strict:
			b.WriteString(`\\`)
		case mode == EscapeContains && !strict:
			b.WriteRune(c)
		case mode == EscapeLiteral && c == '\\':
			b.WriteRune(c)
		default:
			return "", fmt.Errorf("unsupported escape pattern in <%s> at position %d", s, i)
		}
	}
	if escaped {
		return "", fmt.Errorf("escape character at end of string %s", s)
	}
	return b.String(), nil
}
