// Package literal converts between Lua-style quoted string literals and the
// plain strings they denote.
package literal

import (
	"errors"
	"strings"
)

// ErrNotQuoted is returned by Decode when the input is not wrapped in a
// matching pair of single or double quotes.
var ErrNotQuoted = errors.New("literal is not quoted")

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Encode renders s as a double-quoted literal.
func Encode(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

// Decode strips the surrounding quotes from lit and resolves its escapes.
func Decode(lit string) (string, error) {
	if len(lit) < 2 {
		return "", ErrNotQuoted
	}
	q := lit[0]
	if (q != '"' && q != '\'') || lit[len(lit)-1] != q {
		return "", ErrNotQuoted
	}
	return Unescape(lit[1 : len(lit)-1]), nil
}

// Unescape resolves \n, \t, \r, \", \' and \\ in a literal body. Any other
// backslash sequence, including a trailing lone backslash, is kept as is.
func Unescape(body string) string {
	if strings.IndexByte(body, '\\') < 0 {
		return body
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 == len(body) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"', '\'', '\\':
			sb.WriteByte(body[i])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
