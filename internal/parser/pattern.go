package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"locale-uploader/internal/literal"
)

// ErrInvalidExpression is returned when the pattern scanner's regular
// expression does not compile or lacks the key and value groups.
var ErrInvalidExpression = errors.New("invalid extraction expression")

// DefaultExpression returns the pattern scanner expression for table. It
// matches table["key"] or table['key'], optionally followed on the same line
// by an assignment of a double- or single-quoted string. The two quote styles
// capture the value in groups 2 and 3.
func DefaultExpression(table string) string {
	if table == "" {
		table = DefaultTable
	}
	return `\b` + regexp.QuoteMeta(table) +
		`\[\s*["']((?:[^\\\]]|\\.)+?)["']\s*\]` +
		`(?:\s*=\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'))?`
}

// PatternScanner extracts occurrences line by line with a regular
// expression, reporting every match on each line. Group 1 of the expression
// is the key; the first participating group after it is the value.
type PatternScanner struct {
	re *regexp.Regexp
}

// NewPatternScanner compiles expr, or the default expression for table when
// expr is empty.
func NewPatternScanner(table, expr string) (*PatternScanner, error) {
	if expr == "" {
		expr = DefaultExpression(table)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w `%s`: %v", ErrInvalidExpression, expr, err)
	}
	if re.NumSubexp() < 2 {
		return nil, fmt.Errorf("%w `%s`: need 2 capture groups (key, value), got %d",
			ErrInvalidExpression, expr, re.NumSubexp())
	}
	return &PatternScanner{re: re}, nil
}

// Expression returns the compiled expression source.
func (p *PatternScanner) Expression() string { return p.re.String() }

// luaLongBracketOpen matches the opening of a [[ or [=[ long bracket, which
// starts a long string, or a block comment when preceded by "--".
var luaLongBracketOpen = regexp.MustCompile(`^\[(=*)\[`)

func (p *PatternScanner) Extract(path string, r io.Reader) ([]Occurrence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var (
		out          []Occurrence
		lineNum      int
		commentClose string // closing bracket of an open block comment
		stringClose  string // closing bracket of an open long string
	)

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if commentClose != "" {
			idx := strings.Index(line, commentClose)
			if idx < 0 {
				continue
			}
			line = line[idx+len(commentClose):]
			commentClose = ""
		}

		var code string
		code, commentClose, stringClose = stripComment(line, stringClose)

		for _, loc := range p.re.FindAllStringSubmatchIndex(code, -1) {
			if loc[2] < 0 {
				continue
			}
			key := literal.Unescape(code[loc[2]:loc[3]])
			value, hasValue := "", false
			for g := 4; g+1 < len(loc); g += 2 {
				if loc[g] >= 0 {
					value, hasValue = literal.Unescape(code[loc[g]:loc[g+1]]), true
					break
				}
			}
			out = append(out, newOccurrence(path, lineNum, key, value, hasValue))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return out, nil
}

// stripComment removes comments from line, leaving string literals intact.
// Block comments closed on the same line become a single space and scanning
// resumes after them. openString is the closing bracket of a long string left
// open by a previous line. The returned brackets close whichever block comment
// or long string is still open at the end of line.
func stripComment(line, openString string) (code, blockClose, stringClose string) {
	var sb strings.Builder
	sb.Grow(len(line))

	i := 0
	for i < len(line) {
		if openString != "" {
			end := strings.Index(line[i:], openString)
			if end < 0 {
				sb.WriteString(line[i:])
				return sb.String(), "", openString
			}
			end += i + len(openString)
			sb.WriteString(line[i:end])
			i, openString = end, ""
			continue
		}

		switch ch := line[i]; {
		case ch == '"' || ch == '\'':
			end := quotedEnd(line, i)
			sb.WriteString(line[i:end])
			i = end
		case ch == '[':
			if m := luaLongBracketOpen.FindStringSubmatch(line[i:]); m != nil {
				sb.WriteString(m[0])
				i += len(m[0])
				openString = "]" + m[1] + "]"
				continue
			}
			sb.WriteByte(ch)
			i++
		case strings.HasPrefix(line[i:], "--"):
			m := luaLongBracketOpen.FindStringSubmatch(line[i+2:])
			if m == nil {
				return sb.String(), "", ""
			}
			closer := "]" + m[1] + "]"
			body := i + 2 + len(m[0])
			end := strings.Index(line[body:], closer)
			if end < 0 {
				return sb.String(), closer, ""
			}
			sb.WriteByte(' ')
			i = body + end + len(closer)
		default:
			sb.WriteByte(ch)
			i++
		}
	}
	return sb.String(), "", openString
}

// quotedEnd returns the index just past the quoted string starting at start,
// or len(line) when it is not terminated on this line.
func quotedEnd(line string, start int) int {
	q := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++ // skip escaped char
		case q:
			return i + 1
		}
	}
	return len(line)
}
