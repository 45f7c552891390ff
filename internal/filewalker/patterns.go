package filewalker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned when an exclusion glob cannot be compiled.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// PatternSet is an ordered set of doublestar exclusion globs matched against
// slash-separated paths relative to the walk root. The zero value and an
// empty set exclude nothing.
type PatternSet struct {
	patterns []string
}

// NewPatternSet validates patterns and returns them as a set.
//
// A single argument containing line breaks is split into one pattern per
// line; some CI runners can only pass list inputs as one multi-line string.
func NewPatternSet(patterns ...string) (*PatternSet, error) {
	if len(patterns) == 1 && strings.ContainsAny(patterns[0], "\r\n") {
		patterns = splitLines(patterns[0])
	}

	ps := &PatternSet{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
		ps.patterns = append(ps.patterns, p)
	}
	return ps, nil
}

// Patterns returns a copy of the compiled patterns in order.
func (ps *PatternSet) Patterns() []string {
	if ps == nil {
		return nil
	}
	out := make([]string, len(ps.patterns))
	copy(out, ps.patterns)
	return out
}

// Len returns the number of patterns.
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.patterns)
}

// Match reports whether rel matches any pattern in the set.
func (ps *PatternSet) Match(rel string) bool {
	if ps == nil {
		return false
	}
	normalized := filepath.ToSlash(rel)
	for _, pat := range ps.patterns {
		// Patterns were validated up front, so Match cannot fail here.
		if matched, _ := doublestar.Match(pat, normalized); matched {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}
