package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"locale-uploader/internal/strtable"
)

// DefaultTable is the localization table identifier matched by default.
const DefaultTable = "L"

// ErrUnknownStrategy is returned by ParseStrategy and New for an unsupported
// strategy name.
var ErrUnknownStrategy = errors.New("unknown extraction strategy")

// Occurrence is one observation of a localization key in a source file.
type Occurrence struct {
	// Key is the unescaped localization key.
	Key string
	// Value is the explicit string assigned to the key at this point, or
	// strtable.KeyOnly when the key is only referenced.
	Value strtable.Value
	// Path is the source file, relative to the walk root.
	Path string
	// Line is the 1-based line number of the occurrence.
	Line int
}

// Extractor finds localization occurrences in one file's content. The
// returned occurrences are in source order.
type Extractor interface {
	Extract(path string, r io.Reader) ([]Occurrence, error)
}

// Strategy selects an Extractor implementation.
type Strategy string

const (
	// StrategyPattern scans each line with a regular expression.
	StrategyPattern Strategy = "pattern"
	// StrategyStructural walks the parsed Lua syntax tree.
	StrategyStructural Strategy = "structural"
)

// Strategies lists the supported strategy names.
var Strategies = []Strategy{StrategyPattern, StrategyStructural}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyPattern:
		return StrategyPattern, nil
	case StrategyStructural:
		return StrategyStructural, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Options configures an Extractor.
type Options struct {
	// Table is the identifier of the localization table, "L" when empty.
	Table string
	// Expression overrides the pattern scanner's regular expression. It must
	// capture the key in group 1 and the optional value in group 2; further
	// groups are tried as value alternatives. Ignored by the structural
	// scanner.
	Expression string
}

// New returns the Extractor for strategy.
func New(strategy Strategy, opts Options) (Extractor, error) {
	switch strategy {
	case StrategyPattern, "":
		return NewPatternScanner(opts.Table, opts.Expression)
	case StrategyStructural:
		return NewStructuralScanner(opts.Table), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}
}

// ParseError reports Lua source the structural scanner could not parse.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	msg := strings.TrimSpace(e.Err.Error())
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, msg)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newOccurrence builds an occurrence; an empty value counts as no value.
func newOccurrence(path string, line int, key, value string, hasValue bool) Occurrence {
	v := strtable.KeyOnly
	if hasValue && value != "" {
		v = strtable.Explicit(value)
	}
	return Occurrence{Key: key, Value: v, Path: path, Line: line}
}
