package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locale-uploader/internal/strtable"
)

func newPatternScanner(t *testing.T) *PatternScanner {
	t.Helper()
	p, err := NewPatternScanner("", "")
	require.NoError(t, err)
	return p
}

func TestPatternScannerLines(t *testing.T) {
	src := "local L = ns.L\n" +
		"L[\"A\"] = \"Alpha\"\n" +
		"\n" +
		"L[\"B\"]\n"

	occs := extract(t, newPatternScanner(t), src)
	require.Len(t, occs, 2)
	assert.Equal(t, Occurrence{Key: "A", Value: strtable.Explicit("Alpha"), Path: "test.lua", Line: 2}, occs[0])
	assert.Equal(t, Occurrence{Key: "B", Value: strtable.KeyOnly, Path: "test.lua", Line: 4}, occs[1])
}

func TestPatternScannerCases(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []pair
	}{
		{
			name: "every match on a line",
			src:  `L["A"] = "a"; L["B"] = 'b' print(L["C"])`,
			want: []pair{
				{"A", strtable.Explicit("a")},
				{"B", strtable.Explicit("b")},
				{"C", strtable.KeyOnly},
			},
		},
		{
			name: "escapes in key and value",
			src:  `L["say \"hi\""] = "line\nnext"`,
			want: []pair{{`say "hi"`, strtable.Explicit("line\nnext")}},
		},
		{
			name: "single quotes with escaped apostrophes",
			src:  `L['it\'s'] = 'don\'t'`,
			want: []pair{{"it's", strtable.Explicit("don't")}},
		},
		{
			name: "apostrophe inside double quotes",
			src:  `L["X"] = "Don't panic"`,
			want: []pair{{"X", strtable.Explicit("Don't panic")}},
		},
		{
			name: "concatenation keeps first literal",
			src:  `L["X"] = "a" .. "b"`,
			want: []pair{{"X", strtable.Explicit("a")}},
		},
		{
			name: "empty value is key only",
			src:  `L["E"] = ""`,
			want: []pair{{"E", strtable.KeyOnly}},
		},
		{
			name: "non-literal value is key only",
			src:  `L["F"] = GetText("F")`,
			want: []pair{{"F", strtable.KeyOnly}},
		},
		{
			name: "index used as value",
			src:  `L["G"] = L["H"]`,
			want: []pair{{"G", strtable.KeyOnly}, {"H", strtable.KeyOnly}},
		},
		{
			name: "spaces inside brackets",
			src:  `L[ "S" ]   =   "spaced"`,
			want: []pair{{"S", strtable.Explicit("spaced")}},
		},
		{
			name: "other identifiers ending in L are ignored",
			src:  `XL["nope"] = "x"`,
			want: []pair{},
		},
		{
			name: "line comment",
			src:  `-- L["Commented"] = "x"`,
			want: []pair{},
		},
		{
			name: "trailing comment",
			src:  `L["Code"] = "c" -- L["Trailing"]`,
			want: []pair{{"Code", strtable.Explicit("c")}},
		},
		{
			name: "dashes inside strings",
			src:  `L["A--B"] = "x--y"`,
			want: []pair{{"A--B", strtable.Explicit("x--y")}},
		},
		{
			name: "inline block comment",
			src:  `L["Inline"] --[[ L["Hidden"] ]] = "kept"`,
			want: []pair{{"Inline", strtable.Explicit("kept")}},
		},
		{
			name: "dashes inside long strings",
			src:  `local url = [[a--b]] L["X"] = "x"`,
			want: []pair{{"X", strtable.Explicit("x")}},
		},
		{
			name: "dashes inside leveled long strings",
			src:  `local s = [==[a]]--b]==] L["Y"] -- L["Gone"]`,
			want: []pair{{"Y", strtable.KeyOnly}},
		},
		{
			name: "long string spanning lines",
			src: "local s = [[\n" +
				"http://example.com/a--b\n" +
				"]] L[\"N\"] = \"n\" -- L[\"Gone\"]\n",
			want: []pair{{"N", strtable.Explicit("n")}},
		},
		{
			name: "multi-line block comment",
			src: "--[==[\n" +
				"L[\"InBlock\"] = \"x\"\n" +
				"]] still inside\n" +
				"]==] L[\"After\"] = \"y\"\n" +
				"L[\"Next\"]\n",
			want: []pair{
				{"After", strtable.Explicit("y")},
				{"Next", strtable.KeyOnly},
			},
		},
	}

	p := newPatternScanner(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pairs(extract(t, p, tc.src)))
		})
	}
}

func TestPatternScannerCustomTable(t *testing.T) {
	p, err := NewPatternScanner("Loc", "")
	require.NoError(t, err)

	got := pairs(extract(t, p, `Loc["k"] = "v"; L["other"] = "x"`))
	assert.Equal(t, []pair{{"k", strtable.Explicit("v")}}, got)
	assert.Equal(t, DefaultExpression("Loc"), p.Expression())
}

// The expression used by earlier releases keeps working.
func TestPatternScannerLegacyExpression(t *testing.T) {
	legacy := `L\[["\']([^]]+)["\']\](?:\s*=\s*["\']([^"\']+)["\'])?`
	p, err := NewPatternScanner("", legacy)
	require.NoError(t, err)

	got := pairs(extract(t, p, `L["A"] = "Alpha" L['B']`))
	assert.Equal(t, []pair{
		{"A", strtable.Explicit("Alpha")},
		{"B", strtable.KeyOnly},
	}, got)
}

func TestPatternScannerInvalidExpression(t *testing.T) {
	for _, expr := range []string{`L\[(`, `L\[(.*)\]`} {
		_, err := NewPatternScanner("", expr)
		require.Error(t, err, expr)
		assert.ErrorIs(t, err, ErrInvalidExpression)
		assert.Contains(t, err.Error(), expr)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestPatternScannerReadError(t *testing.T) {
	_, err := newPatternScanner(t).Extract("broken.lua", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.lua")
}

func TestPatternScannerNoMatches(t *testing.T) {
	occs, err := newPatternScanner(t).Extract("empty.lua", strings.NewReader("local x = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, occs)
}
