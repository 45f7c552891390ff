package strtable

import (
	"io"
	"strings"

	"locale-uploader/internal/literal"
)

// DefaultTableName is the identifier used in rendered lines when none is set.
const DefaultTableName = "L"

// Lines renders one `name["key"] = value` line per entry in table order.
func (t *Table) Lines(name string) []string {
	if name == "" {
		name = DefaultTableName
	}
	lines := make([]string, 0, len(t.keys))
	t.Each(func(k string, v Value) {
		lines = append(lines, name+"["+literal.Encode(k)+"] = "+v.Literal())
	})
	return lines
}

// Render joins Lines with newlines into the upload payload.
func (t *Table) Render(name string) string {
	return strings.Join(t.Lines(name), "\n")
}

// WriteLines writes every line followed by a newline, as printed in dry-run mode.
func (t *Table) WriteLines(w io.Writer, name string) error {
	for _, line := range t.Lines(name) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
