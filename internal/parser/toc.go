package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ProjectIDField is the TOC metadata field carrying the CurseForge project ID.
const ProjectIDField = "X-Curse-Project-ID"

// TOCParser reads "## Field: Value" metadata lines from addon .toc files.
type TOCParser struct{}

func NewTOCParser() *TOCParser { return &TOCParser{} }

// Parse returns the metadata fields of a TOC file. The first occurrence of a
// field wins.
func (p *TOCParser) Parse(r io.Reader) (map[string]string, error) {
	meta := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())

		// File lists and plain comments carry no metadata.
		if !strings.HasPrefix(trimmed, "##") {
			continue
		}

		field, value, ok := strings.Cut(strings.TrimPrefix(trimmed, "##"), ":")
		if !ok {
			continue
		}
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			continue
		}
		if _, seen := meta[field]; !seen {
			meta[field] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan toc file: %w", err)
	}

	return meta, nil
}

// ProjectID returns the project ID declared in a TOC file, if any.
func (p *TOCParser) ProjectID(r io.Reader) (string, bool, error) {
	meta, err := p.Parse(r)
	if err != nil {
		return "", false, err
	}
	id, ok := meta[ProjectIDField]
	return id, ok, nil
}
