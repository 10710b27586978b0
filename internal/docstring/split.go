package docstring

import (
	"strings"

	"mkapi/internal/markdown"
)

// Dialect identifies which docstring grammar produced a section.
type Dialect string

const (
	// DialectNone marks unnamed text outside any recognized section.
	DialectNone Dialect = ""
	// DialectColon is the "Args:" colon-header grammar.
	DialectColon Dialect = "colon"
	// DialectUnderline is the "Parameters\n----------" grammar.
	DialectUnderline Dialect = "underline"
)

// sectionKeywords is the fixed set of recognized section headers.
// Capitalized words outside this set never open a section.
var sectionKeywords = []string{
	"Args",
	"Arguments",
	"Attributes",
	"Example",
	"Examples",
	"Note",
	"Notes",
	"Parameters",
	"Raises",
	"Returns",
	"References",
	"See Also",
	"Todo",
	"Warning",
	"Warnings",
	"Warns",
	"Yield",
	"Yields",
}

func isSectionKeyword(name string) bool {
	for _, k := range sectionKeywords {
		if name == k {
			return true
		}
	}
	return false
}

// renameSection maps header aliases onto their canonical section names.
func renameSection(name string) string {
	switch name {
	case "Args", "Arguments":
		return "Parameters"
	case "Warning", "Warns":
		return "Warnings"
	}
	return name
}

// ScanHeading reports whether a line opens a section and in which dialect.
// The colon form is checked first, so "Returns:" is a colon header while a
// bare "Returns" is an underline header.
func ScanHeading(line string) (string, Dialect) {
	if name, ok := strings.CutSuffix(line, ":"); ok && isSectionKeyword(name) {
		return name, DialectColon
	}
	if isSectionKeyword(line) {
		return line, DialectUnderline
	}
	return "", DialectNone
}

// RawSection is one split-off chunk of a docstring before entry parsing.
type RawSection struct {
	Name    string
	Body    string
	Dialect Dialect
}

// SplitSections splits a cleaned docstring into ordered raw sections.
//
// Text before the first recognized header forms the unnamed section. A body
// line belongs to its section while it stays more indented than the header;
// a blank line whose next non-blank line dedents below the body closes the
// section and opens a new unnamed one. Underline headers skip the dashed
// line without validating its length.
func SplitSections(doc string) []RawSection {
	lines := strings.Split(doc, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	var out []RawSection
	name := ""
	dialect := DialectNone
	start, indent := 0, 0
	for stop := 1; stop <= len(lines); stop++ {
		line := lines[stop-1]
		nextIndent := -1
		if stop < len(lines) {
			nextIndent = markdown.GetIndent(lines[stop])
		}
		if line == "" && nextIndent < indent && name != "" {
			if start < stop-1 {
				out = append(out, RawSection{name, markdown.JoinWithoutIndent(lines[start : stop-1]), dialect})
			}
			start = stop
			name = ""
		} else if section, d := ScanHeading(line); section != "" {
			if start < stop-1 {
				out = append(out, RawSection{name, markdown.JoinWithoutIndent(lines[start : stop-1]), dialect})
			}
			dialect = d
			name = renameSection(section)
			start = stop
			if d == DialectUnderline {
				// The next line is a throwaway underline of dashes.
				start++
			}
			indent = nextIndent
		}
	}
	if start < len(lines) {
		out = append(out, RawSection{name, markdown.JoinWithoutIndent(lines[start:]), dialect})
	}
	return out
}
