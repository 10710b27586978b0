package docstring

import (
	"regexp"
	"strings"

	"mkapi/internal/markdown"
)

// colonNamePattern matches "name (type)" on a colon-dialect first line.
var colonNamePattern = regexp.MustCompile(`^(.*?)\s*\((.*?)\)`)

// underlineNamePattern matches "name : type" on an underline-dialect header.
var underlineNamePattern = regexp.MustCompile(`^([^ ]*?)\s*:\s*(.*)$`)

// splitEntries splits a Parameters/Attributes/Raises body into one line
// group per top-level entry. Continuation lines (indented) stay with the
// previous entry.
func splitEntries(body string) [][]string {
	lines := strings.Split(body, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	var groups [][]string
	start := 0
	for stop := 1; stop <= len(lines); stop++ {
		nextIndent := 0
		if stop < len(lines) {
			nextIndent = markdown.GetIndent(lines[stop])
		}
		if nextIndent == 0 {
			groups = append(groups, lines[start:stop])
			start = stop
		}
	}
	return groups
}

// parseEntry parses one entry's lines into an Item.
//
// Colon dialect expects "name (type): description" or "name: description";
// underline dialect expects "name : type" with the description on the
// following indented lines. A missing type yields the empty string, to be
// filled from the signature later.
func parseEntry(lines []string, dialect Dialect) *Item {
	if dialect == DialectColon {
		name, rest, _ := strings.Cut(lines[0], ":")
		name = strings.TrimSpace(name)
		parsed := []string{strings.TrimSpace(rest)}
		typ := ""
		if m := colonNamePattern.FindStringSubmatch(name); m != nil {
			name, typ = m[1], m[2]
		}
		return newEntry(name, typ, continuation(lines, parsed))
	}
	name := strings.TrimSpace(lines[0])
	typ := ""
	if m := underlineNamePattern.FindStringSubmatch(name); m != nil {
		name, typ = m[1], m[2]
	}
	return newEntry(name, typ, continuation(lines, nil))
}

func continuation(lines, parsed []string) []string {
	if len(lines) > 1 {
		indent := markdown.GetIndent(lines[1])
		if indent < 0 {
			indent = 0
		}
		for _, line := range lines[1:] {
			if len(line) > indent {
				parsed = append(parsed, line[indent:])
			} else {
				parsed = append(parsed, "")
			}
		}
	}
	return parsed
}

func newEntry(name, typ string, parsed []string) *Item {
	return NewItem(name, NewType(typ), NewInline(strings.Join(parsed, "\n")))
}

// ParseEntries parses a section body into its items.
func ParseEntries(body string, dialect Dialect) []*Item {
	var items []*Item
	for _, lines := range splitEntries(body) {
		items = append(items, parseEntry(lines, dialect))
	}
	return items
}

// ParseReturns parses a Returns/Yields body into (type, markdown).
// The colon dialect holds "type: description" on the first line; the
// underline dialect holds the type alone with the description following.
func ParseReturns(body string, dialect Dialect) (string, string) {
	lines := strings.Split(body, "\n")
	if dialect == DialectColon {
		typ := ""
		if before, after, ok := strings.Cut(lines[0], ":"); ok {
			typ = strings.TrimSpace(before)
			lines[0] = strings.TrimSpace(after)
		}
		return typ, markdown.JoinWithoutIndent(lines)
	}
	typ := strings.TrimSpace(lines[0])
	return typ, markdown.JoinWithoutIndent(lines[1:])
}

// buildSection turns a raw section into a typed Section.
func buildSection(raw RawSection) *Section {
	switch raw.Name {
	case "Parameters", "Attributes", "Raises":
		return NewSection(raw.Name, "", ParseEntries(raw.Body, raw.Dialect))
	case "Returns", "Yields":
		typ, md := ParseReturns(raw.Body, raw.Dialect)
		s := NewSection(raw.Name, md, nil)
		s.Type = NewType(typ)
		return s
	}
	return NewSection(raw.Name, raw.Body, nil)
}

// Parse parses a cleaned docstring into a Docstring. Sections keep their
// encounter order here; canonical reordering applies on later inserts.
func Parse(doc string) *Docstring {
	d := New()
	if doc == "" {
		return d
	}
	for _, raw := range SplitSections(doc) {
		d.Sections = append(d.Sections, buildSection(raw))
	}
	return d
}
