// Package markdown provides text helpers shared by the docstring parser and
// the HTML distribution step: indentation handling, type/description
// splitting, admonition conversion, and doctest fencing.
package markdown

import "strings"

// GetIndent returns the number of leading spaces of a line.
// A blank line (empty or spaces only) returns -1.
func GetIndent(line string) int {
	for k, r := range line {
		if r != ' ' {
			return k
		}
	}
	return -1
}

// JoinWithoutIndent joins lines after removing the common indentation given
// by the first line, then trims surrounding whitespace.
func JoinWithoutIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	indent := GetIndent(lines[0])
	if indent < 0 {
		indent = 0
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) > indent {
			out = append(out, line[indent:])
		} else {
			out = append(out, "")
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SplitType splits "type : description" on the first colon of the first line.
// If the first line has no colon, the type is empty and the text is returned
// unchanged.
func SplitType(text string) (string, string) {
	line := text
	if i := strings.IndexByte(text, '\n'); i != -1 {
		line = text[:i]
	}
	index := strings.IndexByte(line, ':')
	if index == -1 {
		return "", text
	}
	typ := strings.TrimSpace(line[:index])
	return typ, strings.TrimSpace(text[index+1:])
}

// Cleandoc removes the common leading indentation of every line after the
// first and strips surrounding blank lines, like a docstring cleaner.
func Cleandoc(doc string) string {
	lines := strings.Split(doc, "\n")
	indent := -1
	for _, line := range lines[1:] {
		if k := GetIndent(line); k >= 0 && (indent < 0 || k < indent) {
			indent = k
		}
	}
	out := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		if indent > 0 && len(line) > indent {
			line = line[indent:]
		} else if indent > 0 {
			line = strings.TrimLeft(line, " ")
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

// StripPTags removes <p> tags, turning paragraph breaks into <br>.
func StripPTags(html string) string {
	html = strings.ReplaceAll(html, "<p>", "")
	html = strings.ReplaceAll(html, "</p>", "<br>")
	return strings.TrimSuffix(html, "<br>")
}

// AddAdmonition wraps a Note/Warning section body in an admonition block.
func AddAdmonition(name, text string) string {
	kind := strings.ToLower(name)
	if strings.HasPrefix(name, "Note") {
		kind = "note"
	} else if strings.HasPrefix(name, "Warning") {
		kind = "warning"
	}
	lines := []string{`!!! ` + kind + ` "` + name + `"`}
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			line = "    " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// AddFence wraps ">>>" doctest blocks in python code fences so a Markdown
// renderer keeps them verbatim.
func AddFence(text string) string {
	blocks := make([]string, 0, 4)
	for _, block := range splitDoctest(text) {
		if strings.HasPrefix(block, ">>>") {
			block = "~~~python\n" + block + "\n~~~\n"
		}
		blocks = append(blocks, block)
	}
	return strings.TrimSpace(strings.Join(blocks, "\n"))
}

func splitDoctest(text string) []string {
	var blocks []string
	lines := strings.Split(text, "\n")
	start := 0
	inCode := false
	for stop, line := range lines {
		if strings.Contains(line, ">>>") && !inCode {
			if start < stop {
				blocks = append(blocks, strings.Join(lines[start:stop], "\n"))
			}
			start = stop
			inCode = true
		} else if strings.TrimSpace(line) == "" && inCode {
			blocks = append(blocks, JoinWithoutIndent(lines[start:stop+1]))
			start = stop + 1
			inCode = false
		}
	}
	if start < len(lines) {
		blocks = append(blocks, JoinWithoutIndent(lines[start:]))
	}
	return blocks
}
