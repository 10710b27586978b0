// Package transform reshapes a resolved node tree for presentation:
// properties become Attributes entries, members are summarized into
// Classes/Methods/Functions sections, and section items are sorted.
package transform

import (
	"sort"
	"strings"

	"mkapi/internal/docstring"
	"mkapi/internal/object"
)

// Property moves property members into the Attributes section. The property
// description is the first unnamed section of its docstring; its type is the
// hoisted docstring type.
func Property(node *object.Node) {
	var section *docstring.Section
	members := node.Members[:0]
	for _, member := range node.Members {
		if !member.Kind.IsProperty() {
			members = append(members, member)
			continue
		}
		if section == nil {
			section = node.Docstring.SectionOrCreate("Attributes")
		}
		description := ""
		if len(member.Docstring.Sections) > 0 {
			description = member.Docstring.Sections[0].Markdown
		}
		item := docstring.NewItem(member.Name, member.Type.Copy(), docstring.NewInline(description))
		item.Kind = member.Kind.String()
		section.Items = append(section.Items, item)
	}
	node.Members = members
}

// memberType returns the display type of a member: its own hoisted type
// first, then the type of its Returns or Yields section.
func memberType(member *object.Node) *docstring.Type {
	if !member.Type.IsEmpty() {
		return docstring.NewType(member.Type.Name)
	}
	for _, name := range []string{"Returns", "Yields"} {
		if s := member.Docstring.Section(name); s != nil && !s.Type.IsEmpty() {
			return docstring.NewType(s.Type.Name)
		}
	}
	return docstring.NewType("")
}

// memberDescription returns the first paragraph of a member's unnamed
// section.
func memberDescription(member *object.Node) string {
	if s := member.Docstring.Section(""); s != nil {
		description, _, _ := strings.Cut(s.Markdown, "\n\n")
		return description
	}
	return ""
}

// memberURL computes the item link target for the given filters: "link"
// and "all" anchor within the page, "apilink" points into the API tree.
func memberURL(node, member *object.Node, filters []string) string {
	if has(filters, "link") || has(filters, "all") {
		return "#" + member.ID
	}
	if has(filters, "apilink") {
		return "../" + node.ID + "#" + member.ID
	}
	return ""
}

func has(filters []string, name string) bool {
	for _, f := range filters {
		if f == name {
			return true
		}
	}
	return false
}

// renderMember renders the summary HTML of one member entry: a possibly
// linked name followed by its argument list for callables.
func renderMember(member *object.Node, url string) string {
	name := member.Name
	if url != "" {
		name = `<a href="` + url + `">` + name + `</a>`
	}
	if member.Kind.IsClassLike() {
		return name
	}
	args := member.Signature.Arguments()
	if args == nil {
		return name
	}
	params := make([]string, 0, len(args))
	for _, arg := range args {
		params = append(params, `<em>`+arg+`</em>`)
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}

// Members synthesizes a summary section for every member matching mode
// ("class", "function", or "method") and installs it at its canonical
// position. Nodes without matching members are left untouched.
func Members(node *object.Node, mode string, filters []string) {
	var members []*object.Node
	for _, member := range node.Members {
		if member.Kind.MatchesMode(mode) {
			members = append(members, member)
		}
	}
	if len(members) == 0 {
		return
	}
	name := strings.ToUpper(mode[:1]) + mode[1:]
	if mode == "class" {
		name += "es"
	} else {
		name += "s"
	}
	section := docstring.NewSection(name, "", nil)
	for _, member := range members {
		item := docstring.NewItem(member.Name, memberType(member), docstring.NewInline(memberDescription(member)))
		item.Kind = member.Kind.String()
		item.Markdown = ""
		item.HTML = renderMember(member, memberURL(node, member, filters))
		section.Items = append(section.Items, item)
	}
	node.Docstring.SetSection(section, false, false, false)
}

// class transforms a class node: properties fold into Attributes, then
// nested classes and methods are summarized with in-page links.
func class(node *object.Node, filters []string) {
	Property(node)
	withLink := append([]string{"link"}, filters...)
	Members(node, "class", withLink)
	Members(node, "method", withLink)
}

// module transforms a module node: classes and functions are summarized and
// the members themselves are dropped unless the "all" filter keeps them.
func module(node *object.Node, filters []string) {
	Members(node, "class", filters)
	Members(node, "function", filters)
	if !has(filters, "all") {
		node.Members = nil
	}
}

// sortSections sorts the items of every section alphabetically, except
// Classes and Parameters which keep definition order.
func sortSections(node *object.Node) {
	for _, section := range node.Docstring.Sections {
		if section.Name == "Classes" || section.Name == "Parameters" {
			continue
		}
		sort.SliceStable(section.Items, func(i, j int) bool {
			return section.Items[i].Name < section.Items[j].Name
		})
	}
}

// Apply runs the presentation transform over a node and its remaining
// members, recursively.
func Apply(node *object.Node, filters []string) {
	if node.Kind.IsClassLike() {
		class(node, filters)
	} else if node.Kind.IsModuleLike() {
		module(node, filters)
	}
	node.Walk(sortSections)
	for _, member := range node.Members {
		Apply(member, filters)
	}
}
