package object

import (
	"sort"
	"strings"

	"mkapi/internal/docstring"
	"mkapi/internal/inspect"
	"mkapi/internal/link"
	"mkapi/internal/markdown"
)

// Separator delimits fragments in the render round trip. The joined Markdown
// goes through an external renderer and the resulting HTML is split on the
// same token and distributed back onto the fragments in order.
const Separator = "<!-- mkapi:sep -->"

// Node is one entity of the documentation tree: a module, class, function,
// or property together with its postprocessed docstring and members.
type Node struct {
	Name      string
	Prefix    string
	ID        string
	Qualname  string
	Module    string
	Markdown  string // linked heading markdown
	HTML      string
	Kind      Kind
	Abstract  bool
	Type      *docstring.Type // hoisted from the docstring for rendering
	File      string
	Line      int
	Signature *inspect.Signature
	Docstring *docstring.Docstring
	Members   []*Node
	Parent    *Node

	obj *inspect.Object
}

func newNode(a *Arena, obj *inspect.Object) *Node {
	kind, abstract := Classify(obj)
	n := &Node{
		Name:     obj.Name,
		Prefix:   obj.Prefix,
		ID:       obj.ID(),
		Qualname: obj.Qualname,
		Module:   obj.Module,
		Kind:     kind,
		Abstract: abstract,
		Type:     docstring.NewType(""),
		File:     obj.File,
		Line:     obj.Line,
		obj:      obj,
	}
	n.Markdown = link.Link(n.Name, n.ID)
	if n.Prefix != "" {
		n.Markdown = link.Link(n.Prefix, n.Prefix) + "." + n.Markdown
	}
	n.Signature = a.insp.Signature(obj)
	n.Docstring = parseDocstring(a, obj, n.Signature, kind)
	n.Members = buildMembers(a, obj)
	for _, m := range n.Members {
		m.Parent = n
	}
	n.hoistConstructor()
	n.splitPropertyType()
	if !n.Docstring.Type.IsEmpty() {
		n.Type = n.Docstring.Type
		n.Docstring.Type = docstring.NewType("")
	}
	return n
}

// buildMembers returns the documented member nodes of obj, sorted by source
// line. Leading-underscore names are private and skipped, dunder names are
// not; members without any docstring are dropped, submodules of a package
// are kept regardless.
func buildMembers(a *Arena, obj *inspect.Object) []*Node {
	var members []*Node
	for _, m := range a.insp.Members(obj) {
		if strings.HasPrefix(m.Name, "_") && !isDunder(m.Name) {
			continue
		}
		node := a.Node(m)
		if node.Docstring.IsEmpty() && !node.Kind.IsModuleLike() {
			continue
		}
		members = append(members, node)
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Line < members[j].Line })
	return members
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// hoistConstructor promotes an undocumented class's documentation from its
// __init__ method, unless that docstring is the generic "Initialize self"
// text. The constructor never appears as a member either way.
func (n *Node) hoistConstructor() {
	if n.Kind.IsClassLike() && n.Docstring.IsEmpty() {
		for _, m := range n.Members {
			if m.Name != "__init__" || m.Docstring.IsEmpty() {
				continue
			}
			if !strings.HasPrefix(m.Docstring.Sections[0].Markdown, "Initialize self") {
				n.Docstring = m.Docstring
			}
		}
	}
	members := n.Members[:0]
	for _, m := range n.Members {
		if m.Name != "__init__" {
			members = append(members, m)
		}
	}
	n.Members = members
}

// splitPropertyType extracts "type: description" from a property docstring
// consisting of a single unnamed section.
func (n *Node) splitPropertyType() {
	doc := n.Docstring
	if !n.Kind.IsProperty() || !doc.Type.IsEmpty() {
		return
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Name != "" {
		return
	}
	section := doc.Sections[0]
	typ, md := markdown.SplitType(section.Markdown)
	if typ != "" {
		doc.Type = docstring.NewType(typ)
		section.Markdown = md
	}
}

// parseDocstring parses and postprocesses the docstring of obj. Empty raw
// docstrings stay empty: no synthetic sections are added for them.
func parseDocstring(a *Arena, obj *inspect.Object, sig *inspect.Signature, kind Kind) *docstring.Docstring {
	if obj.Doc == "" {
		return docstring.New()
	}
	doc := docstring.Parse(obj.Doc)
	parseBases(a, doc, obj)
	parseSource(doc, obj, sig)
	replaceSections(a, doc, obj)
	if !sig.Valid {
		return doc
	}
	substituteDefaults(doc, sig)
	fillReturnTypes(doc, sig)
	setDocType(doc, sig, kind)
	return doc
}

// parseBases prepends a Bases section listing the linearized ancestors of a
// class, each as a qualified cross-reference.
func parseBases(a *Arena, doc *docstring.Docstring, obj *inspect.Object) {
	if obj.Category != inspect.CatClass {
		return
	}
	mro := a.insp.MRO(obj)
	var items []*docstring.Item
	for _, base := range mro[1:] {
		id := base.ID()
		md := id
		if !strings.HasPrefix(base.Name, "_") && base.Module != "" {
			md = link.Link(id, id)
		}
		items = append(items, docstring.NewItem("", docstring.NewType(md), nil))
	}
	if len(items) > 0 {
		doc.SetSection(docstring.NewSection("Bases", "", items), false, false, false)
	}
}

// parseSource folds signature-derived parameters and attributes into the
// docstring. Documented entries win over derived ones for descriptions; the
// derived side supplies types the author omitted. Dataclass field
// descriptions written under Parameters propagate to Attributes.
func parseSource(doc *docstring.Docstring, obj *inspect.Object, sig *inspect.Signature) {
	section := sig.Parameters
	if existing := doc.Section("Parameters"); existing != nil {
		merged, err := section.Merge(existing, true)
		if err == nil {
			section = merged
		}
	}
	if !section.IsEmpty() {
		// copy so later docstring mutations never reach into the signature
		doc.SetSection(section, false, true, true)
	}

	derived := sig.Attributes
	if !doc.Has("Attributes") && derived.IsEmpty() {
		return
	}
	attrs := doc.SectionOrCreate("Attributes")
	attrs.Update(derived, false)
	if obj.Dataclass && doc.Has("Parameters") {
		for _, item := range doc.Section("Parameters").Items {
			if derived.Has(item.Name) {
				attrs.SetItem(item, false)
			}
		}
	}
}

// replaceSections rewrites cross-references in every section except the
// Example ones, and folds Note/Warning sections into admonition blocks
// attached to the preceding unnamed section.
func replaceSections(a *Arena, doc *docstring.Docstring, obj *inspect.Object) {
	resolve := func(name string) string { return a.insp.Resolve(obj, name) }
	var sections []*docstring.Section
	for _, section := range doc.Sections {
		if section.Name != "Example" && section.Name != "Examples" {
			for _, frag := range section.Fragments() {
				frag.SetMarkdown(link.ReplaceLink(frag.GetMarkdown(), resolve))
			}
		}
		switch section.Name {
		case "Note", "Notes", "Warning", "Warnings":
			md := markdown.AddAdmonition(section.Name, section.Markdown)
			if len(sections) > 0 && sections[len(sections)-1].Name == "" {
				sections[len(sections)-1].Markdown += "\n\n" + md
				continue
			}
			section.Name = ""
			section.Markdown = md
		}
		sections = append(sections, section)
	}
	doc.Sections = sections
}

// substituteDefaults expands the {default} placeholder in parameter
// descriptions with the source literal of the default value.
func substituteDefaults(doc *docstring.Docstring, sig *inspect.Signature) {
	section := doc.Section("Parameters")
	if section == nil {
		return
	}
	for _, item := range section.Items {
		desc := item.Description
		if strings.Contains(desc.Name, "{default}") && sig.Has(item.Name) {
			desc.Markdown = strings.ReplaceAll(desc.Name, "{default}", sig.Defaults[item.Name])
		}
	}
}

// fillReturnTypes supplies the annotation-derived type to Returns and Yields
// sections whose docstring omitted one.
func fillReturnTypes(doc *docstring.Docstring, sig *inspect.Signature) {
	for name, typ := range map[string]string{"Returns": sig.Returns, "Yields": sig.Yields} {
		if section := doc.Section(name); section != nil && section.Type.IsEmpty() {
			section.Type = docstring.NewType(typ)
		}
	}
}

// setDocType records the annotation-derived type on the docstring when no
// Returns or Yields section documents one. It is later hoisted to the node.
func setDocType(doc *docstring.Docstring, sig *inspect.Signature, kind Kind) {
	if doc.Has("Returns") || doc.Has("Yields") {
		return
	}
	if kind == KindGenerator {
		doc.Type = docstring.NewType(sig.Yields)
	} else {
		doc.Type = docstring.NewType(sig.Returns)
	}
}

// GetMarkdown implements docstring.Fragment.
func (n *Node) GetMarkdown() string { return n.Markdown }

// SetMarkdown implements docstring.Fragment.
func (n *Node) SetMarkdown(md string) { n.Markdown = md }

// SetHTML stores the rendered heading HTML.
func (n *Node) SetHTML(html string) { n.HTML = html }

func (n *Node) fragments(dst []docstring.Fragment) []docstring.Fragment {
	// Plain types keep their preset HTML and stay out of the round trip.
	if n.Type.GetMarkdown() != "" {
		dst = append(dst, n.Type)
	}
	dst = append(dst, n)
	dst = append(dst, n.Docstring.Fragments()...)
	for _, m := range n.Members {
		dst = m.fragments(dst)
	}
	return dst
}

// Fragments returns the full render round-trip sequence of the subtree.
func (n *Node) Fragments() []docstring.Fragment { return n.fragments(nil) }

// RenderMarkdown joins the subtree's fragments with the separator token.
//
// When level is positive the node's own heading gets that heading level and
// direct member headings get one more. The {class} placeholder expands to
// the name of the most recently emitted class.
func (n *Node) RenderMarkdown(level int) string {
	parts := make([]string, 0, 8)
	className := ""
	for _, frag := range n.Fragments() {
		md := frag.GetMarkdown()
		md = strings.ReplaceAll(md, "{class}", className)
		if node, ok := frag.(*Node); ok {
			if level > 0 {
				if node == n {
					md = strings.Repeat("#", level) + " " + md
				} else if node.Parent == n {
					md = strings.Repeat("#", level+1) + " " + md
				}
			}
			if node.Kind.IsClassLike() {
				className = node.Name
			}
		}
		parts = append(parts, md)
	}
	return strings.Join(parts, "\n\n"+Separator+"\n\n")
}

// DistributeHTML splits rendered HTML on the separator token and assigns the
// chunks back onto the subtree's fragments in order.
func (n *Node) DistributeHTML(html string) {
	chunks := strings.Split(html, Separator)
	for i, frag := range n.Fragments() {
		if i >= len(chunks) {
			return
		}
		frag.SetHTML(strings.TrimSpace(chunks[i]))
	}
}

// Walk visits the node and every descendant, depth first.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, m := range n.Members {
		m.Walk(visit)
	}
}

// Member returns the direct member with the given name, or nil.
func (n *Node) Member(name string) *Node {
	for _, m := range n.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Lookup descends a dotted path of member names.
func (n *Node) Lookup(path string) *Node {
	node := n
	for _, name := range strings.Split(path, ".") {
		node = node.Member(name)
		if node == nil {
			return nil
		}
	}
	return node
}

// Object exposes the backing source object for inheritance resolution.
func (n *Node) Object() *inspect.Object { return n.obj }
