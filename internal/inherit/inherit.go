// Package inherit fills missing Parameters and Attributes documentation of
// a class from its ancestors, walking the linearized ancestor chain until
// the documentation is complete.
package inherit

import (
	"mkapi/internal/docstring"
	"mkapi/internal/object"
)

// inheritedSections are the only sections inheritance touches.
var inheritedSections = []string{"Parameters", "Attributes"}

// docSection returns the named docstring section of node, or an empty one.
func docSection(node *object.Node, name string) *docstring.Section {
	if s := node.Docstring.Section(name); s != nil {
		return s
	}
	return docstring.NewSection(name, "", nil)
}

// sigSection returns the signature-derived section of node.
func sigSection(node *object.Node, name string) *docstring.Section {
	return node.Signature.Section(name)
}

// isCompleteSection reports whether the documented section covers every
// derived entry and describes each documented one. An empty documented
// section with no derived entries counts as complete.
func isCompleteSection(node *object.Node, name string) bool {
	doc := docSection(node, name)
	for _, item := range sigSection(node, name).Items {
		if !doc.Has(item.Name) {
			return false
		}
	}
	if doc.IsEmpty() {
		return true
	}
	for _, item := range doc.Items {
		if item.Description.Name == "" {
			return false
		}
	}
	return true
}

// IsComplete reports whether both inherited sections are complete.
func IsComplete(node *object.Node) bool {
	for _, name := range inheritedSections {
		if !isCompleteSection(node, name) {
			return false
		}
	}
	return true
}

// inheritBase layers one ancestor's documentation under node's own. The
// ancestor supplies entries the node lacks; the node's entries win where
// both document the same name. The Parameters result is restricted to the
// node's actual signature so inherited extras never appear.
func inheritBase(node, base *object.Node) {
	for _, name := range inheritedSections {
		section, err := docSection(base, name).Merge(docSection(node, name), true)
		if err != nil {
			continue
		}
		if name == "Parameters" {
			sig := sigSection(node, name)
			items := section.Items[:0]
			for _, item := range section.Items {
				if sig.Has(item.Name) {
					items = append(items, item)
				}
			}
			section.Items = items
		}
		if !section.IsEmpty() {
			node.Docstring.SetSection(section, false, false, true)
		}
	}
}

// candidate pairs a node with the ancestor nodes it may inherit from.
type candidate struct {
	node  *object.Node
	bases []*object.Node
}

// candidates yields the class itself with its ancestor classes, then each
// member with the same-named members of those ancestors.
func candidates(arena *object.Arena, node *object.Node) []candidate {
	insp := arena.Inspector()
	mro := insp.MRO(node.Object())[1:]

	bases := make([]*object.Node, 0, len(mro))
	for _, base := range mro {
		bases = append(bases, arena.Node(base))
	}
	out := []candidate{{node, bases}}
	for _, member := range node.Members {
		var inherited []*object.Node
		for _, base := range mro {
			if m := base.Member(member.Name); m != nil {
				inherited = append(inherited, arena.Node(m))
			}
		}
		out = append(out, candidate{member, inherited})
	}
	return out
}

// Inherit resolves inherited documentation for a class node and its members.
// Non-class nodes are left untouched. Ancestors apply in linearization order
// and stop as soon as the documentation is complete.
func Inherit(arena *object.Arena, node *object.Node) {
	if !node.Kind.IsClassLike() {
		return
	}
	for _, c := range candidates(arena, node) {
		if IsComplete(c.node) {
			continue
		}
		for _, base := range c.bases {
			inheritBase(c.node, base)
			if IsComplete(c.node) {
				break
			}
		}
	}
}
