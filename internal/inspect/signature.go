package inspect

import (
	"regexp"
	"strings"

	"mkapi/internal/docstring"
)

// generatorPattern matches generator-shaped return annotations whose element
// type becomes the yield type.
var generatorPattern = regexp.MustCompile(
	`^(?:typing\.)?(Iterator|Iterable|Generator|AsyncIterator|AsyncIterable|AsyncGenerator)\[(.*)\]$`)

// Signature implements Inspector. Modules and properties have no callable
// signature; their derived sections hold attributes only.
func (p *Python) Signature(obj *Object) *Signature {
	sig := NewSignature()
	switch obj.Category {
	case CatModule:
		p.fillAttributes(sig, obj)
	case CatClass:
		sig.Valid = true
		if init := obj.Member("__init__"); init != nil {
			fillParams(sig, init.Params)
		} else if obj.Dataclass {
			fillParams(sig, dataclassParams(obj))
		}
		p.fillAttributes(sig, obj)
	case CatFunction:
		if obj.Property {
			return sig
		}
		sig.Valid = true
		fillParams(sig, obj.Params)
		sig.Returns = obj.Returns
		if obj.HasYield {
			sig.Yields = yieldType(obj.Returns)
		}
	}
	return sig
}

// Attributes implements Inspector. Class attributes include both class-level
// annotated assignments and self-assignments scraped from __init__.
func (p *Python) Attributes(obj *Object) []Attribute {
	if obj.Category == CatFunction {
		return nil
	}
	return obj.Assigns
}

// fillParams builds the Parameters section and the defaults table. Parameter
// types gain an ", optional" suffix when a default exists, matching the
// conventional rendering of optional arguments.
func fillParams(sig *Signature, params []Param) {
	for _, prm := range params {
		typ := prm.Type
		if prm.Default != "" {
			sig.Defaults[prm.Name] = prm.Default
			if typ == "" {
				typ = "optional"
			} else {
				typ += ", optional"
			}
		}
		item := docstring.NewItem(prm.Name, docstring.NewType(typ), nil)
		sig.Parameters.Items = append(sig.Parameters.Items, item)
	}
}

// fillAttributes builds the Attributes section from source-documented
// assignments. Untyped attributes may carry "type: description" in their
// documentation text. Dataclass fields double as constructor parameters, so
// their descriptions propagate onto matching parameter items.
func (p *Python) fillAttributes(sig *Signature, obj *Object) {
	for _, attr := range p.Attributes(obj) {
		if strings.Contains(attr.Type, "ClassVar") || strings.Contains(attr.Type, "InitVar") {
			continue
		}
		typ, desc := attr.Type, attr.Description
		if typ == "" {
			typ, desc = splitInlineType(desc)
		}
		item := docstring.NewItem(attr.Name, docstring.NewType(typ), docstring.NewInline(desc))
		sig.Attributes.Items = append(sig.Attributes.Items, item)
		if obj.Dataclass {
			if prm := sig.Parameters.Item(attr.Name); prm != nil {
				prm.SetDescription(docstring.NewInline(desc), false)
			}
		}
	}
}

// splitInlineType splits "type: description" written in an attribute comment.
func splitInlineType(text string) (string, string) {
	if before, after, ok := strings.Cut(text, ":"); ok && !strings.Contains(before, " ") {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", text
}

// dataclassParams derives constructor parameters from annotated class-level
// fields when no explicit __init__ exists.
func dataclassParams(obj *Object) []Param {
	var out []Param
	for _, attr := range obj.Assigns {
		if attr.Type == "" || strings.Contains(attr.Type, "ClassVar") {
			continue
		}
		typ := attr.Type
		if i := strings.Index(typ, "InitVar["); i != -1 {
			typ = strings.TrimSuffix(typ[i+len("InitVar["):], "]")
		}
		out = append(out, Param{Name: attr.Name, Type: typ, Default: attr.Default})
	}
	return out
}

// yieldType unwraps a generator-shaped annotation to its element type. A
// non-generator annotation yields as-is; no annotation yields nothing.
func yieldType(ann string) string {
	m := generatorPattern.FindStringSubmatch(ann)
	if m == nil {
		return ann
	}
	inner := m[2]
	if strings.HasPrefix(m[1], "Generator") || m[1] == "AsyncGenerator" {
		if i := topLevelComma(inner); i != -1 {
			inner = inner[:i]
		}
	}
	return strings.TrimSpace(inner)
}

// topLevelComma returns the index of the first comma outside brackets.
func topLevelComma(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
