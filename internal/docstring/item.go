// Package docstring parses free-text docstrings into a typed section/item
// tree and provides the merge/update operations used by inheritance
// resolution and postprocessing.
//
// Two dialects are supported: the colon-header form ("Args:") and the
// underline form ("Parameters" followed by a dashed line). Lookup helpers
// that create missing entries are spelled ItemOrCreate/SectionOrCreate to
// keep the mutation visible at call sites.
package docstring

import (
	"errors"
	"fmt"
	"strings"

	"mkapi/internal/link"
	"mkapi/internal/markdown"
)

// ErrNameMismatch is returned when an update or merge is attempted across
// items or sections with different names. It guards against silently
// cross-wiring unrelated documentation and is never recovered locally.
var ErrNameMismatch = errors.New("name mismatch")

// Fragment is one markup fragment of the rendered sequence. GetMarkdown and
// SetHTML form the round trip with the external renderer: fragments are
// joined with a private separator, rendered, and distributed back in the
// same order. SetMarkdown supports in-place rewriting passes such as link
// resolution.
type Fragment interface {
	GetMarkdown() string
	SetMarkdown(md string)
	SetHTML(html string)
}

// Inline is free-form markup text together with its rendered HTML.
type Inline struct {
	Name     string
	Markdown string
	HTML     string
}

// NewInline returns an Inline whose markdown equals its text.
func NewInline(text string) *Inline {
	return &Inline{Name: text, Markdown: text}
}

func (x *Inline) IsEmpty() bool { return x.Name == "" }

// GetMarkdown implements Fragment.
func (x *Inline) GetMarkdown() string { return x.Markdown }

// SetMarkdown implements Fragment.
func (x *Inline) SetMarkdown(md string) { x.Markdown = md }

// SetHTML stores HTML after cleaning paragraph tags.
func (x *Inline) SetHTML(html string) { x.HTML = markdown.StripPTags(html) }

func (x *Inline) Copy() *Inline { return NewInline(x.Name) }

func (x *Inline) fragments(dst []Fragment) []Fragment {
	if x.Markdown != "" {
		dst = append(dst, x)
	}
	return dst
}

// Type is a type annotation string, possibly containing a cross-reference
// marker. Plain types skip the render round trip: their HTML is the text
// itself and they contribute no fragment.
type Type struct {
	Name     string
	Markdown string
	HTML     string
}

// NewType returns a Type. Only names holding a Markdown link take part in
// the render round trip.
func NewType(name string) *Type {
	t := &Type{Name: name}
	if link.Pattern.MatchString(name) {
		t.Markdown = name
	} else {
		t.HTML = name
	}
	return t
}

func (t *Type) IsEmpty() bool { return t.Name == "" }

// GetMarkdown implements Fragment.
func (t *Type) GetMarkdown() string { return t.Markdown }

// SetMarkdown implements Fragment.
func (t *Type) SetMarkdown(md string) { t.Markdown = md }

// SetHTML stores HTML after cleaning paragraph tags.
func (t *Type) SetHTML(html string) { t.HTML = markdown.StripPTags(html) }

func (t *Type) Copy() *Type { return NewType(t.Name) }

func (t *Type) fragments(dst []Fragment) []Fragment {
	if t.Markdown != "" {
		dst = append(dst, t)
	}
	return dst
}

// Item is one entry within a section: a parameter, an attribute, or a raised
// exception. Name may be empty for unnamed Returns/Yields entries.
type Item struct {
	Name        string
	Markdown    string // set when the name itself carries a link
	HTML        string
	Type        *Type
	Description *Inline
	Kind        string // presentation hint, e.g. "readonly property"
}

// NewItem returns an Item. Nil type or description default to empty values.
func NewItem(name string, typ *Type, description *Inline) *Item {
	if typ == nil {
		typ = NewType("")
	}
	if description == nil {
		description = NewInline("")
	}
	it := &Item{Name: name, Type: typ, Description: description}
	if link.Pattern.MatchString(name) {
		it.Markdown = name
	} else {
		it.HTML = name
	}
	return it
}

// ToTuple returns (name, type, description) for compact assertions.
func (it *Item) ToTuple() (string, string, string) {
	return it.Name, it.Type.Name, it.Description.Name
}

// GetMarkdown implements Fragment.
func (it *Item) GetMarkdown() string { return it.Markdown }

// SetMarkdown implements Fragment.
func (it *Item) SetMarkdown(md string) { it.Markdown = md }

// SetHTML stores HTML, rewriting <strong> emphasis back to dunder form.
func (it *Item) SetHTML(html string) {
	html = strings.ReplaceAll(html, "<strong>", "__")
	html = strings.ReplaceAll(html, "</strong>", "__")
	it.HTML = markdown.StripPTags(html)
}

// SetType sets the type from other unless a type is already present, or
// unconditionally when force is true. Empty incoming types never overwrite.
func (it *Item) SetType(typ *Type, force bool) {
	if !force && !it.Type.IsEmpty() {
		return
	}
	if !typ.IsEmpty() {
		it.Type = typ.Copy()
	}
}

// SetDescription sets the description with the same precedence as SetType.
func (it *Item) SetDescription(description *Inline, force bool) {
	if !force && !it.Description.IsEmpty() {
		return
	}
	if !description.IsEmpty() {
		it.Description = description.Copy()
	}
}

// Update copies type and description from other onto it. Without force only
// empty fields are filled; with force non-empty incoming fields always win.
// Updating across different names returns ErrNameMismatch.
func (it *Item) Update(other *Item, force bool) error {
	if other.Name != it.Name {
		return fmt.Errorf("%w: %q != %q", ErrNameMismatch, it.Name, other.Name)
	}
	it.SetDescription(other.Description, force)
	it.SetType(other.Type, force)
	return nil
}

// Copy returns a deep copy, so merged items never alias their origin.
func (it *Item) Copy() *Item {
	c := NewItem(it.Name, it.Type.Copy(), it.Description.Copy())
	c.Kind = it.Kind
	return c
}

func (it *Item) fragments(dst []Fragment) []Fragment {
	if it.Markdown != "" {
		dst = append(dst, it)
	}
	dst = it.Type.fragments(dst)
	dst = it.Description.fragments(dst)
	return dst
}
