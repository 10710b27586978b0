package docstring

import (
	"fmt"

	"mkapi/internal/markdown"
)

// Section is a named, ordered list of items plus optional free text.
// A section counts as empty when it holds no items, regardless of markdown.
type Section struct {
	Name     string
	Markdown string
	HTML     string
	Items    []*Item
	Type     *Type // used for Returns and Yields
}

// NewSection returns a Section. Doctest blocks in the markdown body are
// fenced so the external renderer keeps them verbatim.
func NewSection(name, md string, items []*Item) *Section {
	if md != "" {
		md = markdown.AddFence(md)
	}
	return &Section{Name: name, Markdown: md, Items: items, Type: NewType("")}
}

// IsEmpty reports whether the section has no items.
func (s *Section) IsEmpty() bool { return len(s.Items) == 0 }

// Item returns the named item, or nil.
func (s *Section) Item(name string) *Item {
	for _, it := range s.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// Has reports whether an item with the given name exists.
func (s *Section) Has(name string) bool { return s.Item(name) != nil }

// ItemOrCreate returns the named item, creating and appending an empty one
// when absent. The creation is a deliberate side effect of lookup.
func (s *Section) ItemOrCreate(name string) *Item {
	if it := s.Item(name); it != nil {
		return it
	}
	it := NewItem(name, nil, nil)
	s.Items = append(s.Items, it)
	return it
}

// Delete removes the named item. Removal of a missing name is an error.
func (s *Section) Delete(name string) error {
	for k, it := range s.Items {
		if it.Name == name {
			s.Items = append(s.Items[:k], s.Items[k+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item not found: %s", name)
}

// SetItem updates a same-named item in place, or appends a defensive copy.
func (s *Section) SetItem(item *Item, force bool) {
	for _, x := range s.Items {
		if x.Name == item.Name {
			x.Update(item, force) //nolint:errcheck // names are equal here
			return
		}
	}
	s.Items = append(s.Items, item.Copy())
}

// Update layers every item of other onto s with the given force policy.
func (s *Section) Update(other *Section, force bool) {
	for _, item := range other.Items {
		s.SetItem(item, force)
	}
}

// Merge returns a new Section holding s's items first, then other's items
// layered on top with the given force policy. Neither input is mutated;
// items new from other append at the end. Merging across different names
// returns ErrNameMismatch.
func (s *Section) Merge(other *Section, force bool) (*Section, error) {
	if other.Name != s.Name {
		return nil, fmt.Errorf("%w: %q != %q", ErrNameMismatch, s.Name, other.Name)
	}
	merged := NewSection(s.Name, "", nil)
	for _, item := range s.Items {
		merged.SetItem(item, false)
	}
	for _, item := range other.Items {
		merged.SetItem(item, force)
	}
	return merged, nil
}

// Copy returns a deep copy of the section.
func (s *Section) Copy() *Section {
	items := make([]*Item, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, it.Copy())
	}
	c := NewSection(s.Name, "", items)
	c.Markdown = s.Markdown
	c.Type = s.Type.Copy()
	return c
}

// GetMarkdown implements Fragment.
func (s *Section) GetMarkdown() string { return s.Markdown }

// SetMarkdown implements Fragment.
func (s *Section) SetMarkdown(md string) { s.Markdown = md }

// Fragments returns the render round-trip fragments of this section alone.
func (s *Section) Fragments() []Fragment { return s.fragments(nil) }

// SetHTML stores the rendered HTML of the free-text body.
func (s *Section) SetHTML(html string) { s.HTML = html }

func (s *Section) fragments(dst []Fragment) []Fragment {
	dst = s.Type.fragments(dst)
	if s.Markdown != "" {
		dst = append(dst, s)
	}
	for _, item := range s.Items {
		dst = item.fragments(dst)
	}
	return dst
}
