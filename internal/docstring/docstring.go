package docstring

// sectionOrder is the canonical order of recognized sections. Unrecognized
// names append after the ranked ones in insertion order.
var sectionOrder = []string{"Bases", "", "Parameters", "Attributes", "Returns", "Yields", "Raises"}

func sectionRank(name string) int {
	for i, v := range sectionOrder {
		if name == v {
			return i
		}
	}
	return -1
}

// Docstring is the full parsed documentation for one object.
// The section list always respects the canonical order.
type Docstring struct {
	Sections []*Section
	Type     *Type // inferred type for undocumented Returns/Yields
}

// New returns an empty Docstring.
func New() *Docstring {
	return &Docstring{Type: NewType("")}
}

// IsEmpty reports whether the docstring has no sections.
func (d *Docstring) IsEmpty() bool { return len(d.Sections) == 0 }

// Section returns the named section, or nil.
func (d *Docstring) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Has reports whether a section with the given name exists.
func (d *Docstring) Has(name string) bool { return d.Section(name) != nil }

// SectionOrCreate returns the named section, creating an empty one at its
// canonical position when absent. The creation is a deliberate side effect
// of lookup.
func (d *Docstring) SectionOrCreate(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	s := NewSection(name, "", nil)
	d.SetSection(s, false, false, false)
	return s
}

// SetSection inserts or merges a section.
//
// When a same-named section exists it is atomically replaced (replace=true)
// or updated in place with the given force policy. Otherwise the section is
// inserted before the first existing section whose canonical rank exceeds
// its own, appending when unranked; copy inserts a defensive copy instead of
// the argument itself.
func (d *Docstring) SetSection(section *Section, force, copy, replace bool) {
	name := section.Name
	for k, x := range d.Sections {
		if x.Name == name {
			if replace {
				d.Sections[k] = section
			} else {
				x.Update(section, force)
			}
			return
		}
	}
	if copy {
		section = section.Copy()
	}
	rank := sectionRank(name)
	if rank == -1 {
		d.Sections = append(d.Sections, section)
		return
	}
	for k, x := range d.Sections {
		r := sectionRank(x.Name)
		if r == -1 || rank < r {
			d.Sections = append(d.Sections[:k], append([]*Section{section}, d.Sections[k:]...)...)
			return
		}
	}
	d.Sections = append(d.Sections, section)
}

// Fragments returns the render round-trip fragments of all sections in
// document order.
func (d *Docstring) Fragments() []Fragment {
	var dst []Fragment
	for _, s := range d.Sections {
		dst = s.fragments(dst)
	}
	return dst
}
