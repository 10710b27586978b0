package inspect

import (
	"strings"
)

// universalBases are roots excluded from ancestor chains: they contribute
// no documentation of their own.
var universalBases = map[string]bool{
	"object":          true,
	"ABC":             true,
	"abc.ABC":         true,
	"ABCMeta":         true,
	"abc.ABCMeta":     true,
	"Generic":         true,
	"typing.Generic":  true,
	"Protocol":        true,
	"typing.Protocol": true,
}

// baseName strips a subscript from a base expression: "Mapping[str, int]"
// resolves as "Mapping".
func baseName(expr string) string {
	expr = strings.TrimSpace(expr)
	if i := strings.IndexByte(expr, '['); i != -1 {
		expr = expr[:i]
	}
	return expr
}

// baseObjects resolves the direct bases of a class. Bases defined outside
// the scanned tree become memberless stub classes so the chain stays
// complete.
func (p *Python) baseObjects(obj *Object) []*Object {
	var out []*Object
	for _, expr := range obj.Bases {
		name := baseName(expr)
		if name == "" || universalBases[name] {
			continue
		}
		if id := p.Resolve(obj, name); id != "" {
			if base, ok := p.objects[id]; ok && base.Category == CatClass {
				out = append(out, base)
				continue
			}
		}
		stub, ok := p.stubs[name]
		if !ok {
			prefix, short := splitPrefix(name)
			stub = &Object{Name: short, Prefix: prefix, Qualname: name, Category: CatClass}
			p.stubs[name] = stub
		}
		out = append(out, stub)
	}
	return out
}

// MRO implements Inspector with C3 linearization. Non-classes linearize to
// themselves. When C3 fails (an inconsistent hierarchy), the chain degrades
// to a depth-first dedup so inheritance still sees every ancestor.
func (p *Python) MRO(obj *Object) []*Object {
	if obj.Category != CatClass {
		return []*Object{obj}
	}
	if mro := p.linearize(obj, map[*Object]bool{}); mro != nil {
		return mro
	}
	var out []*Object
	seen := map[*Object]bool{}
	var walk func(o *Object)
	walk = func(o *Object) {
		if seen[o] {
			return
		}
		seen[o] = true
		out = append(out, o)
		for _, b := range p.baseObjects(o) {
			walk(b)
		}
	}
	walk(obj)
	return out
}

func (p *Python) linearize(obj *Object, visiting map[*Object]bool) []*Object {
	if visiting[obj] {
		return nil // cyclic bases
	}
	visiting[obj] = true
	defer delete(visiting, obj)

	bases := p.baseObjects(obj)
	seqs := make([][]*Object, 0, len(bases)+1)
	for _, b := range bases {
		sub := p.linearize(b, visiting)
		if sub == nil {
			return nil
		}
		seqs = append(seqs, sub)
	}
	if len(bases) > 0 {
		seqs = append(seqs, bases)
	}
	merged := c3Merge(seqs)
	if merged == nil && len(seqs) > 0 {
		return nil
	}
	return append([]*Object{obj}, merged...)
}

func c3Merge(seqs [][]*Object) []*Object {
	var out []*Object
	for {
		live := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				live = append(live, s)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return out
		}
		var head *Object
		for _, s := range seqs {
			cand := s[0]
			inTail := false
			for _, t := range seqs {
				for _, o := range t[1:] {
					if o == cand {
						inTail = true
					}
				}
			}
			if !inTail {
				head = cand
				break
			}
		}
		if head == nil {
			return nil // no valid linearization
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}
