package inherit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkapi/internal/docstring"
	"mkapi/internal/inspect"
	"mkapi/internal/object"
)

type fakeInspector struct {
	objects map[string]*inspect.Object
	mro     map[string][]string
	sigs    map[string]*inspect.Signature
}

func newFakeInspector(roots ...*inspect.Object) *fakeInspector {
	f := &fakeInspector{
		objects: map[string]*inspect.Object{},
		mro:     map[string][]string{},
		sigs:    map[string]*inspect.Signature{},
	}
	var register func(obj *inspect.Object)
	register = func(obj *inspect.Object) {
		f.objects[obj.ID()] = obj
		for _, m := range obj.Members {
			register(m)
		}
	}
	for _, root := range roots {
		register(root)
	}
	return f
}

func (f *fakeInspector) Lookup(name string) (*inspect.Object, error) {
	if obj, ok := f.objects[name]; ok {
		return obj, nil
	}
	return nil, inspect.ErrNotFound
}

func (f *fakeInspector) Members(obj *inspect.Object) []*inspect.Object { return obj.Members }

func (f *fakeInspector) MRO(obj *inspect.Object) []*inspect.Object {
	names, ok := f.mro[obj.ID()]
	if !ok {
		return []*inspect.Object{obj}
	}
	out := make([]*inspect.Object, 0, len(names))
	for _, name := range names {
		out = append(out, f.objects[name])
	}
	return out
}

func (f *fakeInspector) Signature(obj *inspect.Object) *inspect.Signature {
	if sig, ok := f.sigs[obj.ID()]; ok {
		return sig
	}
	sig := inspect.NewSignature()
	sig.Valid = obj.Category != inspect.CatModule
	return sig
}

func (f *fakeInspector) Attributes(obj *inspect.Object) []inspect.Attribute { return obj.Assigns }

func (f *fakeInspector) Source(obj *inspect.Object) (string, int) { return obj.File, obj.Line }

func (f *fakeInspector) Resolve(_ *inspect.Object, name string) string {
	if _, ok := f.objects[name]; ok {
		return name
	}
	for id := range f.objects {
		if strings.HasSuffix(id, "."+name) {
			return id
		}
	}
	return ""
}

func signature(params ...[2]string) *inspect.Signature {
	sig := inspect.NewSignature()
	sig.Valid = true
	for _, p := range params {
		item := docstring.NewItem(p[0], docstring.NewType(p[1]), nil)
		sig.Parameters.Items = append(sig.Parameters.Items, item)
	}
	return sig
}

func class(name, doc string, bases ...string) *inspect.Object {
	return &inspect.Object{
		Name: name, Prefix: "mod", Qualname: name, Module: "mod",
		Category: inspect.CatClass, Doc: doc, Bases: bases,
	}
}

func paramDesc(node *object.Node, name string) string {
	section := node.Docstring.Section("Parameters")
	if section == nil {
		return ""
	}
	item := section.Item(name)
	if item == nil {
		return ""
	}
	return item.Description.Name
}

func TestInheritFillsUndocumentedParameter(t *testing.T) {
	base := class("Base", "The base.\n\nArgs:\n    x: From the base.")
	derived := class("Derived", "The derived.", "Base")

	f := newFakeInspector(base, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Base"}
	f.sigs["mod.Base"] = signature([2]string{"x", "int"})
	f.sigs["mod.Derived"] = signature([2]string{"x", "int"}, [2]string{"y", "str"})

	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	require.False(t, IsComplete(node))
	Inherit(arena, node)

	assert.Equal(t, "From the base.", paramDesc(node, "x"))
	assert.Equal(t, "", paramDesc(node, "y"), "the base does not document y")
	assert.False(t, IsComplete(node), "incomplete after all bases are exhausted")
}

func TestInheritStopsOnceComplete(t *testing.T) {
	base := class("Base", "The base.\n\nArgs:\n    x: From the base.")
	far := class("Far", "The far base.\n\nArgs:\n    x: From the far base.")
	derived := class("Derived", "The derived.", "Base", "Far")

	f := newFakeInspector(base, far, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Base", "mod.Far"}
	f.sigs["mod.Derived"] = signature([2]string{"x", "int"})

	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	Inherit(arena, node)
	assert.Equal(t, "From the base.", paramDesc(node, "x"))
	assert.True(t, IsComplete(node))
}

func TestInheritDiamondPrecedence(t *testing.T) {
	// Both bases document x differently and y stays undocumented, so the
	// ancestor walk cannot stop early. The first ancestor to supply a
	// description keeps it: later merges never overwrite it.
	left := class("Left", "The left base.\n\nArgs:\n    x: From the left base.")
	right := class("Right", "The right base.\n\nArgs:\n    x: From the right base.")
	derived := class("Derived", "The derived.", "Left", "Right")

	f := newFakeInspector(left, right, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Left", "mod.Right"}
	f.sigs["mod.Derived"] = signature([2]string{"x", "int"}, [2]string{"y", "str"})

	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	Inherit(arena, node)
	assert.Equal(t, "From the left base.", paramDesc(node, "x"))
	assert.False(t, IsComplete(node))
}

func TestInheritRestrictsParametersToSignature(t *testing.T) {
	base := class("Base", "The base.\n\nArgs:\n    x: Shared.\n    z: Base only.")
	derived := class("Derived", "The derived.", "Base")

	f := newFakeInspector(base, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Base"}
	f.sigs["mod.Derived"] = signature([2]string{"x", "int"})

	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	Inherit(arena, node)
	section := node.Docstring.Section("Parameters")
	require.NotNil(t, section)
	assert.True(t, section.Has("x"))
	assert.False(t, section.Has("z"), "inherited extras outside the signature are dropped")
}

func TestInheritMemberMethods(t *testing.T) {
	baseMethod := &inspect.Object{
		Name: "run", Prefix: "mod.Base", Qualname: "Base.run", Module: "mod",
		Category: inspect.CatFunction, HasSelf: true, Line: 5,
		Doc: "Run it.\n\nArgs:\n    x: From the base method.",
	}
	base := class("Base", "The base.")
	base.Members = []*inspect.Object{baseMethod}

	derivedMethod := &inspect.Object{
		Name: "run", Prefix: "mod.Derived", Qualname: "Derived.run", Module: "mod",
		Category: inspect.CatFunction, HasSelf: true, Line: 5,
		Doc: "Run it differently.",
	}
	derived := class("Derived", "The derived.", "Base")
	derived.Members = []*inspect.Object{derivedMethod}

	f := newFakeInspector(base, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Base"}
	f.sigs["mod.Derived.run"] = signature([2]string{"x", "int"})
	f.sigs["mod.Base.run"] = signature([2]string{"x", "int"})

	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	Inherit(arena, node)
	member := node.Member("run")
	require.NotNil(t, member)
	assert.Equal(t, "From the base method.", paramDesc(member, "x"))
}

func TestInheritIgnoresNonClasses(t *testing.T) {
	fn := &inspect.Object{
		Name: "f", Prefix: "mod", Qualname: "f", Module: "mod",
		Category: inspect.CatFunction, Doc: "A function.",
	}
	f := newFakeInspector(fn)
	arena, err := object.NewArena(f, 0)
	require.NoError(t, err)
	node, err := arena.Get("mod.f")
	require.NoError(t, err)

	Inherit(arena, node) // must not panic or alter anything
	assert.Equal(t, "A function.", node.Docstring.Sections[0].Markdown)
}
