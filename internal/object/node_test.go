package object

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkapi/internal/inspect"
)

// fakeInspector serves hand-built object trees for node construction tests.
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
	sig.Valid = obj.Category != inspect.CatModule && !obj.Property
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

func newArena(t *testing.T, insp inspect.Inspector) *Arena {
	t.Helper()
	arena, err := NewArena(insp, 0)
	require.NoError(t, err)
	return arena
}

func TestArenaIdentity(t *testing.T) {
	obj := &inspect.Object{Name: "mod", Module: "mod", Category: inspect.CatModule, Doc: "A module."}
	arena := newArena(t, newFakeInspector(obj))

	a, err := arena.Get("mod")
	require.NoError(t, err)
	b, err := arena.Get("mod")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = arena.Get("missing")
	assert.ErrorIs(t, err, inspect.ErrNotFound)
}

func TestNodeConstructorHoisting(t *testing.T) {
	init := &inspect.Object{
		Name: "__init__", Prefix: "mod.C", Qualname: "C.__init__", Module: "mod",
		Category: inspect.CatFunction, HasSelf: true, Line: 3,
		Doc: "Create a C.\n\nArgs:\n    x: Value.",
	}
	class := &inspect.Object{
		Name: "C", Prefix: "mod", Qualname: "C", Module: "mod",
		Category: inspect.CatClass, Line: 1,
		Members: []*inspect.Object{init},
	}
	arena := newArena(t, newFakeInspector(class))

	node, err := arena.Get("mod.C")
	require.NoError(t, err)

	assert.Empty(t, node.Members, "constructor never appears as a member")
	require.False(t, node.Docstring.IsEmpty())
	assert.Equal(t, "Create a C.", node.Docstring.Sections[0].Markdown)
	assert.True(t, node.Docstring.Has("Parameters"))
}

func TestNodeConstructorHoistingSkipsGenericText(t *testing.T) {
	init := &inspect.Object{
		Name: "__init__", Prefix: "mod.C", Qualname: "C.__init__", Module: "mod",
		Category: inspect.CatFunction, HasSelf: true, Line: 3,
		Doc: "Initialize self.  See help(type(self)).",
	}
	class := &inspect.Object{
		Name: "C", Prefix: "mod", Qualname: "C", Module: "mod",
		Category: inspect.CatClass, Line: 1,
		Members: []*inspect.Object{init},
	}
	arena := newArena(t, newFakeInspector(class))

	node, err := arena.Get("mod.C")
	require.NoError(t, err)
	assert.True(t, node.Docstring.IsEmpty())
	assert.Empty(t, node.Members)
}

func TestNodeBasesSection(t *testing.T) {
	base := &inspect.Object{
		Name: "Base", Prefix: "mod", Qualname: "Base", Module: "mod",
		Category: inspect.CatClass, Doc: "The base.",
	}
	derived := &inspect.Object{
		Name: "Derived", Prefix: "mod", Qualname: "Derived", Module: "mod",
		Category: inspect.CatClass, Doc: "The derived.", Bases: []string{"Base"},
	}
	f := newFakeInspector(base, derived)
	f.mro["mod.Derived"] = []string{"mod.Derived", "mod.Base"}
	arena := newArena(t, f)

	node, err := arena.Get("mod.Derived")
	require.NoError(t, err)

	bases := node.Docstring.Section("Bases")
	require.NotNil(t, bases)
	assert.Equal(t, "Bases", node.Docstring.Sections[0].Name, "Bases comes first")
	require.Len(t, bases.Items, 1)
	assert.Equal(t, "[mod.Base](!mod.Base)", bases.Items[0].Type.Name)
}

func TestNodePropertyTypeSplit(t *testing.T) {
	prop := &inspect.Object{
		Name: "count", Prefix: "mod.C", Qualname: "C.count", Module: "mod",
		Category: inspect.CatFunction, Property: true, HasSelf: true, Line: 5,
		Doc: "int: The count.",
	}
	class := &inspect.Object{
		Name: "C", Prefix: "mod", Qualname: "C", Module: "mod",
		Category: inspect.CatClass, Doc: "A class.", Line: 1,
		Members: []*inspect.Object{prop},
	}
	arena := newArena(t, newFakeInspector(class))

	node, err := arena.Get("mod.C.count")
	require.NoError(t, err)

	assert.Equal(t, KindReadonlyProperty, node.Kind)
	assert.Equal(t, "int", node.Type.Name)
	assert.Equal(t, "The count.", node.Docstring.Sections[0].Markdown)
}

func TestNodeRenderRoundTrip(t *testing.T) {
	fn := &inspect.Object{
		Name: "add", Prefix: "mod", Qualname: "add", Module: "mod",
		Category: inspect.CatFunction, Line: 3,
		Doc: "Adds.\n\nArgs:\n    x: First.",
	}
	mod := &inspect.Object{
		Name: "mod", Module: "mod", Category: inspect.CatModule, Line: 1,
		Doc:     "A module.",
		Members: []*inspect.Object{fn},
	}
	arena := newArena(t, newFakeInspector(mod))

	node, err := arena.Get("mod")
	require.NoError(t, err)

	md := node.RenderMarkdown(0)
	fragments := node.Fragments()
	assert.Len(t, strings.Split(md, Separator), len(fragments))

	// Identity render: the HTML side sees exactly the markdown chunks.
	node.DistributeHTML(md)
	assert.Equal(t, "A module.", node.Docstring.Sections[0].HTML)
}

func TestNodeRenderRoundTripKeepsPlainTypeHTML(t *testing.T) {
	fn := &inspect.Object{
		Name: "add", Prefix: "mod", Qualname: "add", Module: "mod",
		Category: inspect.CatFunction, Line: 3, Doc: "Adds.",
	}
	mod := &inspect.Object{
		Name: "mod", Module: "mod", Category: inspect.CatModule, Line: 1,
		Doc: "A module.", Members: []*inspect.Object{fn},
	}
	f := newFakeInspector(mod)
	sig := inspect.NewSignature()
	sig.Valid = true
	sig.Returns = "int"
	f.sigs["mod.add"] = sig
	arena := newArena(t, f)

	node, err := arena.Get("mod")
	require.NoError(t, err)
	member := node.Member("add")
	require.NotNil(t, member)
	assert.Equal(t, "int", member.Type.Name)
	assert.Equal(t, "int", member.Type.HTML, "plain types carry their HTML up front")

	md := node.RenderMarkdown(0)
	assert.Len(t, strings.Split(md, Separator), len(node.Fragments()))

	node.DistributeHTML(md)
	assert.Equal(t, "int", member.Type.HTML, "plain types stay out of the round trip")
}

func TestNodeRenderHeadingLevels(t *testing.T) {
	fn := &inspect.Object{
		Name: "add", Prefix: "mod", Qualname: "add", Module: "mod",
		Category: inspect.CatFunction, Line: 3, Doc: "Adds.",
	}
	mod := &inspect.Object{
		Name: "mod", Module: "mod", Category: inspect.CatModule, Line: 1,
		Doc: "A module.", Members: []*inspect.Object{fn},
	}
	arena := newArena(t, newFakeInspector(mod))

	node, err := arena.Get("mod")
	require.NoError(t, err)

	md := node.RenderMarkdown(2)
	assert.Contains(t, md, "## [mod](!mod)")
	assert.Contains(t, md, "### [mod](!mod).[add](!mod.add)")
}
