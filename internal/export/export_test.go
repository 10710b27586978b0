package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkapi/internal/docstring"
	"mkapi/internal/inspect"
	"mkapi/internal/object"
)

func sampleNode() *object.Node {
	doc := docstring.New()
	doc.SetSection(docstring.NewSection("", "A module.", nil), false, false, false)
	params := docstring.NewSection("Parameters", "", []*docstring.Item{
		docstring.NewItem("x", docstring.NewType("int"), docstring.NewInline("First.")),
	})
	fnDoc := docstring.New()
	fnDoc.SetSection(params, false, false, false)

	fn := &object.Node{
		ID:        "mod.add",
		Name:      "add",
		Prefix:    "mod",
		Kind:      object.KindFunction,
		Type:      docstring.NewType("int"),
		Line:      3,
		Signature: inspect.NewSignature(),
		Docstring: fnDoc,
	}
	return &object.Node{
		ID:        "mod",
		Name:      "mod",
		Kind:      object.KindModule,
		Type:      docstring.NewType(""),
		Line:      1,
		Signature: inspect.NewSignature(),
		Docstring: doc,
		Members:   []*object.Node{fn},
	}
}

func TestNewTree(t *testing.T) {
	tree := NewTree([]*object.Node{sampleNode()})
	require.Len(t, tree.Nodes, 1)

	mod := tree.Nodes[0]
	assert.Equal(t, "mod", mod.ID)
	assert.Equal(t, "module", mod.Kind)
	require.Len(t, mod.Members, 1)

	fn := mod.Members[0]
	assert.Equal(t, "function", fn.Kind)
	assert.Equal(t, "int", fn.Type)
	require.Len(t, fn.Sections, 1)
	require.Len(t, fn.Sections[0].Items, 1)
	assert.Equal(t, "First.", fn.Sections[0].Items[0].Description)
}

func TestValidate(t *testing.T) {
	t.Run("valid tree", func(t *testing.T) {
		assert.NoError(t, NewTree([]*object.Node{sampleNode()}).Validate())
	})

	t.Run("empty tree is valid", func(t *testing.T) {
		assert.NoError(t, NewTree(nil).Validate())
	})

	t.Run("bad kind rejected", func(t *testing.T) {
		tree := NewTree([]*object.Node{sampleNode()})
		tree.Nodes[0].Kind = "martian"
		assert.Error(t, tree.Validate())
	})

	t.Run("missing id rejected", func(t *testing.T) {
		tree := NewTree([]*object.Node{sampleNode()})
		tree.Nodes[0].ID = ""
		assert.Error(t, tree.Validate())
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "node_tree.json")
	require.NoError(t, Save(path, NewTree([]*object.Node{sampleNode()})))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var loaded Tree
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.Equal(t, schemaVersion, loaded.SchemaVersion)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "mod", loaded.Nodes[0].ID)
}
