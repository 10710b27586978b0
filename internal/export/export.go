// Package export serializes a resolved node tree to JSON, validated against
// an embedded schema before anything is written to disk.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"mkapi/internal/docstring"
	"mkapi/internal/object"
)

const schemaVersion = "v1.0.0"

//go:embed node_tree.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Tree struct {
	SchemaVersion string  `json:"schema_version"`
	GeneratedAt   string  `json:"generated_at"`
	Nodes         []*Node `json:"nodes"`
}

type Node struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix,omitempty"`
	Kind      string     `json:"kind"`
	Abstract  bool       `json:"abstract,omitempty"`
	Type      string     `json:"type,omitempty"`
	File      string     `json:"file,omitempty"`
	Line      int        `json:"line,omitempty"`
	Signature string     `json:"signature,omitempty"`
	Sections  []*Section `json:"sections,omitempty"`
	Members   []*Node    `json:"members,omitempty"`
}

type Section struct {
	Name     string  `json:"name"`
	Markdown string  `json:"markdown,omitempty"`
	Type     string  `json:"type,omitempty"`
	Items    []*Item `json:"items,omitempty"`
}

type Item struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// NewTree snapshots resolved nodes into the export model.
func NewTree(nodes []*object.Node) *Tree {
	tree := &Tree{
		SchemaVersion: schemaVersion,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Nodes:         []*Node{},
	}
	for _, n := range nodes {
		tree.Nodes = append(tree.Nodes, exportNode(n))
	}
	return tree
}

func exportNode(n *object.Node) *Node {
	out := &Node{
		ID:        n.ID,
		Name:      n.Name,
		Prefix:    n.Prefix,
		Kind:      n.Kind.String(),
		Abstract:  n.Abstract,
		Type:      n.Type.Name,
		File:      n.File,
		Line:      n.Line,
		Signature: n.Signature.String(),
	}
	for _, s := range n.Docstring.Sections {
		out.Sections = append(out.Sections, exportSection(s))
	}
	for _, m := range n.Members {
		out.Members = append(out.Members, exportNode(m))
	}
	return out
}

func exportSection(s *docstring.Section) *Section {
	out := &Section{Name: s.Name, Markdown: s.Markdown, Type: s.Type.Name}
	for _, it := range s.Items {
		out.Items = append(out.Items, &Item{
			Name:        it.Name,
			Type:        it.Type.Name,
			Description: it.Description.Name,
			Kind:        it.Kind,
		})
	}
	return out
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("node_tree.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("node_tree.schema.json")
	})
	return schema, schemaErr
}

// Validate checks the tree against the embedded schema.
func (t *Tree) Validate() error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile export schema: %w", err)
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal node tree: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize node tree: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("node tree schema validation failed: %w", err)
	}
	return nil
}

// Save validates the tree and writes it as indented JSON.
func Save(path string, tree *Tree) error {
	if err := tree.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0644)
}
