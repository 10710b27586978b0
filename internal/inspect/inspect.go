// Package inspect provides the capability query interface over Python
// source: object lookup, member enumeration, method-resolution order,
// signatures, and source-derived attribute documentation.
//
// The engine's algorithms depend only on the Inspector interface; the
// tree-sitter backed implementation lives in python.go.
package inspect

import (
	"errors"
	"strings"

	"mkapi/internal/docstring"
)

// ErrNotFound is returned when a qualified name resolves to no known object.
var ErrNotFound = errors.New("object not found")

// Category is the raw syntactic category of a source object.
type Category int

const (
	CatModule Category = iota
	CatClass
	CatFunction
)

// Param is one parameter descriptor. Default is the source literal of the
// default value; the empty string means the parameter is required.
type Param struct {
	Name    string
	Type    string
	Default string
}

// Attribute is one source-documented assignment: a module/class-level
// annotated assignment or a `self.x = ...` statement with adjacent comment
// or trailing string-literal documentation.
type Attribute struct {
	Name        string
	Type        string
	Description string
	Default     string // source literal of the assigned value
	Line        int
}

// Object is one entity found in source. Objects form a tree mirroring
// source structure: modules own classes and functions, classes own methods
// and nested classes.
type Object struct {
	Name       string
	Prefix     string
	Qualname   string
	Module     string
	File       string
	Line       int
	Doc        string // cleaned docstring text
	Category   Category
	Package    bool     // module backed by __init__.py
	Bases      []string // raw base expressions, classes only
	Params     []Param
	Returns    string // raw return annotation
	HasYield   bool
	HasSelf    bool
	Dataclass  bool
	Abstract   bool
	Property   bool
	Setter     bool // property with a paired setter
	ClassMeth  bool
	StaticMeth bool
	Members    []*Object
	Assigns    []Attribute
}

// ID returns the fully qualified dotted name.
func (o *Object) ID() string {
	if o.Prefix == "" {
		return o.Name
	}
	return o.Prefix + "." + o.Name
}

// Member returns the direct member with the given name, or nil.
func (o *Object) Member(name string) *Object {
	for _, m := range o.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Inspector is the narrow capability interface the engine depends on.
// Implementations back it with static analysis over parsed source.
type Inspector interface {
	// Lookup resolves a fully qualified name. Missing names return an
	// error wrapping ErrNotFound.
	Lookup(name string) (*Object, error)
	// Members returns the direct members of obj in source order.
	Members(obj *Object) []*Object
	// MRO returns the linearized ancestor chain of a class, including obj
	// itself first and excluding the universal root.
	MRO(obj *Object) []*Object
	// Signature derives the parameter/return descriptors of obj.
	Signature(obj *Object) *Signature
	// Attributes returns source-derived attribute documentation for obj.
	// Objects without retrievable source yield an empty list, not an error.
	Attributes(obj *Object) []Attribute
	// Source returns the defining file and line of obj.
	Source(obj *Object) (string, int)
	// Resolve maps a name as written inside obj's module to a fully
	// qualified name, or "" when unknown.
	Resolve(obj *Object, name string) string
}

// Signature holds derived parameter and attribute sections plus return and
// yield type strings for one callable or class.
type Signature struct {
	Valid      bool // false when the object has no callable signature
	Parameters *docstring.Section
	Attributes *docstring.Section
	Defaults   map[string]string
	Returns    string
	Yields     string
}

// NewSignature returns an empty, invalid signature.
func NewSignature() *Signature {
	return &Signature{
		Parameters: docstring.NewSection("Parameters", "", nil),
		Attributes: docstring.NewSection("Attributes", "", nil),
		Defaults:   map[string]string{},
	}
}

// Section returns the Parameters or Attributes section by name.
func (s *Signature) Section(name string) *docstring.Section {
	if name == "Attributes" {
		return s.Attributes
	}
	return s.Parameters
}

// Has reports whether a parameter with the given name exists.
func (s *Signature) Has(name string) bool { return s.Parameters.Has(name) }

// Arguments returns the rendered argument list, defaults included, or nil
// for objects without a callable signature.
func (s *Signature) Arguments() []string {
	if !s.Valid {
		return nil
	}
	args := make([]string, 0, len(s.Parameters.Items))
	for _, item := range s.Parameters.Items {
		arg := item.Name
		if d := s.Defaults[arg]; d != "" {
			arg += "=" + d
		}
		args = append(args, arg)
	}
	return args
}

// String renders the signature as "(a, b=1)".
func (s *Signature) String() string {
	args := s.Arguments()
	if args == nil {
		return ""
	}
	return "(" + strings.Join(args, ", ") + ")"
}
