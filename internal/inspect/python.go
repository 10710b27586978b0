package inspect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"mkapi/internal/markdown"
)

// Python is an Inspector backed by a static tree-sitter pass over a Python
// source tree. All files are parsed once at construction; lookups afterwards
// are map reads.
type Python struct {
	root    string
	objects map[string]*Object
	modules []string
	lines   map[string][]string
	stubs   map[string]*Object
}

// NewPython parses every .py file under root. Root is the directory that
// contains the top-level packages or modules, so "pkg/mod.py" becomes the
// module "pkg.mod".
func NewPython(root string) (*Python, error) {
	p := &Python{
		root:    root,
		objects: map[string]*Object{},
		lines:   map[string][]string{},
		stubs:   map[string]*Object{},
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		return p.parseFile(parser, path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(p.modules)
	p.attachSubmodules()
	return p, nil
}

// ModuleIDs returns the dotted names of all discovered modules, sorted.
func (p *Python) ModuleIDs() []string {
	return append([]string(nil), p.modules...)
}

// Lookup implements Inspector.
func (p *Python) Lookup(name string) (*Object, error) {
	if obj, ok := p.objects[name]; ok {
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Members implements Inspector.
func (p *Python) Members(obj *Object) []*Object { return obj.Members }

// Source implements Inspector.
func (p *Python) Source(obj *Object) (string, int) { return obj.File, obj.Line }

// Resolve implements Inspector: it maps a name written inside obj's module
// to a qualified name, trying module scope, then the global table, then a
// deterministic suffix match.
func (p *Python) Resolve(obj *Object, name string) string {
	if name == "" {
		return ""
	}
	if o, ok := p.objects[obj.Module+"."+name]; ok {
		return o.ID()
	}
	if o, ok := p.objects[name]; ok {
		return o.ID()
	}
	var matches []string
	for id := range p.objects {
		if strings.HasSuffix(id, "."+name) {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func (p *Python) moduleID(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		rel = path
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".py")
	rel = strings.TrimSuffix(rel, "/__init__")
	if rel == "__init__" {
		rel = filepath.Base(p.root)
	}
	return strings.ReplaceAll(rel, "/", ".")
}

func (p *Python) parseFile(parser *sitter.Parser, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.lines[path] = strings.Split(string(src), "\n")

	id := p.moduleID(path)
	prefix, name := splitPrefix(id)
	mod := &Object{
		Name:     name,
		Prefix:   prefix,
		Module:   id,
		File:     path,
		Line:     1,
		Category: CatModule,
		Package:  strings.HasSuffix(path, "__init__.py"),
	}
	root := tree.RootNode()
	mod.Doc = blockDocstring(root, src)
	p.parseBlock(root, src, mod, "")
	p.register(mod)
	p.modules = append(p.modules, id)
	return nil
}

func (p *Python) register(obj *Object) {
	p.objects[obj.ID()] = obj
	for _, m := range obj.Members {
		p.register(m)
	}
}

// attachSubmodules makes packages own their direct submodules as members,
// sorted by name, after all files are parsed.
func (p *Python) attachSubmodules() {
	for _, id := range p.modules {
		mod := p.objects[id]
		parent, ok := p.objects[mod.Prefix]
		if !ok || !parent.Package {
			continue
		}
		parent.Members = append(parent.Members, mod)
	}
}

// parseBlock walks the statements of a module or class body.
func (p *Python) parseBlock(block *sitter.Node, src []byte, owner *Object, qual string) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		var decorators []string
		if stmt.Type() == "decorated_definition" {
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				if c := stmt.NamedChild(j); c.Type() == "decorator" {
					decorators = append(decorators, strings.TrimPrefix(c.Content(src), "@"))
				}
			}
			stmt = stmt.ChildByFieldName("definition")
			if stmt == nil {
				continue
			}
		}
		switch stmt.Type() {
		case "function_definition":
			p.parseFunction(stmt, src, owner, qual, decorators)
		case "class_definition":
			p.parseClass(stmt, src, owner, qual, decorators)
		case "expression_statement":
			if a := stmt.NamedChild(0); a != nil && a.Type() == "assignment" {
				p.scrapeAssign(a, src, owner, false)
			}
		}
	}
}

func (p *Python) parseClass(node *sitter.Node, src []byte, owner *Object, qual string, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return
	}
	name := nameNode.Content(src)
	obj := &Object{
		Name:     name,
		Prefix:   owner.ID(),
		Qualname: joinQual(qual, name),
		Module:   owner.Module,
		File:     owner.File,
		Line:     int(node.StartPoint().Row) + 1,
		Category: CatClass,
	}
	if sup := node.ChildByFieldName("superclasses"); sup != nil {
		for i := 0; i < int(sup.NamedChildCount()); i++ {
			c := sup.NamedChild(i)
			if c.Type() == "keyword_argument" {
				continue // metaclass=... and friends
			}
			obj.Bases = append(obj.Bases, c.Content(src))
		}
	}
	applyDecorators(obj, decorators)
	obj.Doc = blockDocstring(body, src)
	p.parseBlock(body, src, obj, obj.Qualname)
	for _, m := range obj.Members {
		if m.Abstract {
			obj.Abstract = true
			break
		}
	}
	owner.Members = append(owner.Members, obj)
}

func (p *Python) parseFunction(node *sitter.Node, src []byte, owner *Object, qual string, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return
	}
	name := nameNode.Content(src)
	obj := &Object{
		Name:     name,
		Prefix:   owner.ID(),
		Qualname: joinQual(qual, name),
		Module:   owner.Module,
		File:     owner.File,
		Line:     int(node.StartPoint().Row) + 1,
		Category: CatFunction,
	}
	applyDecorators(obj, decorators)
	if params := node.ChildByFieldName("parameters"); params != nil {
		obj.Params, obj.HasSelf = parseParams(params, src, obj.ClassMeth)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		obj.Returns = ret.Content(src)
	}
	obj.HasYield = hasYield(body)
	obj.Doc = blockDocstring(body, src)

	if isSetterDecorator(decorators) {
		if prev := owner.Member(name); prev != nil && prev.Property {
			prev.Setter = true
		}
		return
	}
	if name == "__init__" && owner.Category == CatClass {
		p.scrapeInitAssigns(body, src, owner)
	}
	owner.Members = append(owner.Members, obj)
}

func isSetterDecorator(decorators []string) bool {
	for _, d := range decorators {
		if strings.HasSuffix(decoratorBase(d), ".setter") {
			return true
		}
	}
	return false
}

func decoratorBase(d string) string {
	if i := strings.IndexByte(d, '('); i != -1 {
		return d[:i]
	}
	return d
}

func applyDecorators(obj *Object, decorators []string) {
	for _, d := range decorators {
		base := decoratorBase(d)
		short := base
		if i := strings.LastIndexByte(base, '.'); i != -1 {
			short = base[i+1:]
		}
		switch short {
		case "property", "cached_property":
			obj.Property = true
		case "classmethod":
			obj.ClassMeth = true
		case "staticmethod":
			obj.StaticMeth = true
		case "abstractmethod", "abstractproperty":
			obj.Abstract = true
			if short == "abstractproperty" {
				obj.Property = true
			}
		case "dataclass":
			obj.Dataclass = true
		}
	}
}

// parseParams extracts parameter descriptors, dropping the bound receiver
// (self, or cls for classmethods) and prefixing splat parameters.
func parseParams(params *sitter.Node, src []byte, classMeth bool) ([]Param, bool) {
	var out []Param
	hasSelf := false
	for i := 0; i < int(params.NamedChildCount()); i++ {
		c := params.NamedChild(i)
		var prm Param
		switch c.Type() {
		case "identifier":
			prm.Name = c.Content(src)
		case "typed_parameter":
			if inner := c.NamedChild(0); inner != nil {
				prm.Name = splatName(inner, src)
			}
			if t := c.ChildByFieldName("type"); t != nil {
				prm.Type = t.Content(src)
			}
		case "default_parameter", "typed_default_parameter":
			if n := c.ChildByFieldName("name"); n != nil {
				prm.Name = splatName(n, src)
			}
			if t := c.ChildByFieldName("type"); t != nil {
				prm.Type = t.Content(src)
			}
			if v := c.ChildByFieldName("value"); v != nil {
				prm.Default = v.Content(src)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			prm.Name = splatName(c, src)
		default:
			continue // "/" and "*" separators
		}
		if prm.Name == "" {
			continue
		}
		if len(out) == 0 && !hasSelf {
			if prm.Name == "self" {
				hasSelf = true
				continue
			}
			if classMeth && prm.Name == "cls" {
				continue
			}
		}
		out = append(out, prm)
	}
	return out, hasSelf
}

func splatName(node *sitter.Node, src []byte) string {
	switch node.Type() {
	case "list_splat_pattern":
		if inner := node.NamedChild(0); inner != nil {
			return "*" + inner.Content(src)
		}
	case "dictionary_splat_pattern":
		if inner := node.NamedChild(0); inner != nil {
			return "**" + inner.Content(src)
		}
	case "identifier":
		return node.Content(src)
	}
	return node.Content(src)
}

func hasYield(node *sitter.Node) bool {
	if node.Type() == "yield" {
		return true
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if t := c.Type(); t == "function_definition" || t == "class_definition" {
			continue
		}
		if hasYield(c) {
			return true
		}
	}
	return false
}

// blockDocstring returns the cleaned docstring of a module or block node.
func blockDocstring(block *sitter.Node, src []byte) string {
	first := block.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	s := first.NamedChild(0)
	if s == nil || s.Type() != "string" {
		return ""
	}
	return markdown.Cleandoc(stringLiteral(s.Content(src)))
}

// stringLiteral strips string prefixes and quotes from a source literal.
func stringLiteral(text string) string {
	text = strings.TrimLeft(text, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}

// scrapeAssign records a documented assignment found in a module or class
// body. Assignments without annotation and without adjacent documentation
// are ignored.
func (p *Python) scrapeAssign(node *sitter.Node, src []byte, owner *Object, selfMode bool) {
	left := node.ChildByFieldName("left")
	if left == nil {
		return
	}
	var name string
	switch {
	case !selfMode && left.Type() == "identifier":
		name = left.Content(src)
	case selfMode && left.Type() == "attribute":
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj == nil || attr == nil || obj.Content(src) != "self" {
			return
		}
		name = attr.Content(src)
	default:
		return
	}
	if strings.HasPrefix(name, "_") {
		return
	}
	typ := ""
	if t := node.ChildByFieldName("type"); t != nil {
		typ = t.Content(src)
	}
	value := ""
	if r := node.ChildByFieldName("right"); r != nil {
		value = r.Content(src)
	}
	line := int(node.StartPoint().Row) + 1
	desc := p.attrDescription(owner.File, line)
	if typ == "" && desc == "" {
		return
	}
	for _, a := range owner.Assigns {
		if a.Name == name {
			return // first occurrence wins
		}
	}
	owner.Assigns = append(owner.Assigns, Attribute{Name: name, Type: typ, Description: desc, Default: value, Line: line})
}

func (p *Python) scrapeInitAssigns(body *sitter.Node, src []byte, class *Object) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		if a := stmt.NamedChild(0); a != nil && a.Type() == "assignment" {
			p.scrapeAssign(a, src, class, true)
		}
	}
}

// attrDescription finds documentation adjacent to an assignment: a trailing
// "#:" comment, a "#:" comment on the previous line, or a string literal on
// the following lines.
func (p *Python) attrDescription(file string, lineno int) string {
	lines := p.lines[file]
	index := lineno - 1
	if index < 0 || index >= len(lines) {
		return ""
	}
	if _, after, ok := strings.Cut(lines[index], "  #: "); ok {
		return strings.TrimSpace(after)
	}
	if index > 0 {
		if prev := strings.TrimSpace(lines[index-1]); strings.HasPrefix(prev, "#: ") {
			return strings.TrimSpace(prev[3:])
		}
	}
	var docs []string
	mark := ""
	for _, line := range lines[index+1:] {
		line = strings.TrimSpace(line)
		if mark == "" {
			if line == "" {
				return ""
			}
			if strings.HasPrefix(line, `"""`) || strings.HasPrefix(line, "'''") {
				mark = line[:3]
				rest := line[3:]
				if strings.HasSuffix(rest, mark) && len(rest) >= 3 {
					return strings.TrimSpace(rest[:len(rest)-3])
				}
				docs = append(docs, rest)
				continue
			}
			return ""
		}
		if strings.HasSuffix(line, mark) {
			docs = append(docs, strings.TrimSuffix(line, mark))
			return strings.TrimSpace(strings.Join(docs, "\n"))
		}
		docs = append(docs, line)
	}
	return ""
}

func splitPrefix(id string) (string, string) {
	if i := strings.LastIndexByte(id, '.'); i != -1 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func joinQual(qual, name string) string {
	if qual == "" {
		return name
	}
	return qual + "." + name
}
