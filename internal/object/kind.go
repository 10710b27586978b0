// Package object builds the documentation node tree: classified entities
// with postprocessed docstrings, constructed on demand through an arena
// with an LRU identity cache.
package object

import (
	"mkapi/internal/inspect"
)

// Kind classifies a documented entity. Abstractness is not a Kind: it is
// carried separately on the node, so "abstract method" is Method plus the
// Abstract flag.
type Kind int

const (
	KindModule Kind = iota
	KindPackage
	KindClass
	KindDataclass
	KindFunction
	KindMethod
	KindGenerator
	KindClassMethod
	KindStaticMethod
	KindReadonlyProperty
	KindReadwriteProperty
)

var kindNames = map[Kind]string{
	KindModule:            "module",
	KindPackage:           "package",
	KindClass:             "class",
	KindDataclass:         "dataclass",
	KindFunction:          "function",
	KindMethod:            "method",
	KindGenerator:         "generator",
	KindClassMethod:       "classmethod",
	KindStaticMethod:      "staticmethod",
	KindReadonlyProperty:  "readonly property",
	KindReadwriteProperty: "readwrite property",
}

// String returns the display name used in rendered headings.
func (k Kind) String() string { return kindNames[k] }

// IsModuleLike reports whether k is a module or package.
func (k Kind) IsModuleLike() bool { return k == KindModule || k == KindPackage }

// IsClassLike reports whether k is a class or dataclass.
func (k Kind) IsClassLike() bool { return k == KindClass || k == KindDataclass }

// IsProperty reports whether k is a readonly or readwrite property.
func (k Kind) IsProperty() bool {
	return k == KindReadonlyProperty || k == KindReadwriteProperty
}

// MatchesMode reports whether k belongs to a member synthesis mode.
// Generators count both as methods and as functions.
func (k Kind) MatchesMode(mode string) bool {
	switch mode {
	case "class":
		return k.IsClassLike()
	case "function":
		return k == KindFunction || k == KindGenerator
	case "method":
		switch k {
		case KindMethod, KindClassMethod, KindStaticMethod, KindGenerator:
			return true
		}
	}
	return false
}

// Classify determines the kind and abstractness of a source object. The
// checks run in a fixed order: dataclass before class, properties before
// other callables, then generator, classmethod, bound method, staticmethod
// by dotted qualname, and plain function last.
func Classify(obj *inspect.Object) (Kind, bool) {
	switch obj.Category {
	case inspect.CatModule:
		if obj.Package {
			return KindPackage, false
		}
		return KindModule, false
	case inspect.CatClass:
		if obj.Dataclass {
			return KindDataclass, obj.Abstract
		}
		return KindClass, obj.Abstract
	}
	switch {
	case obj.Property:
		if obj.Setter {
			return KindReadwriteProperty, obj.Abstract
		}
		return KindReadonlyProperty, obj.Abstract
	case obj.HasYield:
		return KindGenerator, obj.Abstract
	case obj.ClassMeth:
		return KindClassMethod, obj.Abstract
	case obj.HasSelf:
		return KindMethod, obj.Abstract
	case obj.StaticMeth || isDotted(obj.Qualname):
		return KindStaticMethod, obj.Abstract
	}
	return KindFunction, obj.Abstract
}

func isDotted(qualname string) bool {
	for _, r := range qualname {
		if r == '.' {
			return true
		}
	}
	return false
}
