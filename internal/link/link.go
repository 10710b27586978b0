// Package link emits and resolves cross-reference markers.
//
// Links created by the engine carry a `!`-prefixed href so that a later
// resolution pass can tell them apart from user-authored Markdown links.
// The engine never computes final URLs itself; Resolve rewrites markers into
// page-relative hrefs once the page layout is known.
package link

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Pattern matches a Markdown link: [text](href).
var Pattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// replacePattern additionally matches the `name_` shorthand.
var replacePattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)|(\S+)_`)

// Link returns a Markdown link with a mark that indicates the link was
// created by the engine rather than the docstring author.
func Link(name, href string) string {
	return "[" + name + "](!" + href + ")"
}

// Resolver maps an object name, as written in a docstring, to its fully
// qualified name. The empty string means the name is unknown.
type Resolver func(name string) string

// ReplaceLink rewrites `[text](name)`, `[name]()` and `name_` shorthand in
// markdown into engine markers, using resolve to obtain qualified names.
// Names that cannot be resolved are left untouched.
func ReplaceLink(markdown string, resolve Resolver) string {
	return replacePattern.ReplaceAllStringFunc(markdown, func(match string) string {
		groups := replacePattern.FindStringSubmatch(match)
		text, name, rest := groups[1], groups[2], groups[3]
		if rest != "" {
			name, text = rest, ""
		} else if name == "" {
			name, text = text, ""
		}
		fullname := resolve(name)
		if fullname == "" {
			return match
		}
		if text != "" {
			name = text
		}
		return Link(name, fullname)
	})
}

// Resolve rewrites markers in markdown into page-relative URLs.
//
// srcPath is the path of the page being rendered and apiPaths are the paths
// of all generated API pages. An engine marker whose target is not covered
// by any API page degrades to its display text; user-authored links are kept
// verbatim. A `!!` prefix escapes resolution: the link is emitted as an
// ordinary link with the prefix stripped.
func Resolve(markdown, srcPath string, apiPaths []string) string {
	return Pattern.ReplaceAllStringFunc(markdown, func(match string) string {
		groups := Pattern.FindStringSubmatch(match)
		name, href := groups[1], groups[2]
		if strings.HasPrefix(href, "!!") {
			return "[" + name + "](" + href[2:] + ")"
		}
		fromEngine := false
		if strings.HasPrefix(href, "!") {
			href = href[1:]
			fromEngine = true
		}
		if resolved := resolveHref(href, srcPath, apiPaths); resolved != "" {
			return "[" + name + "](" + resolved + ")"
		}
		if fromEngine {
			return name
		}
		return match
	})
}

func resolveHref(name, srcPath string, apiPaths []string) string {
	if name == "" {
		return ""
	}
	apiPath := matchLast(name, apiPaths)
	if apiPath == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(srcPath), apiPath)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel) + "#" + name
}

// matchLast returns the last API page whose basename prefixes name, so the
// most specific page wins for dotted module paths.
func matchLast(name string, apiPaths []string) string {
	match := ""
	for _, apiPath := range apiPaths {
		base := filepath.Base(apiPath)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if strings.HasPrefix(name, base) {
			match = apiPath
		}
	}
	return match
}
