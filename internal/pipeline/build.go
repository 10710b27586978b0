// Package pipeline orchestrates a full documentation build: scan sources,
// build the node tree, resolve inheritance, transform for presentation, and
// write one Markdown page per module.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"mkapi/internal/config"
	"mkapi/internal/export"
	"mkapi/internal/inherit"
	"mkapi/internal/inspect"
	"mkapi/internal/link"
	"mkapi/internal/object"
	"mkapi/internal/transform"
)

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger attaches a logger to ctx for use by the pipeline.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext retrieves the attached logger, or the default one.
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Builder runs documentation builds against one source tree.
type Builder struct {
	cfg   *config.Config
	insp  *inspect.Python
	arena *object.Arena
}

// NewBuilder scans the configured source root and prepares the node arena.
func NewBuilder(ctx context.Context, cfg *config.Config) (*Builder, error) {
	logger := LoggerFromContext(ctx)
	start := time.Now()
	insp, err := inspect.NewPython(cfg.Project.Root)
	if err != nil {
		return nil, err
	}
	arena, err := object.NewArena(insp, cfg.Cache.Capacity)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned sources",
		"root", cfg.Project.Root,
		"modules", len(insp.ModuleIDs()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return &Builder{cfg: cfg, insp: insp, arena: arena}, nil
}

// Arena exposes the node arena for inspection commands.
func (b *Builder) Arena() *object.Arena { return b.arena }

// modules returns the module names selected by the package filter, or all
// discovered modules when no filter is configured.
func (b *Builder) modules() []string {
	ids := b.insp.ModuleIDs()
	if len(b.cfg.Project.Packages) == 0 {
		return ids
	}
	var out []string
	for _, id := range ids {
		for _, pkg := range b.cfg.Project.Packages {
			if id == pkg || strings.HasPrefix(id, pkg+".") {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Resolve builds, inherits, and transforms the node for one module or
// object name.
func (b *Builder) Resolve(name string) (*object.Node, error) {
	node, err := b.arena.Get(name)
	if err != nil {
		return nil, err
	}
	node.Walk(func(n *object.Node) { inherit.Inherit(b.arena, n) })
	transform.Apply(node, b.cfg.Output.Filters)
	return node, nil
}

// Run builds every selected module, writes one Markdown page each, and then
// resolves cross-reference markers across the generated pages.
func (b *Builder) Run(ctx context.Context) error {
	logger := LoggerFromContext(ctx)
	start := time.Now()

	names := b.modules()
	if len(names) == 0 {
		return fmt.Errorf("no modules found under %s", b.cfg.Project.Root)
	}
	if err := os.MkdirAll(b.cfg.Output.Dir, 0755); err != nil {
		return err
	}

	pages := make(map[string]string, len(names))
	paths := make([]string, 0, len(names))
	for _, name := range names {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		node, err := b.Resolve(name)
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", name, err)
		}
		path := filepath.Join(b.cfg.Output.Dir, name+".md")
		pages[path] = node.RenderMarkdown(b.cfg.Output.HeadingLevel)
		paths = append(paths, path)
		logger.Debug("built module", "module", name, "page", path)
	}

	for path, md := range pages {
		md = link.Resolve(md, path, paths)
		if err := os.WriteFile(path, []byte(md+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	logger.Info("build finished",
		"pages", len(pages),
		"dir", b.cfg.Output.Dir,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Dump resolves every selected module and saves the node tree as validated
// JSON.
func (b *Builder) Dump(ctx context.Context, path string) error {
	logger := LoggerFromContext(ctx)
	var nodes []*object.Node
	for _, name := range b.modules() {
		node, err := b.Resolve(name)
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", name, err)
		}
		nodes = append(nodes, node)
	}
	tree := export.NewTree(nodes)
	if err := export.Save(path, tree); err != nil {
		return err
	}
	logger.Info("node tree saved", "path", path, "modules", len(nodes))
	return nil
}
