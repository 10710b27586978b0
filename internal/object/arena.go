package object

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"mkapi/internal/inspect"
)

// DefaultCapacity is the arena cache size used when none is configured.
const DefaultCapacity = 1000

// Arena builds and caches nodes against one inspector. Two requests for the
// same qualified name return the identical *Node while the entry stays in
// the cache, so mutations made by postprocessing are seen everywhere.
type Arena struct {
	insp  inspect.Inspector
	cache *lru.Cache[string, *Node]
}

// NewArena returns an arena over the given inspector. Capacity bounds the
// node cache; zero or negative selects DefaultCapacity.
func NewArena(insp inspect.Inspector, capacity int) (*Arena, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, *Node](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache: %w", err)
	}
	return &Arena{insp: insp, cache: cache}, nil
}

// Inspector returns the backing inspector.
func (a *Arena) Inspector() inspect.Inspector { return a.insp }

// Get resolves a qualified name to its node, building it on a miss.
func (a *Arena) Get(name string) (*Node, error) {
	if node, ok := a.cache.Get(name); ok {
		return node, nil
	}
	obj, err := a.insp.Lookup(name)
	if err != nil {
		return nil, err
	}
	return a.Node(obj), nil
}

// Node returns the cached node for obj, building and caching it on a miss.
func (a *Arena) Node(obj *inspect.Object) *Node {
	if node, ok := a.cache.Get(obj.ID()); ok {
		return node
	}
	node := newNode(a, obj)
	a.cache.Add(obj.ID(), node)
	return node
}

// Purge drops every cached node, forcing rebuilds on the next access.
func (a *Arena) Purge() { a.cache.Purge() }
