package crawler

import "podmanager/internal/resource"

// Link is a discovered edge between two resources
type Link struct {
	Source resource.Resource
	Target resource.Resource
	Name   string
}

type linkKey struct {
	source, target, name string
}

func (l Link) key() linkKey {
	return linkKey{source: l.Source.URI(), target: l.Target.URI(), name: l.Name}
}

// Graph is the insertion-ordered edge set produced by one crawl
type Graph struct {
	root      resource.Resource
	links     []Link
	index     map[linkKey]struct{}
	resources []resource.Resource
	seen      map[string]struct{}
}

// NewGraph creates an empty graph rooted at root, which may be nil
func NewGraph(root resource.Resource) *Graph {
	g := &Graph{
		root:  root,
		index: make(map[linkKey]struct{}),
		seen:  make(map[string]struct{}),
	}
	if root != nil {
		g.addResource(root)
	}
	return g
}

// Add inserts l and reports whether it was new
func (g *Graph) Add(l Link) bool {
	k := l.key()
	if _, ok := g.index[k]; ok {
		return false
	}
	g.index[k] = struct{}{}
	g.links = append(g.links, l)
	g.addResource(l.Source)
	g.addResource(l.Target)
	return true
}

func (g *Graph) addResource(r resource.Resource) {
	if _, ok := g.seen[r.URI()]; ok {
		return
	}
	g.seen[r.URI()] = struct{}{}
	g.resources = append(g.resources, r)
}

// Contains reports whether the (source, target, name) triple is in the graph
func (g *Graph) Contains(source, target, name string) bool {
	_, ok := g.index[linkKey{source: source, target: target, name: name}]
	return ok
}

// Root returns the resource the crawl started from, or nil
func (g *Graph) Root() resource.Resource {
	return g.root
}

// Links returns the edges in discovery order
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// Len returns the number of edges
func (g *Graph) Len() int {
	return len(g.links)
}

// Resources returns the distinct resources in first-seen order, root first
func (g *Graph) Resources() []resource.Resource {
	out := make([]resource.Resource, len(g.resources))
	copy(out, g.resources)
	return out
}
