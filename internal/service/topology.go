package service

import (
	"context"
	"errors"
	"fmt"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
	"podmanager/internal/topology"
)

var (
	// ErrNotFound is returned when a Context addresses no stored object
	ErrNotFound = errors.New("not found")
	// ErrNilContext is returned when a Context is required but nil
	ErrNilContext = errors.New("context must be set")
	// ErrNotAddressable is returned for objects outside the Context topology
	ErrNotAddressable = errors.New("object has no context")
)

// Topology answers Context queries against the domain graph
type Topology struct {
	store repository.Store
}

// NewTopology creates a Topology over store
func NewTopology(store repository.Store) *Topology {
	return &Topology{store: store}
}

// Resolve returns the object c addresses. Every link of the chain must exist
// with its type's kind and be contained by the previous one.
func (t *Topology) Resolve(ctx context.Context, s repository.Session, c *topology.Context) (*domain.Object, error) {
	if c == nil {
		return nil, ErrNilContext
	}

	var parent *domain.Object
	for _, link := range c.Chain() {
		kind, ok := KindOf(link.Type())
		if !ok {
			return nil, fmt.Errorf("%w: no kind for %s", topology.ErrInvalidContext, link.Type())
		}
		obj, err := s.Get(ctx, kind, domain.ID(link.ID()))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", link, err)
		}
		if obj == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, link)
		}
		if parent != nil {
			ok, err := contains(ctx, parent, obj)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s is not contained by %s", ErrNotFound, obj, parent)
			}
		}
		parent = obj
	}
	return parent, nil
}

// ContextOf builds the Context of obj by walking its containing parents up to
// a root type
func (t *Topology) ContextOf(ctx context.Context, obj *domain.Object) (*topology.Context, error) {
	if obj == nil {
		return nil, ErrNilContext
	}
	ct, ok := ContextTypeOf(obj.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAddressable, obj)
	}
	if ct.IsRoot() {
		return topology.Root(int64(obj.ID()), ct)
	}

	parents, err := obj.Parents(ctx, domain.Contains)
	if err != nil {
		return nil, fmt.Errorf("failed to load parents of %s: %w", obj, err)
	}
	for _, p := range parents {
		pt, ok := ContextTypeOf(p.Kind())
		if !ok || !ct.AllowsParent(pt) {
			continue
		}
		parentCtx, err := t.ContextOf(ctx, p)
		if err != nil {
			return nil, err
		}
		return parentCtx.Child(int64(obj.ID()), ct)
	}
	return nil, fmt.Errorf("%w: %s is not attached to a %v", ErrNotAddressable, obj, ct.Parents())
}

// Children returns the objects of type ct under c. A nil c lists objects of a
// root type.
func (t *Topology) Children(ctx context.Context, s repository.Session, c *topology.Context, ct topology.ContextType) ([]*domain.Object, error) {
	ok, err := topology.IsAcceptableChildOf(ct, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a legal child of %s", topology.ErrInvalidContext, ct, c)
	}
	kind, _ := KindOf(ct)

	if c == nil {
		objs, err := s.GetAll(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", kind, err)
		}
		return objs, nil
	}

	parent, err := t.Resolve(ctx, s, c)
	if err != nil {
		return nil, err
	}
	objs, err := parent.LinkedOfKind(ctx, domain.Contains, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s of %s: %w", kind, parent, err)
	}
	return objs, nil
}

// Resource is the rendered view of one addressed object
type Resource struct {
	ODataID     string         `json:"@odata.id"`
	Kind        domain.Kind    `json:"kind"`
	Properties  map[string]any `json:"properties"`
	Collections []string       `json:"collections,omitempty"`
}

// Collection is the rendered view of the members under an address
type Collection struct {
	ODataID string   `json:"@odata.id"`
	Members []string `json:"members"`
}

// Describe resolves c and renders it with the collections it may hold
func (t *Topology) Describe(ctx context.Context, c *topology.Context) (*Resource, error) {
	var res *Resource
	err := t.store.View(ctx, func(s repository.Session) error {
		obj, err := t.Resolve(ctx, s, c)
		if err != nil {
			return err
		}
		res = &Resource{
			ODataID:    topology.Address(c),
			Kind:       obj.Kind(),
			Properties: obj.Properties(),
		}
		for _, ct := range c.Type().ChildTypes() {
			res.Collections = append(res.Collections, topology.CollectionAddress(c, ct))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// List renders the addresses of the ct members under c
func (t *Topology) List(ctx context.Context, c *topology.Context, ct topology.ContextType) (*Collection, error) {
	coll := &Collection{ODataID: topology.CollectionAddress(c, ct), Members: []string{}}
	err := t.store.View(ctx, func(s repository.Session) error {
		objs, err := t.Children(ctx, s, c, ct)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			var member *topology.Context
			if c == nil {
				member, err = topology.Root(int64(obj.ID()), ct)
			} else {
				member, err = c.Child(int64(obj.ID()), ct)
			}
			if err != nil {
				return err
			}
			coll.Members = append(coll.Members, topology.Address(member))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// Roots renders the root collections
func (t *Topology) Roots() []string {
	var out []string
	for _, ct := range topology.AllTypes() {
		if ct.IsRoot() {
			out = append(out, topology.CollectionAddress(nil, ct))
		}
	}
	return out
}

func contains(ctx context.Context, parent, child *domain.Object) (bool, error) {
	children, err := parent.LinkedOfKind(ctx, domain.Contains, child.Kind())
	if err != nil {
		return false, fmt.Errorf("failed to load children of %s: %w", parent, err)
	}
	for _, c := range children {
		if c.ID() == child.ID() {
			return true, nil
		}
	}
	return false, nil
}

// Node is one object of a topology snapshot with the objects it contains
type Node struct {
	ODataID    string         `json:"@odata.id" yaml:"odata_id"`
	Kind       domain.Kind    `json:"kind" yaml:"kind"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Snapshot renders every addressable object as a tree under the root collections
func (t *Topology) Snapshot(ctx context.Context) ([]*Node, error) {
	var roots []*Node
	err := t.store.View(ctx, func(s repository.Session) error {
		for _, ct := range topology.AllTypes() {
			if !ct.IsRoot() {
				continue
			}
			objs, err := t.Children(ctx, s, nil, ct)
			if err != nil {
				return err
			}
			for _, obj := range objs {
				c, err := topology.Root(int64(obj.ID()), ct)
				if err != nil {
					return err
				}
				n, err := snapshotNode(ctx, obj, c)
				if err != nil {
					return err
				}
				roots = append(roots, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}

func snapshotNode(ctx context.Context, obj *domain.Object, c *topology.Context) (*Node, error) {
	n := &Node{ODataID: topology.Address(c), Kind: obj.Kind(), Properties: obj.Properties()}
	for _, ct := range c.Type().ChildTypes() {
		kind, _ := KindOf(ct)
		children, err := obj.LinkedOfKind(ctx, domain.Contains, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load children of %s: %w", obj, err)
		}
		for _, child := range children {
			cc, err := c.Child(int64(child.ID()), ct)
			if err != nil {
				return nil, err
			}
			cn, err := snapshotNode(ctx, child, cc)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, cn)
		}
	}
	return n, nil
}
