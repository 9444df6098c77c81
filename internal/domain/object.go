package domain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ID is the surrogate identifier of a stored object. Zero means unassigned.
type ID int64

// IsZero reports whether id is unassigned
func (id ID) IsZero() bool {
	return id == 0
}

// ErrDetached is returned when relations are used on an Object without a Graph
var ErrDetached = errors.New("object is not attached to a graph")

// Graph provides relation storage for Objects
type Graph interface {
	// AddEdge links from to to under label. Linking twice is a no-op.
	AddEdge(ctx context.Context, from, to *Object, label string) error
	// RemoveEdge deletes the labelled edge if present
	RemoveEdge(ctx context.Context, from, to *Object, label string) error
	// Outgoing returns the targets of from's label edges
	Outgoing(ctx context.Context, from *Object, label string) ([]*Object, error)
	// Incoming returns the sources of label edges pointing at to
	Incoming(ctx context.Context, to *Object, label string) ([]*Object, error)
}

// Object is a stored domain entity
type Object struct {
	id    ID
	kind  Kind
	props map[string]any
	dirty bool
	graph Graph
}

// NewObject creates an empty Object bound to g
func NewObject(id ID, kind Kind, g Graph) *Object {
	return &Object{
		id:    id,
		kind:  kind,
		props: make(map[string]any),
		graph: g,
	}
}

// Restore rebuilds an Object from stored properties. Values of declared
// properties are normalized to their semantic type; undeclared ones, and
// declared ones that no longer convert, are kept as stored.
func Restore(id ID, kind Kind, props map[string]any, g Graph) *Object {
	o := NewObject(id, kind, g)
	class, hasClass := ClassOf(kind)
	for name, raw := range props {
		if hasClass {
			if d, ok := class.Property(name); ok {
				v, err := Convert(d.Semantic(), raw)
				switch {
				case err != nil:
					o.props[name] = raw
				case v != nil:
					o.props[name] = v
				}
				continue
			}
		}
		o.props[name] = raw
	}
	return o
}

// ID returns the surrogate identifier
func (o *Object) ID() ID {
	return o.id
}

// Kind returns the object's vertex type
func (o *Object) Kind() Kind {
	return o.kind
}

// Is reports whether o is of kind k
func (o *Object) Is(k Kind) bool {
	return o != nil && o.kind == k
}

// Property returns the stored form of a property
func (o *Object) Property(name string) (any, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Properties returns a copy of all stored properties
func (o *Object) Properties() map[string]any {
	out := make(map[string]any, len(o.props))
	for k, v := range o.props {
		out[k] = v
	}
	return out
}

// PropertyNames returns the set property names in sorted order
func (o *Object) PropertyNames() []string {
	names := make([]string, 0, len(o.props))
	for k := range o.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetValue converts v to d's semantic type and stores it. A nil v removes the property.
func (o *Object) SetValue(d Descriptor, v any) error {
	converted, err := Convert(d.Semantic(), v)
	if err != nil {
		return fmt.Errorf("property %s.%s: %w", o.kind, d.Name(), err)
	}
	if converted == nil {
		o.remove(d.Name())
		return nil
	}
	o.put(d.Name(), converted)
	return nil
}

// Dirty reports whether properties changed since the object was loaded or saved
func (o *Object) Dirty() bool {
	return o.dirty
}

// MarkClean clears the dirty flag after the object has been persisted
func (o *Object) MarkClean() {
	o.dirty = false
}

// Bind attaches o to a Graph
func (o *Object) Bind(id ID, g Graph) {
	o.id = id
	o.graph = g
}

func (o *Object) put(name string, v any) {
	if old, ok := o.props[name]; ok && reflect.DeepEqual(old, v) {
		return
	}
	o.props[name] = v
	o.dirty = true
}

func (o *Object) remove(name string) {
	if _, ok := o.props[name]; !ok {
		return
	}
	delete(o.props, name)
	o.dirty = true
}

// Link adds a label edge from o to target
func (o *Object) Link(ctx context.Context, label string, target *Object) error {
	if o.graph == nil {
		return ErrDetached
	}
	if target == nil {
		return fmt.Errorf("link %s from %s: target must not be nil", label, o)
	}
	return o.graph.AddEdge(ctx, o, target, label)
}

// Unlink removes a label edge from o to target
func (o *Object) Unlink(ctx context.Context, label string, target *Object) error {
	if o.graph == nil {
		return ErrDetached
	}
	return o.graph.RemoveEdge(ctx, o, target, label)
}

// Linked returns the targets of o's label edges
func (o *Object) Linked(ctx context.Context, label string) ([]*Object, error) {
	if o.graph == nil {
		return nil, ErrDetached
	}
	return o.graph.Outgoing(ctx, o, label)
}

// LinkedOfKind returns the targets of o's label edges that are of kind k
func (o *Object) LinkedOfKind(ctx context.Context, label string, k Kind) ([]*Object, error) {
	linked, err := o.Linked(ctx, label)
	if err != nil {
		return nil, err
	}
	return filterKind(linked, k), nil
}

// Parents returns the objects with a label edge pointing at o
func (o *Object) Parents(ctx context.Context, label string) ([]*Object, error) {
	if o.graph == nil {
		return nil, ErrDetached
	}
	return o.graph.Incoming(ctx, o, label)
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", o.kind, o.id)
}

func filterKind(objs []*Object, k Kind) []*Object {
	var out []*Object
	for _, obj := range objs {
		if obj.kind == k {
			out = append(out, obj)
		}
	}
	return out
}
