// Package mapper copies discovered resource attributes onto domain objects.
//
// Matching is by convention. A target property takes the value of the source
// attribute with the same name (strict) or a name equal after folding case and
// punctuation (loose). Arrays of objects are nested collections: each element
// is resolved to an existing or new child object by a Provider and mapped
// recursively, which keeps repeated discovery from duplicating children.
package mapper

import (
	"context"
	"errors"
	"fmt"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// Nested declares a source field holding a collection of child objects
type Nested struct {
	// Field is the top-level source key
	Field string
	// Kind is the domain kind of each element
	Kind domain.Kind
	// Label is the relation from the mapped object to its children
	Label string
	// Prune unlinks children that are no longer reported
	Prune bool
}

// Hook applies mapping logic the conventions cannot express. It runs after the
// automatic copy.
type Hook func(ctx context.Context, s repository.Session, src map[string]any, target *domain.Object) error

// Mapper projects source attributes of one kind onto domain objects.
//
// Declaration methods are meant to be called while building the mapper; a
// mapper in use must not be changed.
type Mapper struct {
	kind      domain.Kind
	class     domain.Class
	matcher   matcher
	nested    []Nested
	providers map[domain.Kind]Provider
	skipped   map[domain.Kind]bool
	hook      Hook
}

// New creates a strict mapper for kind
func New(kind domain.Kind) (*Mapper, error) {
	class, ok := domain.ClassOf(kind)
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Err: errors.New("no domain class")}
	}
	return &Mapper{
		kind:      kind,
		class:     class,
		providers: make(map[domain.Kind]Provider),
		skipped:   make(map[domain.Kind]bool),
	}, nil
}

// MustNew is New for mappers declared at startup
func MustNew(kind domain.Kind) *Mapper {
	m, err := New(kind)
	if err != nil {
		panic(err)
	}
	return m
}

// Kind returns the kind the mapper targets
func (m *Mapper) Kind() domain.Kind {
	return m.kind
}

// UseLooseMatching enables case and punctuation tolerant matching
func (m *Mapper) UseLooseMatching() *Mapper {
	m.matcher.loose = true
	return m
}

// DeclareNested adds nested collection fields
func (m *Mapper) DeclareNested(n ...Nested) *Mapper {
	m.nested = append(m.nested, n...)
	return m
}

// RegisterProvider sets how elements of nested kind are resolved
func (m *Mapper) RegisterProvider(kind domain.Kind, p Provider) *Mapper {
	m.providers[kind] = p
	return m
}

// SkipTargetMapping leaves nested fields of kind to the linker
func (m *Mapper) SkipTargetMapping(kind domain.Kind) *Mapper {
	m.skipped[kind] = true
	return m
}

// SetNotAutomatedMapping sets the hook run after automatic copying
func (m *Mapper) SetNotAutomatedMapping(h Hook) *Mapper {
	m.hook = h
	return m
}

// Map copies src onto target. Mapping the same src twice leaves target
// unchanged the second time.
func (m *Mapper) Map(ctx context.Context, s repository.Session, src map[string]any, target *domain.Object) error {
	if target == nil {
		return &ConfigurationError{Kind: m.kind, Err: errors.New("target must not be nil")}
	}
	if !target.Is(m.kind) {
		return &ConfigurationError{Kind: m.kind, Err: fmt.Errorf("cannot map onto %s", target.Kind())}
	}

	entries := flatten(src)
	if err := copyProperties(m.matcher, m.class, entries, target); err != nil {
		return err
	}

	for _, n := range m.nested {
		if err := m.mapNested(ctx, s, entries, n, target); err != nil {
			return err
		}
	}

	if m.hook != nil {
		if err := m.hook(ctx, s, src, target); err != nil {
			return fmt.Errorf("failed to map %s: %w", target, err)
		}
	}
	return nil
}

func (m *Mapper) mapNested(ctx context.Context, s repository.Session, entries []entry, n Nested, target *domain.Object) error {
	if m.skipped[n.Kind] {
		return nil
	}
	provider, ok := m.providers[n.Kind]
	if !ok {
		return &ConfigurationError{Kind: m.kind, Property: n.Field,
			Err: fmt.Errorf("no provider registered for nested %s", n.Kind)}
	}
	class, ok := domain.ClassOf(n.Kind)
	if !ok {
		return &ConfigurationError{Kind: m.kind, Property: n.Field,
			Err: fmt.Errorf("no domain class for nested %s", n.Kind)}
	}

	items, _ := m.matcher.field(entries, n.Field)
	resolved := make(map[domain.ID]bool, len(items))
	for _, item := range items {
		elemSrc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		elem := Element{entries: flatten(elemSrc), matcher: m.matcher, kind: n.Kind}

		child, err := provider(ctx, s, target, n, elem)
		if err != nil {
			return fmt.Errorf("failed to resolve %s of %s: %w", n.Field, target, err)
		}
		if err := copyProperties(m.matcher, class, elem.entries, child); err != nil {
			return err
		}
		resolved[child.ID()] = true
	}

	if !n.Prune {
		return nil
	}
	children, err := target.LinkedOfKind(ctx, n.Label, n.Kind)
	if err != nil {
		return fmt.Errorf("failed to list %s of %s: %w", n.Field, target, err)
	}
	for _, child := range children {
		if resolved[child.ID()] {
			continue
		}
		if err := target.Unlink(ctx, n.Label, child); err != nil {
			return fmt.Errorf("failed to unlink stale %s from %s: %w", child, target, err)
		}
	}
	return nil
}

// copyProperties sets every property of class that has a matching entry
func copyProperties(mt matcher, class domain.Class, entries []entry, target *domain.Object) error {
	for _, d := range class.Properties {
		e, ok := mt.find(entries, d)
		if !ok {
			continue
		}
		if err := target.SetValue(d, e.value); err != nil {
			return &ConfigurationError{Kind: class.Kind, Property: d.Name(), Err: err}
		}
	}
	return nil
}

// Element is one member of a nested collection
type Element struct {
	entries []entry
	matcher matcher
	kind    domain.Kind
}

// Value returns the converted value the element supplies for d
func (e Element) Value(d domain.Descriptor) (any, bool, error) {
	found, ok := e.matcher.find(e.entries, d)
	if !ok {
		return nil, false, nil
	}
	v, err := domain.Convert(d.Semantic(), found.value)
	if err != nil {
		return nil, false, &ConfigurationError{Kind: e.kind, Property: d.Name(), Err: err}
	}
	return v, v != nil, nil
}
