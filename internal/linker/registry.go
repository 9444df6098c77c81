// Package linker attaches mapped domain objects to each other and to the
// pod-level topology.
//
// A Registry binds the link names a service reports between two resources to
// the relation created between the domain objects mapped from them. The
// Linker places drawers, storage services and managers into the structure the
// pod manager owns (racks, pods and the singleton collections).
package linker

import (
	"context"
	"fmt"

	"podmanager/internal/domain"
)

// ApplyFunc creates the relation for one registered link
type ApplyFunc func(ctx context.Context, source, target *domain.Object) error

// Registration binds (Source, Target, Name) to the relation Apply creates
type Registration struct {
	Source domain.Kind
	Target domain.Kind
	Name   string
	Apply  ApplyFunc
}

// NotRegisteredError is returned when no registration accepts a link
type NotRegisteredError struct {
	Source domain.Kind
	Target domain.Kind
	Name   string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("cannot create link with name '%s' from %s to %s", e.Name, e.Source, e.Target)
}

type key struct {
	source, target domain.Kind
	name           string
}

// Registry is an immutable set of link registrations
type Registry struct {
	regs  []Registration
	index map[key]int
}

// NewRegistry builds a Registry. When several registrations share a key the
// first one wins.
func NewRegistry(regs ...Registration) *Registry {
	r := &Registry{
		regs:  make([]Registration, 0, len(regs)),
		index: make(map[key]int, len(regs)),
	}
	for _, reg := range regs {
		k := key{reg.Source, reg.Target, reg.Name}
		if _, ok := r.index[k]; ok {
			continue
		}
		r.index[k] = len(r.regs)
		r.regs = append(r.regs, reg)
	}
	return r
}

// Registrations returns a copy of the registrations in order
func (r *Registry) Registrations() []Registration {
	out := make([]Registration, len(r.regs))
	copy(out, r.regs)
	return out
}

// Accepts reports whether a link of name from source to target kind is registered
func (r *Registry) Accepts(source, target domain.Kind, name string) bool {
	_, ok := r.index[key{source, target, name}]
	return ok
}

// Link creates the relation registered for name between source and target
func (r *Registry) Link(ctx context.Context, source, target *domain.Object, name string) error {
	if source == nil || target == nil {
		return ErrNilObject
	}
	i, ok := r.index[key{source.Kind(), target.Kind(), name}]
	if !ok {
		return &NotRegisteredError{Source: source.Kind(), Target: target.Kind(), Name: name}
	}
	if err := r.regs[i].Apply(ctx, source, target); err != nil {
		return fmt.Errorf("failed to link %s %s %s: %w", source, name, target, err)
	}
	return nil
}
