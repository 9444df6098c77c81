package mapper

import (
	"errors"
	"time"

	"podmanager/internal/domain"
)

// Set selects the mapper for a kind. It is read-only once built and safe for
// concurrent use.
type Set struct {
	mappers map[domain.Kind]*Mapper
}

// NewSet creates a Set of the given mappers. Every other discoverable kind gets
// a default strict mapper.
func NewSet(mappers ...*Mapper) *Set {
	s := &Set{mappers: make(map[domain.Kind]*Mapper)}
	for _, c := range domain.Classes() {
		if domain.Discoverable(c.Kind) {
			s.mappers[c.Kind] = MustNew(c.Kind)
		}
	}
	for _, m := range mappers {
		s.mappers[m.Kind()] = m
	}
	return s
}

// DefaultSet returns the mappers of the pod manager
func DefaultSet() *Set {
	return NewSet(
		NewNetworkInterfaceMapper(time.Now),
		NewRemoteTargetMapper(time.Now),
		NewBladeMapper(),
	)
}

// For returns the mapper of kind
func (s *Set) For(kind domain.Kind) (*Mapper, error) {
	m, ok := s.mappers[kind]
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Err: errors.New("no mapper registered")}
	}
	return m, nil
}
