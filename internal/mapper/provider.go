package mapper

import (
	"context"
	"fmt"
	"reflect"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// Provider resolves a nested element to the child object it is mapped onto.
// The returned child must be linked to parent under n.Label.
type Provider func(ctx context.Context, s repository.Session, parent *domain.Object, n Nested, elem Element) (*domain.Object, error)

// BusinessKeyProvider resolves an element to the child of parent whose key
// properties equal the element's, creating and linking a new child when none
// matches. An absent key only matches an absent key.
func BusinessKeyProvider(keys ...domain.Descriptor) Provider {
	return func(ctx context.Context, s repository.Session, parent *domain.Object, n Nested, elem Element) (*domain.Object, error) {
		want := make([]any, len(keys))
		for i, key := range keys {
			v, _, err := elem.Value(key)
			if err != nil {
				return nil, err
			}
			want[i] = v
		}

		children, err := parent.LinkedOfKind(ctx, n.Label, n.Kind)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if keysEqual(child, keys, want) {
				return child, nil
			}
		}

		child, err := s.Create(ctx, n.Kind)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", n.Kind, err)
		}
		if err := parent.Link(ctx, n.Label, child); err != nil {
			return nil, err
		}
		return child, nil
	}
}

func keysEqual(child *domain.Object, keys []domain.Descriptor, want []any) bool {
	for i, key := range keys {
		have, ok := child.Property(key.Name())
		if !ok {
			have = nil
		}
		if !reflect.DeepEqual(have, want[i]) {
			return false
		}
	}
	return true
}
