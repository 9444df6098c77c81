// Package schema keeps the graph store's vertex types aligned with the domain
// classes.
//
// Synchronization is destructive: a vertex type that already exists in the
// store is truncated when its class is registered (see TruncatePolicy). It must
// therefore run before anything else reads or writes the store.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

var (
	// ErrNilClass is returned when registering a class without a kind
	ErrNilClass = errors.New("domain class must not be nil")
	// ErrEmptyVertexType is returned for a reverse lookup without a name
	ErrEmptyVertexType = errors.New("vertex type name must not be empty")
)

// DriftError reports a stored vertex type with no registered class
type DriftError struct {
	VertexType string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("vertex type %q is not mapped to a domain class", e.VertexType)
}

// TruncatePolicy decides when registering an existing vertex type truncates it
type TruncatePolicy string

const (
	// TruncateAlways truncates every vertex type that already existed
	TruncateAlways TruncatePolicy = "always"
	// TruncateOnChange truncates only when the stored properties differ
	TruncateOnChange TruncatePolicy = "on_change"
)

// ParseTruncatePolicy converts a string to a TruncatePolicy, defaulting to TruncateAlways
func ParseTruncatePolicy(s string) TruncatePolicy {
	switch TruncatePolicy(s) {
	case TruncateOnChange:
		return TruncateOnChange
	default:
		return TruncateAlways
	}
}

// Result describes what registering one class changed
type Result struct {
	VertexType string
	Created    bool
	Added      []string
	Dropped    []string
	Truncated  bool
}

// Changed reports whether the stored property set differed from the class
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Dropped) > 0
}

// Synchronizer registers domain classes as vertex types
type Synchronizer struct {
	store  repository.SchemaStore
	policy TruncatePolicy
	logger *slog.Logger

	mu      sync.RWMutex
	classes map[string]domain.Class
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithPolicy sets the truncate policy
func WithPolicy(p TruncatePolicy) Option {
	return func(s *Synchronizer) {
		s.policy = p
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = l
	}
}

// NewSynchronizer creates a Synchronizer over store
func NewSynchronizer(store repository.SchemaStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:   store,
		policy:  TruncateAlways,
		logger:  slog.Default(),
		classes: make(map[string]domain.Class),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "schema")
	return s
}

// Policy returns the active truncate policy
func (s *Synchronizer) Policy() TruncatePolicy {
	return s.policy
}

// AddToMapping registers class, creating or reconciling its vertex type
func (s *Synchronizer) AddToMapping(ctx context.Context, class domain.Class) (Result, error) {
	if class.Kind == "" {
		return Result{}, ErrNilClass
	}
	name := string(class.Kind)
	want := class.Schema()
	result := Result{VertexType: name}

	existing, err := s.store.VertexType(ctx, name)
	if err != nil {
		return result, fmt.Errorf("failed to read vertex type %s: %w", name, err)
	}

	if existing == nil {
		if err := s.store.CreateVertexType(ctx, name, want); err != nil {
			return result, fmt.Errorf("failed to create vertex type %s: %w", name, err)
		}
		result.Created = true
		result.Added = sortedKeys(want)
		s.record(class)
		s.logger.Debug("vertex type created", "type", name, "properties", len(want))
		return result, nil
	}

	// An entry with a changed semantic type is both dropped and added
	for prop, semantic := range existing.Properties {
		if w, ok := want[prop]; !ok || w != semantic {
			if err := s.store.DropProperty(ctx, name, prop); err != nil {
				return result, fmt.Errorf("failed to drop %s.%s: %w", name, prop, err)
			}
			result.Dropped = append(result.Dropped, prop)
		}
	}
	for prop, semantic := range want {
		if have, ok := existing.Properties[prop]; !ok || have != semantic {
			if err := s.store.CreateProperty(ctx, name, prop, semantic); err != nil {
				return result, fmt.Errorf("failed to create %s.%s: %w", name, prop, err)
			}
			result.Added = append(result.Added, prop)
		}
	}
	sort.Strings(result.Dropped)
	sort.Strings(result.Added)

	if s.policy == TruncateAlways || result.Changed() {
		if err := s.store.Truncate(ctx, name); err != nil {
			return result, fmt.Errorf("failed to truncate %s: %w", name, err)
		}
		result.Truncated = true
	}

	s.record(class)
	s.logger.Debug("vertex type synchronized",
		"type", name,
		"added", len(result.Added),
		"dropped", len(result.Dropped),
		"truncated", result.Truncated)
	return result, nil
}

// SyncAll registers every class in order
func (s *Synchronizer) SyncAll(ctx context.Context, classes []domain.Class) ([]Result, error) {
	results := make([]Result, 0, len(classes))
	truncated := 0
	for _, class := range classes {
		r, err := s.AddToMapping(ctx, class)
		if err != nil {
			return results, err
		}
		if r.Truncated {
			truncated++
		}
		results = append(results, r)
	}
	s.logger.Info("schema synchronized",
		"classes", len(classes),
		"truncated", truncated,
		"policy", string(s.policy))
	return results, nil
}

// Register records classes for DomainObjectClass and CheckDrift without
// touching the store, for readers of an already synchronized graph
func (s *Synchronizer) Register(classes ...domain.Class) {
	for _, class := range classes {
		if class.Kind != "" {
			s.record(class)
		}
	}
}

// DomainObjectClass returns the class registered for a stored vertex type
func (s *Synchronizer) DomainObjectClass(vertexType string) (domain.Class, error) {
	if vertexType == "" {
		return domain.Class{}, ErrEmptyVertexType
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[vertexType]
	if !ok {
		return domain.Class{}, &DriftError{VertexType: vertexType}
	}
	return class, nil
}

// CheckDrift verifies that every stored vertex type has a registered class
func (s *Synchronizer) CheckDrift(ctx context.Context) error {
	names, err := s.store.VertexTypeNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list vertex types: %w", err)
	}
	for _, name := range names {
		if _, err := s.DomainObjectClass(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) record(class domain.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[string(class.Kind)] = class
}

func sortedKeys(m map[string]domain.SemanticType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
