package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
	"podmanager/internal/topology"
)

// ErrNilObject is returned when linking a nil object
var ErrNilObject = errors.New("domain object must not be nil")

// Defaults of the chassis objects the pod manager creates itself
const (
	DefaultRackName = "RSA Rack"
	DefaultPodName  = "RSA Pod"

	managerCollectionName = "Managers"
	serviceCollectionName = "Services"
)

// Linker links domain objects using a Registry and attaches them to the
// pod-level topology
type Linker struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Linker
type Option func(*Linker)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// New creates a Linker over registry. A nil registry uses DefaultRegistrations.
func New(registry *Registry, opts ...Option) *Linker {
	if registry == nil {
		registry = NewRegistry(DefaultRegistrations()...)
	}
	l := &Linker{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "linker")
	return l
}

// Registry returns the registry in use
func (l *Linker) Registry() *Registry {
	return l.registry
}

// Link creates the registered relation for name between source and target
func (l *Linker) Link(ctx context.Context, source, target *domain.Object, name string) error {
	return l.registry.Link(ctx, source, target, name)
}

// LinkToDomainModel attaches obj to the structure above the service it came
// from: drawers go into the rack at their parent location, storage services
// and managers into their singleton collections. Other kinds are left as they are.
func (l *Linker) LinkToDomainModel(ctx context.Context, s repository.Session, obj *domain.Object) error {
	if obj == nil {
		return ErrNilObject
	}

	switch obj.Kind() {
	case domain.KindDrawer:
		return l.linkDrawer(ctx, s, obj)
	case domain.KindStorageService:
		coll, err := singleton(ctx, s, domain.KindStorageServiceCollection, serviceCollectionName)
		if err != nil {
			return err
		}
		return l.Link(ctx, coll, obj, "contains")
	case domain.KindManager:
		coll, err := singleton(ctx, s, domain.KindManagerCollection, managerCollectionName)
		if err != nil {
			return err
		}
		return l.Link(ctx, coll, obj, "contains")
	}
	return nil
}

func (l *Linker) linkDrawer(ctx context.Context, s repository.Session, drawer *domain.Object) error {
	loc, ok := domain.Lookup(drawer, domain.PropLocation)
	if !ok || loc.Len() == 0 {
		l.logger.Warn("Drawer has no location, not attached to a rack", "drawer", drawer.String())
		return nil
	}

	rack, err := FindRack(ctx, s, loc.Parent())
	if err != nil {
		return err
	}
	return l.Link(ctx, rack, drawer, "contains")
}

// FindRack returns the rack at loc, creating it under its pod if absent
func FindRack(ctx context.Context, s repository.Session, loc topology.Location) (*domain.Object, error) {
	rack, err := s.GetSingleByProperty(ctx, domain.KindRack, domain.PropLocation, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to find rack at %s: %w", loc, err)
	}
	if rack != nil {
		return rack, nil
	}

	pod, err := FindPod(ctx, s, loc.Parent())
	if err != nil {
		return nil, err
	}
	rack, err = createChassis(ctx, s, domain.KindRack, DefaultRackName, loc)
	if err != nil {
		return nil, err
	}
	if err := pod.Link(ctx, domain.Contains, rack); err != nil {
		return nil, fmt.Errorf("failed to link %s to %s: %w", rack, pod, err)
	}
	return rack, nil
}

// FindPod returns the pod at loc, creating it if absent
func FindPod(ctx context.Context, s repository.Session, loc topology.Location) (*domain.Object, error) {
	pod, err := s.GetSingleByProperty(ctx, domain.KindPod, domain.PropLocation, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to find pod at %s: %w", loc, err)
	}
	if pod != nil {
		return pod, nil
	}
	return createChassis(ctx, s, domain.KindPod, DefaultPodName, loc)
}

func createChassis(ctx context.Context, s repository.Session, kind domain.Kind, name string, loc topology.Location) (*domain.Object, error) {
	obj, err := s.Create(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	domain.Set(obj, domain.PropName, name)
	domain.Set(obj, domain.PropLocation, loc)
	domain.Set(obj, domain.PropState, domain.StateEnabled)
	domain.Set(obj, domain.PropHealth, domain.HealthOK)
	return obj, nil
}

// singleton returns the only object of kind, creating it on first use
func singleton(ctx context.Context, s repository.Session, kind domain.Kind, name string) (*domain.Object, error) {
	all, err := s.GetAll(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	if len(all) > 0 {
		return all[0], nil
	}
	obj, err := s.Create(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	domain.Set(obj, domain.PropName, name)
	return obj, nil
}
