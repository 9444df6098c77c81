package repository

import (
	"context"
	"errors"

	"podmanager/internal/domain"
)

var (
	// ErrNotSingle is returned when a single-object lookup matches several objects
	ErrNotSingle = errors.New("more than one object matches")
	// ErrUnknownVertexType is returned when creating an object of an unregistered type
	ErrUnknownVertexType = errors.New("unknown vertex type")
)

// VertexType is the stored schema of one vertex type
type VertexType struct {
	Name       string
	Properties map[string]domain.SemanticType
}

// SchemaStore manages vertex type schemas
type SchemaStore interface {
	// VertexType returns the stored schema for name, or nil if absent
	VertexType(ctx context.Context, name string) (*VertexType, error)
	VertexTypeNames(ctx context.Context) ([]string, error)
	CreateVertexType(ctx context.Context, name string, props map[string]domain.SemanticType) error
	CreateProperty(ctx context.Context, typeName, name string, semantic domain.SemanticType) error
	DropProperty(ctx context.Context, typeName, name string) error
	// Truncate deletes every vertex of the type along with its edges
	Truncate(ctx context.Context, typeName string) error
}

// Session is a unit of work over the object graph. Objects loaded through a
// session are cached by ID for its lifetime, so the same stored vertex is always
// the same *domain.Object.
type Session interface {
	domain.Graph

	// Create adds a new vertex of kind and returns it
	Create(ctx context.Context, kind domain.Kind) (*domain.Object, error)
	// Get returns the object of kind with id, or nil if absent
	Get(ctx context.Context, kind domain.Kind, id domain.ID) (*domain.Object, error)
	GetAll(ctx context.Context, kind domain.Kind) ([]*domain.Object, error)
	// GetSingleByProperty returns the only object of kind whose property equals
	// value, nil if none, or ErrNotSingle
	GetSingleByProperty(ctx context.Context, kind domain.Kind, property domain.Descriptor, value any) (*domain.Object, error)
	Exists(ctx context.Context, kind domain.Kind, id domain.ID) (bool, error)
	// Save writes o's properties if they changed
	Save(ctx context.Context, o *domain.Object) error
}

// Store is the persistent object graph
type Store interface {
	SchemaStore

	// InTx runs fn in a transaction. Changed objects are saved before commit;
	// any error rolls back everything fn did.
	InTx(ctx context.Context, fn func(Session) error) error
	// View runs fn against a non-transactional session. Changes are not saved.
	View(ctx context.Context, fn func(Session) error) error

	Close() error
}
