package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// session implements repository.Session with an identity map
type session struct {
	q     querier
	cache map[domain.ID]*domain.Object
}

var _ repository.Session = (*session)(nil)

func newSession(q querier) *session {
	return &session{q: q, cache: make(map[domain.ID]*domain.Object)}
}

// Create inserts an empty vertex of kind
func (s *session) Create(ctx context.Context, kind domain.Kind) (*domain.Object, error) {
	var exists int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM vertex_types WHERE name = ?`, string(kind)).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check vertex type %s: %w", kind, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownVertexType, kind)
	}

	res, err := s.q.ExecContext(ctx, `INSERT INTO vertices (type_name, properties) VALUES (?, '{}')`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read id of new %s: %w", kind, err)
	}

	obj := domain.NewObject(domain.ID(id), kind, s)
	s.cache[obj.ID()] = obj
	return obj, nil
}

// Get returns the object of kind with id, or nil if absent or of another kind
func (s *session) Get(ctx context.Context, kind domain.Kind, id domain.ID) (*domain.Object, error) {
	if obj, ok := s.cache[id]; ok {
		if obj.Kind() != kind {
			return nil, nil
		}
		return obj, nil
	}

	var row vertexRow
	err := s.q.QueryRowContext(ctx, `SELECT `+vertexColumns+` FROM vertices WHERE id = ? AND type_name = ?`,
		int64(id), string(kind)).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	return s.materialize(row)
}

// GetAll returns every object of kind in creation order
func (s *session) GetAll(ctx context.Context, kind domain.Kind) ([]*domain.Object, error) {
	return s.queryObjects(ctx,
		`SELECT `+vertexColumns+` FROM vertices WHERE type_name = ? ORDER BY id`, string(kind))
}

// GetSingleByProperty returns the only object of kind whose property equals value
func (s *session) GetSingleByProperty(ctx context.Context, kind domain.Kind, property domain.Descriptor, value any) (*domain.Object, error) {
	stored, err := domain.Convert(property.Semantic(), value)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup value for %s.%s: %w", kind, property.Name(), err)
	}
	if stored == nil {
		return nil, fmt.Errorf("lookup value for %s.%s must not be nil", kind, property.Name())
	}

	objs, err := s.queryObjects(ctx,
		`SELECT `+vertexColumns+` FROM vertices
		WHERE type_name = ? AND json_extract(properties, ?) = ?
		ORDER BY id LIMIT 2`,
		string(kind), jsonPath(property.Name()), stored)
	if err != nil {
		return nil, err
	}

	// Properties changed in this session but not yet written are matched in memory
	objs = s.mergeDirtyMatches(objs, kind, property.Name(), stored)

	switch len(objs) {
	case 0:
		return nil, nil
	case 1:
		return objs[0], nil
	default:
		return nil, fmt.Errorf("%w: %s with %s=%v", repository.ErrNotSingle, kind, property.Name(), value)
	}
}

// Exists reports whether an object of kind with id is stored
func (s *session) Exists(ctx context.Context, kind domain.Kind, id domain.ID) (bool, error) {
	obj, err := s.Get(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

// Save writes o's properties if it is dirty
func (s *session) Save(ctx context.Context, o *domain.Object) error {
	if !o.Dirty() {
		return nil
	}
	data, err := marshalProperties(o.Properties())
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", o, err)
	}
	_, err = s.q.ExecContext(ctx,
		`UPDATE vertices SET properties = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		data, int64(o.ID()))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", o, err)
	}
	o.MarkClean()
	return nil
}

// AddEdge links from to to. An existing edge is left unchanged.
func (s *session) AddEdge(ctx context.Context, from, to *domain.Object, label string) error {
	if from.ID().IsZero() || to.ID().IsZero() {
		return fmt.Errorf("cannot link unsaved objects %s and %s", from, to)
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO edges (from_id, to_id, label) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		int64(from.ID()), int64(to.ID()), label)
	if err != nil {
		return fmt.Errorf("failed to link %s -%s-> %s: %w", from, label, to, err)
	}
	return nil
}

// RemoveEdge deletes the labelled edge if present
func (s *session) RemoveEdge(ctx context.Context, from, to *domain.Object, label string) error {
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM edges WHERE from_id = ? AND to_id = ? AND label = ?`,
		int64(from.ID()), int64(to.ID()), label)
	if err != nil {
		return fmt.Errorf("failed to unlink %s -%s-> %s: %w", from, label, to, err)
	}
	return nil
}

// Outgoing returns the targets of from's label edges in link order
func (s *session) Outgoing(ctx context.Context, from *domain.Object, label string) ([]*domain.Object, error) {
	return s.queryObjects(ctx,
		`SELECT v.id, v.type_name, v.properties FROM edges e
		JOIN vertices v ON v.id = e.to_id
		WHERE e.from_id = ? AND e.label = ?
		ORDER BY e.rowid`,
		int64(from.ID()), label)
}

// Incoming returns the sources of label edges pointing at to
func (s *session) Incoming(ctx context.Context, to *domain.Object, label string) ([]*domain.Object, error) {
	return s.queryObjects(ctx,
		`SELECT v.id, v.type_name, v.properties FROM edges e
		JOIN vertices v ON v.id = e.from_id
		WHERE e.to_id = ? AND e.label = ?
		ORDER BY e.rowid`,
		int64(to.ID()), label)
}

func (s *session) queryObjects(ctx context.Context, query string, args ...any) ([]*domain.Object, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vertices: %w", err)
	}
	defer rows.Close()

	var vrows []vertexRow
	for rows.Next() {
		var row vertexRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan vertex: %w", err)
		}
		vrows = append(vrows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vertices: %w", err)
	}

	objs := make([]*domain.Object, 0, len(vrows))
	for _, row := range vrows {
		obj, err := s.materialize(row)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// materialize returns the cached object for row, or restores and caches it
func (s *session) materialize(row vertexRow) (*domain.Object, error) {
	id := domain.ID(row.ID)
	if obj, ok := s.cache[id]; ok {
		return obj, nil
	}
	obj, err := row.toDomain(s)
	if err != nil {
		return nil, err
	}
	s.cache[id] = obj
	return obj, nil
}

// mergeDirtyMatches reconciles a stored-value query with unsaved changes
func (s *session) mergeDirtyMatches(objs []*domain.Object, kind domain.Kind, name string, value any) []*domain.Object {
	var out []*domain.Object
	seen := make(map[domain.ID]bool)
	for _, obj := range objs {
		seen[obj.ID()] = true
		if !obj.Dirty() || propertyEquals(obj, name, value) {
			out = append(out, obj)
		}
	}
	for id, obj := range s.cache {
		if seen[id] || obj.Kind() != kind || !obj.Dirty() {
			continue
		}
		if propertyEquals(obj, name, value) {
			out = append(out, obj)
		}
	}
	return out
}

// flush saves every dirty cached object
func (s *session) flush(ctx context.Context) error {
	for _, obj := range s.cache {
		if err := s.Save(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}
