package sqlite

import (
	"context"
	"fmt"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// VertexType returns the stored schema of name, or nil if it is not registered
func (r *Repository) VertexType(ctx context.Context, name string) (*repository.VertexType, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vertex_types WHERE name = ?`, name).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to look up vertex type %s: %w", name, err)
	}
	if count == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, semantic FROM vertex_properties WHERE type_name = ? ORDER BY name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties of %s: %w", name, err)
	}
	defer rows.Close()

	vt := &repository.VertexType{Name: name, Properties: make(map[string]domain.SemanticType)}
	for rows.Next() {
		var prop, semantic string
		if err := rows.Scan(&prop, &semantic); err != nil {
			return nil, fmt.Errorf("failed to scan property of %s: %w", name, err)
		}
		vt.Properties[prop] = domain.SemanticType(semantic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties of %s: %w", name, err)
	}
	return vt, nil
}

// VertexTypeNames returns every registered vertex type in name order
func (r *Repository) VertexTypeNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM vertex_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vertex types: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan vertex type: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateVertexType registers name with the given properties
func (r *Repository) CreateVertexType(ctx context.Context, name string, props map[string]domain.SemanticType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO vertex_types (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to create vertex type %s: %w", name, err)
	}
	for prop, semantic := range props {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vertex_properties (type_name, name, semantic) VALUES (?, ?, ?)`,
			name, prop, string(semantic))
		if err != nil {
			return fmt.Errorf("failed to create property %s.%s: %w", name, prop, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateProperty adds or retypes a property of typeName
func (r *Repository) CreateProperty(ctx context.Context, typeName, name string, semantic domain.SemanticType) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vertex_properties (type_name, name, semantic) VALUES (?, ?, ?)
		ON CONFLICT(type_name, name) DO UPDATE SET semantic = excluded.semantic`,
		typeName, name, string(semantic))
	if err != nil {
		return fmt.Errorf("failed to create property %s.%s: %w", typeName, name, err)
	}
	return nil
}

// DropProperty removes a property from the schema and from stored vertices
func (r *Repository) DropProperty(ctx context.Context, typeName, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM vertex_properties WHERE type_name = ? AND name = ?`, typeName, name); err != nil {
		return fmt.Errorf("failed to drop property %s.%s: %w", typeName, name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE vertices SET properties = json_remove(properties, ?), updated_at = CURRENT_TIMESTAMP
		WHERE type_name = ?`, jsonPath(name), typeName); err != nil {
		return fmt.Errorf("failed to strip property %s.%s: %w", typeName, name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Truncate deletes every vertex of typeName and all edges touching them
func (r *Repository) Truncate(ctx context.Context, typeName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM edges
		WHERE from_id IN (SELECT id FROM vertices WHERE type_name = ?)
		OR to_id IN (SELECT id FROM vertices WHERE type_name = ?)`, typeName, typeName); err != nil {
		return fmt.Errorf("failed to delete edges of %s: %w", typeName, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vertices WHERE type_name = ?`, typeName); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", typeName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
