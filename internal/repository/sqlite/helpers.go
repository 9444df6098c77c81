package sqlite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"podmanager/internal/domain"
)

// ============================================================================
// Vertex Row Helpers
// ============================================================================

// vertexColumns is the column list scanned into a vertexRow
const vertexColumns = `id, type_name, properties`

// vertexRow is a raw vertices row
type vertexRow struct {
	ID         int64
	TypeName   string
	Properties string
}

func (r *vertexRow) scanArgs() []any {
	return []any{&r.ID, &r.TypeName, &r.Properties}
}

// toDomain restores the row as an object bound to g
func (r *vertexRow) toDomain(g domain.Graph) (*domain.Object, error) {
	props, err := unmarshalProperties(r.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties of %s#%d: %w", r.TypeName, r.ID, err)
	}
	return domain.Restore(domain.ID(r.ID), domain.Kind(r.TypeName), props, g), nil
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalProperties encodes a property map, storing nil as "{}"
func marshalProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalProperties decodes a property map keeping integers exact
func unmarshalProperties(data string) (map[string]any, error) {
	props := make(map[string]any)
	if strings.TrimSpace(data) == "" {
		return props, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&props); err != nil {
		return nil, err
	}
	return props, nil
}

// jsonPath returns the json_extract path of a top level property
func jsonPath(name string) string {
	return `$."` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// propertyEquals reports whether obj's stored property name equals value
func propertyEquals(obj *domain.Object, name string, value any) bool {
	v, ok := obj.Property(name)
	return ok && reflect.DeepEqual(v, value)
}
