// Package resource reads the hyperlinked resource graph exposed by a hardware
// management service.
//
// A Reader yields the service root. Each Resource exposes its attributes and
// named link groups, and each Ref in a group can be dereferenced lazily. The
// HTTP implementation speaks JSON with "@odata.id" references.
package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"podmanager/internal/domain"
)

// Reader provides the entry point of a service's resource graph
type Reader interface {
	Root(ctx context.Context) (Resource, error)
}

// Resource is one fetched node of the resource graph
type Resource interface {
	// URI uniquely identifies the resource within a pass
	URI() string
	// Kind is the domain kind the resource maps to, or "" if it is not mapped
	Kind() domain.Kind
	Attributes() map[string]any
	// LinkNames lists the named link groups of the resource
	LinkNames() ([]string, error)
	// Links returns the references of one link group
	Links(ctx context.Context, name string) ([]Ref, error)
}

// Ref is a lazy reference to a resource
type Ref interface {
	URI() string
	Get(ctx context.Context) (Resource, error)
}

// Error is a failure to fetch or decode a resource
type Error struct {
	URI string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to read resource %s: %v", e.URI, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServiceUUID returns the UUID reported by a service root
func ServiceUUID(root Resource) (uuid.UUID, error) {
	raw, ok := root.Attributes()["UUID"].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("service root %s has no UUID", root.URI())
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service root %s has invalid UUID %q: %w", root.URI(), raw, err)
	}
	return id, nil
}

// typeAliases maps type names that differ from their domain kind
var typeAliases = map[string]domain.Kind{
	"EthernetNetworkInterface": domain.KindNetworkInterface,
	"EthernetInterface":        domain.KindNetworkInterface,
	"VLanNetworkInterface":     domain.KindVlanNetworkInterface,
	"VLANNetworkInterface":     domain.KindVlanNetworkInterface,
	"StorageManager":           domain.KindManager,
	"ComputerSystem":           domain.KindBlade,
}

// ParseType interprets an "@odata.type" value such as
// "#RSADrawer.1.0.0.RSADrawer". It returns the mapped kind ("" when the type
// has no domain kind) and whether the type names a collection.
func ParseType(odataType string) (domain.Kind, bool) {
	t := strings.TrimPrefix(strings.TrimSpace(odataType), "#")
	if t == "" {
		return "", false
	}
	parts := strings.Split(t, ".")
	last := parts[len(parts)-1]
	collection := strings.HasSuffix(last, "Collection") || strings.EqualFold(last, parts[0]+"s")

	name := strings.TrimPrefix(parts[0], "RSA")
	if kind, ok := typeAliases[name]; ok {
		return kind, collection
	}
	kind := domain.Kind(name)
	if !domain.Discoverable(kind) {
		return "", collection
	}
	return kind, collection
}

// linkNameAliases maps link group keys whose names differ from lowerCamel
var linkNameAliases = map[string]string{
	"EthernetInterfaces": "simpleNetwork",
	"VLANs":              "vlans",
	"Managers":           "managedBy",
	"ManagedBy":          "managedBy",
}

// LinkName converts a JSON link key to its link name ("ComputeModules" to
// "computeModules")
func LinkName(key string) string {
	if alias, ok := linkNameAliases[key]; ok {
		return alias
	}
	if key == "" {
		return key
	}
	return strings.ToLower(key[:1]) + key[1:]
}
