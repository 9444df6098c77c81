package topology

import (
	"fmt"
	"strconv"
	"strings"
)

// ServiceRoot is the path prefix of every address
const ServiceRoot = "/rest/v1"

// Address renders c as /rest/v1/<Collection>/<id>/... or "" for a nil Context
func Address(c *Context) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ServiceRoot)
	writeSegments(&b, c)
	return b.String()
}

// CollectionAddress renders the address of the t collection within c.
// A nil c addresses a collection of root types.
func CollectionAddress(c *Context, t ContextType) string {
	var b strings.Builder
	b.WriteString(ServiceRoot)
	if c != nil {
		writeSegments(&b, c)
	}
	b.WriteByte('/')
	b.WriteString(t.CollectionName())
	return b.String()
}

func writeSegments(b *strings.Builder, c *Context) {
	if c.parent != nil {
		writeSegments(b, c.parent)
	}
	b.WriteByte('/')
	b.WriteString(c.typ.CollectionName())
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(c.id, 10))
}

// ParseAddress is the inverse of Address and CollectionAddress. For a collection
// address the returned Context is the enclosing one (possibly nil) and collection
// is the member type; for an item address collection is empty.
//
// Collection names are resolved against the parent, so "Drives" under a storage
// controller and under a storage service map to different types.
func ParseAddress(address string) (c *Context, collection ContextType, err error) {
	rest := strings.TrimSuffix(address, "/")
	if !strings.HasPrefix(rest, ServiceRoot) {
		return nil, "", fmt.Errorf("%w: address %q is outside %s", ErrInvalidContext, address, ServiceRoot)
	}
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, ServiceRoot), "/")
	if rest == "" {
		return nil, "", nil
	}

	segments := strings.Split(rest, "/")
	for i := 0; i < len(segments); i += 2 {
		t, ok := typeForCollection(c, segments[i])
		if !ok {
			return nil, "", fmt.Errorf("%w: unknown collection %q in %q", ErrInvalidContext, segments[i], address)
		}
		if i+1 == len(segments) {
			return c, t, nil
		}
		id, err := strconv.ParseInt(segments[i+1], 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("%w: bad id %q in %q", ErrInvalidContext, segments[i+1], address)
		}
		if c == nil {
			c, err = Root(id, t)
		} else {
			c, err = c.Child(id, t)
		}
		if err != nil {
			return nil, "", err
		}
	}
	return c, "", nil
}

func typeForCollection(parent *Context, name string) (ContextType, bool) {
	for _, t := range AllTypes() {
		if t.CollectionName() != name {
			continue
		}
		if ok, _ := IsAcceptableChildOf(t, parent); ok {
			return t, true
		}
	}
	return "", false
}
