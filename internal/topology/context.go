package topology

import (
	"errors"
	"fmt"
)

// ErrInvalidContext is returned for a Context transition that violates the topology
var ErrInvalidContext = errors.New("invalid context")

// Context is an immutable hierarchical locator
type Context struct {
	parent *Context
	typ    ContextType
	id     int64
}

// Root creates a top-level Context. Any valid type may be used; only Child
// enforces nesting constraints.
func Root(id int64, t ContextType) (*Context, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: id must be set", ErrInvalidContext)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown context type %q", ErrInvalidContext, t)
	}
	return &Context{typ: t, id: id}, nil
}

// Child creates a Context nested under c
func (c *Context) Child(id int64, t ContextType) (*Context, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: parent context must be set", ErrInvalidContext)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: id must be set", ErrInvalidContext)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown context type %q", ErrInvalidContext, t)
	}
	if !t.AllowsParent(c.typ) {
		return nil, fmt.Errorf("%w: %s is not a legal child of %s", ErrInvalidContext, t, c.typ)
	}
	return &Context{parent: c, typ: t, id: id}, nil
}

// MustRoot is like Root but panics on error. Intended for tests and static tables.
func MustRoot(id int64, t ContextType) *Context {
	c, err := Root(id, t)
	if err != nil {
		panic(err)
	}
	return c
}

// MustChild is like Child but panics on error
func (c *Context) MustChild(id int64, t ContextType) *Context {
	child, err := c.Child(id, t)
	if err != nil {
		panic(err)
	}
	return child
}

// IsAcceptableChildOf reports whether a Context of type t may be created under
// parent. A nil parent asks whether t is a legal root type.
func IsAcceptableChildOf(t ContextType, parent *Context) (bool, error) {
	if !t.Valid() {
		return false, fmt.Errorf("%w: unknown context type %q", ErrInvalidContext, t)
	}
	if parent == nil {
		return t.IsRoot(), nil
	}
	return t.AllowsParent(parent.typ), nil
}

// Parent returns the enclosing Context, or nil for a root
func (c *Context) Parent() *Context {
	return c.parent
}

// Type returns the ContextType of c
func (c *Context) Type() ContextType {
	return c.typ
}

// ID returns the business id of c within its parent
func (c *Context) ID() int64 {
	return c.id
}

// Chain returns the Contexts from the root down to c
func (c *Context) Chain() []*Context {
	var chain []*Context
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Equal compares the full ancestor chain
func (c *Context) Equal(other *Context) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.typ != other.typ || c.id != other.id {
		return false
	}
	return c.parent.Equal(other.parent)
}

// Key returns a string identifying c that is equal for Equal contexts
func (c *Context) Key() string {
	return Address(c)
}

func (c *Context) String() string {
	if c == nil {
		return "<nil>"
	}
	return Address(c)
}
