// Package topology implements hierarchical addressing of pod assets.
//
// # Context
//
// A Context locates an asset by the chain of (type, id) pairs leading to it from
// a root, for example Pod 1 > Rack 2 > Drawer 3. Contexts are immutable and are
// built top-down with Root and Child. Child refuses any step that the target
// ContextType does not allow, so a Context's type always satisfies its declared
// parent constraint.
//
// Two Contexts describing the same place compare Equal even when they were built
// independently, and share the same Key.
//
// # Addresses
//
// Address renders a Context as a REST path below ServiceRoot:
//
//	/rest/v1/Pods/1/Racks/2/Drawers/3
//
// Every ContextType has a fixed collection name used for its path segment.
//
// # Location
//
// Location is the physical placement reported by hardware, an ordered set of
// integer coordinates written as "Pod=1,Rack=2,Drawer=3". Dropping the innermost
// coordinate yields the location of the enclosing asset.
package topology
