// Package service answers topology queries over the stored domain graph.
//
// # Topology
//
// Topology resolves a Context (a path of typed ids rooted at a Pod, Manager,
// ComposedNode or StorageService) to the object it addresses. Every step of the
// chain must be joined by a contains edge, so a Context naming a real object
// under the wrong parent resolves to ErrNotFound.
//
// ContextOf walks contains edges upward to rebuild the Context of an object,
// and Snapshot renders every addressable object as a tree for export.
//
// # Pod manager
//
// EnsurePodManager creates the pod and its management controller on first start
// and links the controller into the domain model.
package service
