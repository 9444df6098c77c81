// Package domain defines the persistent object model of the pod manager.
//
// This package contains the asset kinds discovered from hardware-management
// services (pods, racks, drawers, compute modules, blades, switches, storage
// services and their components) and the typed property descriptors used to read
// and write them.
//
// # Objects
//
// Object is a stored vertex: a Kind, a surrogate ID, a set of properties keyed by
// name, and labelled directed relations to other Objects. Relations are read and
// written through the Graph the Object was loaded from, normally a repository
// session.
//
// # Properties
//
// Property[T] pairs a property name with a SemanticType and converts between the
// stored form and T. Get and Set provide typed access:
//
//	domain.Set(rack, domain.PropName, "RSA Rack")
//	health := domain.Get(rack, domain.PropHealth)
//
// # Classes
//
// Every Kind has an explicit Class listing its property descriptors. Classes are
// declared as static tables, not derived from Go types, and are the source for
// vertex schema synchronization.
//
// # Design Principles
//
// - Descriptor tables instead of reflection
// - Setting a value equal to the stored one leaves the Object clean
// - No database dependencies; persistence is behind the Graph interface
package domain
