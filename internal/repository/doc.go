// Package repository defines the data access interfaces for the pod manager.
//
// This package provides the storage abstraction for the object graph. The
// actual implementation is in the sqlite subpackage.
//
// # Store
//
// Store combines vertex schema management (SchemaStore) with units of work
// (Session). A discovery pass maps and links everything it found inside a
// single InTx call, so a failure leaves no half-linked objects behind.
//
// # Not found
//
// Lookups return nil, nil when nothing matches. Errors are reserved for
// failures and for ambiguous results (ErrNotSingle).
//
// # SQLite Implementation
//
// The sqlite implementation stores vertices with JSON properties, labelled
// edges unique per (from, to, label), and a schema table per vertex type.
package repository
