// Package handler implements the HTTP surface of the pod manager.
//
// # Routes
//
//	GET  /rest/v1             service root listing the root collections
//	GET  /rest/v1/*           a resolved Context or the members of a collection
//	GET  /api/export          topology tree as YAML or JSON (?format=)
//	POST /api/discovery       runs one detection poll and reports the outcomes
//	GET  /api/endpoints       known and failing service endpoints
//	GET  /api/events          Server-Sent Events stream of discovery events
//	GET  /metrics             prometheus metrics
//	GET  /healthz             liveness
//
// Errors are returned as JSON with {error, details}.
package handler
