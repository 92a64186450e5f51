// Package http exposes a strata Service and a ports.DocumentStore over a JSON API.
//
// Mutating endpoints load the stored document, annotate it and save it back while
// holding the service's per-document guard, so concurrent requests for the same
// document never lose each other's views. Clients can follow view changes of a
// document through Server-Sent Events.
package http
