// Package migrations registers the document store schema steps. It is
// imported for side effects by cmd/bistro so `bistro migrate` sees them.
package migrations
