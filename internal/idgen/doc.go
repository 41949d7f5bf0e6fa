// Package idgen generates run and message identifiers. NewFunc can be
// replaced in tests to obtain deterministic IDs.
package idgen
