// Package notestore imports study-note sources whose comment blocks hold
// prose and commented-out code, splits them into heading-scoped notes and
// serves lookups by heading, heading prefix, full-text terms and criteria.
//
// It also checks how successive re-saves of the same notes relate: each
// newer file is expected to extend the previous one.
//
//	srv, _ := notestore.New()
//	_, _ = srv.Import(ctx, "file:///notes/")
//	notes, _ := srv.Lookup(ctx, "Built-in Types")
//	chain, _ := srv.Lineage(ctx)
//
// The cmd/notestore command exposes the same operations.
package notestore
