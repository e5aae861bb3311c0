// Package storage defines the narrow warehouse contract the loader depends
// on. The pipeline components never import a database driver directly; they
// receive a Session and issue statements through it, which keeps every
// component testable against an in-memory fake.
//
// The contract deliberately mirrors a classic DB-API cursor/connection pair:
// statements run inside an open transaction, and nothing is durable until
// Commit. Each pipeline phase ends with exactly one Commit, so a failed run
// leaves at most the previously committed phases in place.
package storage

import "context"

// Row is one materialized result row. Values carry whatever the driver
// decoded (strings for varchar, int64/float64 for numerics, nil for NULL);
// callers convert to typed records at their boundary.
type Row []any

// Session is a single logical warehouse session.
//
// Implementations must keep all statements on one underlying connection:
// the staging tables are CREATE TEMPORARY and therefore session-scoped, so
// a COPY issued on one connection is invisible to a SELECT on another.
type Session interface {
	// Exec runs a statement inside the current transaction, beginning one if
	// none is open.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query runs a query inside the current transaction and materializes the
	// full result set, in the order the store returned it.
	Query(ctx context.Context, sql string) ([]Row, error)

	// Commit ends the current transaction, making the phase's writes durable.
	// The next statement begins a fresh transaction.
	Commit(ctx context.Context) error

	// Close rolls back any open transaction and releases the connection.
	Close(ctx context.Context) error
}
