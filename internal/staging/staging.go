// Package staging creates the transient staging tables and bulk-loads the
// raw JSON from object storage into them via warehouse-side COPY.
//
// Nothing here touches the raw data in-process: the warehouse ingests the
// JSON directly from S3 using the jsonpaths manifests, so this package is a
// sequencer over statements from the schema package. Any statement failure
// aborts the run; there is no partial-staging recovery.
package staging

import (
	"context"
	"fmt"
	"log"

	"sparkify/internal/schema"
	"sparkify/internal/storage"
)

// Loader populates the staging layer.
type Loader struct {
	sess storage.Session
	log  *log.Logger
}

// NewLoader wires a Loader with an injected logger.
func NewLoader(sess storage.Session, logger *log.Logger) *Loader {
	return &Loader{sess: sess, log: logger}
}

// CreateTables creates both temporary staging tables and commits once.
// The tables are session-scoped; they vanish when the run's connection
// closes, which is what makes full re-runs safe at the staging layer.
func (l *Loader) CreateTables(ctx context.Context) error {
	for _, stmt := range schema.CreateStagingTables {
		if err := l.sess.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create staging table: %w", err)
		}
	}
	if err := l.sess.Commit(ctx); err != nil {
		return fmt.Errorf("commit staging DDL: %w", err)
	}
	l.log.Printf("staging: created %d staging tables", len(schema.CreateStagingTables))
	return nil
}

// Copy names one COPY statement for logs and errors.
type Copy struct {
	Table string
	SQL   string
}

// CopyFromObjectStore executes each COPY statement, committing after each
// one. A COPY can take minutes on the full dataset, so committing per
// statement keeps a finished load durable even if the next one fails.
func (l *Loader) CopyFromObjectStore(ctx context.Context, copies []Copy) error {
	for _, c := range copies {
		l.log.Printf("staging: copying into %s", c.Table)
		if err := l.sess.Exec(ctx, c.SQL); err != nil {
			return fmt.Errorf("copy into %s: %w", c.Table, err)
		}
		if err := l.sess.Commit(ctx); err != nil {
			return fmt.Errorf("commit copy into %s: %w", c.Table, err)
		}
	}
	return nil
}
