// Pipeline orchestration for the warehouse loader.
//
// The run walks a fixed phase sequence — preflight, connect, create tables,
// create staging, copy staging, catalog, events — and aborts on the first
// failure. Each phase ends with one commit inside its component; there is no
// retry and no resume from a partial state. Catalog resolution always commits
// before event normalization starts, because event resolution needs the
// fully populated lookup index.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"sparkify/internal/catalog"
	"sparkify/internal/config"
	"sparkify/internal/events"
	"sparkify/internal/metrics"
	"sparkify/internal/objstore"
	"sparkify/internal/schema"
	"sparkify/internal/staging"
	"sparkify/internal/storage"
	"sparkify/internal/storage/postgres"
	"sparkify/internal/writer"
)

type runOptions struct {
	skipPreflight bool
}

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	connectFn = func(ctx context.Context, cfg postgres.Config) (storage.Session, error) {
		return postgres.Connect(ctx, cfg)
	}

	preflightFn = preflight
)

// run executes a complete load: S3 preflight, warehouse connect, then the
// staged pipeline over a single session.
func run(ctx context.Context, cfg config.Config, logger *log.Logger, opts runOptions) error {
	if opts.skipPreflight {
		logger.Printf("preflight: skipped")
	} else {
		if err := phase("preflight", logger, func() error {
			return preflightFn(ctx, cfg)
		}); err != nil {
			return err
		}
	}

	sess, err := connectFn(ctx, postgres.Config{
		Host:     cfg.Cluster.Host,
		Port:     cfg.Cluster.Port,
		DBName:   cfg.Cluster.DBName,
		User:     cfg.Cluster.User,
		Password: cfg.Cluster.Password,
	})
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	sum, err := runPipeline(ctx, sess, cfg, logger)
	if err != nil {
		return err
	}

	logger.Printf("summary: %d events loaded, %d persisted, %d resolved, %d unresolved",
		sum.Loaded, sum.Persisted, sum.Resolved, sum.Unresolved)
	metrics.RecordRows("songplays_unresolved", int64(sum.Unresolved))
	return nil
}

// runPipeline drives the warehouse phases over an open session. Split from
// run so tests can drive it with a fake session.
func runPipeline(ctx context.Context, sess storage.Session, cfg config.Config, logger *log.Logger) (events.Summary, error) {
	w := writer.New(sess, logger)
	loader := staging.NewLoader(sess, logger)

	// Analytics DDL is idempotent (IF NOT EXISTS); the loader never drops or
	// truncates these tables.
	if err := phase("create_tables", logger, func() error {
		for _, stmt := range schema.CreateAnalyticsTables {
			if err := sess.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return sess.Commit(ctx)
	}); err != nil {
		return events.Summary{}, err
	}

	if err := phase("create_staging", logger, func() error {
		return loader.CreateTables(ctx)
	}); err != nil {
		return events.Summary{}, err
	}

	if err := phase("copy_staging", logger, func() error {
		return loader.CopyFromObjectStore(ctx, copyStatements(cfg))
	}); err != nil {
		return events.Summary{}, err
	}

	var index catalog.Index
	if err := phase("catalog", logger, func() error {
		var err error
		index, err = catalog.NewResolver(sess, w, logger).Run(ctx)
		return err
	}); err != nil {
		return events.Summary{}, err
	}

	var sum events.Summary
	if err := phase("events", logger, func() error {
		var err error
		sum, err = events.NewNormalizer(sess, w, logger).Run(ctx, index)
		return err
	}); err != nil {
		return sum, err
	}

	return sum, nil
}

// copyStatements renders the two COPY statements from the run config.
func copyStatements(cfg config.Config) []staging.Copy {
	return []staging.Copy{
		{
			Table: schema.TableStagingEvents,
			SQL:   schema.CopyStagingEvents(cfg.S3.LogData, cfg.IAMRole.ARN, cfg.S3.Region, cfg.S3.LogJSONPath),
		},
		{
			Table: schema.TableStagingSongs,
			SQL:   schema.CopyStagingSongs(cfg.S3.SongData, cfg.IAMRole.ARN, cfg.S3.Region, cfg.S3.SongJSONPath),
		},
	}
}

// preflight verifies the four S3 locations named by the config before any
// warehouse work begins.
func preflight(ctx context.Context, cfg config.Config) error {
	client, err := objstore.NewClient(ctx, cfg.S3.Region)
	if err != nil {
		return err
	}
	return objstore.Verify(ctx, client, []objstore.Location{
		{Name: "s3.log_data", URL: cfg.S3.LogData, Prefix: true},
		{Name: "s3.log_jsonpath", URL: cfg.S3.LogJSONPath},
		{Name: "s3.song_data", URL: cfg.S3.SongData, Prefix: true},
		{Name: "s3.song_jsonpath", URL: cfg.S3.SongJSONPath},
	})
}

// phase wraps one pipeline phase with duration logging and metrics.
func phase(name string, logger *log.Logger, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordPhase(name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Printf("phase %s done in %s", name, time.Since(start).Truncate(time.Millisecond))
	return nil
}
