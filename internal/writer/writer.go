// Package writer is the thin execution layer between the resolver/normalizer
// and the warehouse: it takes parameterized statements plus value tuples,
// executes them one row at a time, and reports progress at a fixed interval.
//
// Committing is deliberately NOT the writer's job. Each pipeline phase owns
// its commit boundary, so the writer only accumulates uncommitted inserts in
// the session's open transaction.
package writer

import (
	"context"
	"fmt"
	"log"

	"sparkify/internal/metrics"
	"sparkify/internal/storage"
)

// DefaultProgressInterval is how often the writer logs a progress line.
const DefaultProgressInterval = 1000

// Insert is one parameterized statement with its bound arguments.
type Insert struct {
	SQL  string
	Args []any
}

// RowWriter executes per-row inserts against a warehouse session.
type RowWriter struct {
	sess     storage.Session
	log      *log.Logger
	interval int
}

// New constructs a RowWriter that logs progress to logger every
// DefaultProgressInterval rows.
func New(sess storage.Session, logger *log.Logger) *RowWriter {
	return &RowWriter{sess: sess, log: logger, interval: DefaultProgressInterval}
}

// WithInterval overrides the progress interval; values < 1 are rejected so a
// misconfigured writer cannot divide by zero mid-batch.
func (w *RowWriter) WithInterval(n int) *RowWriter {
	if n >= 1 {
		w.interval = n
	}
	return w
}

// WriteTuples executes sql once per tuple, in order. label names the target
// table in progress logs and row metrics.
func (w *RowWriter) WriteTuples(ctx context.Context, label, sql string, tuples [][]any) error {
	for i, args := range tuples {
		if err := w.sess.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("%s: insert row %d: %w", label, i, err)
		}
		w.progress(label, i+1)
	}
	w.finish(label, len(tuples))
	return nil
}

// WriteRows executes each row's inserts in order, one row at a time. A row is
// a group of statements that must land together and in sequence (e.g. time,
// then user, then songplay for one event). Progress counts rows, not
// statements.
func (w *RowWriter) WriteRows(ctx context.Context, label string, rows [][]Insert) error {
	for i, row := range rows {
		for _, ins := range row {
			if err := w.sess.Exec(ctx, ins.SQL, ins.Args...); err != nil {
				return fmt.Errorf("%s: row %d: %w", label, i, err)
			}
		}
		w.progress(label, i+1)
	}
	w.finish(label, len(rows))
	return nil
}

// ExecBulk executes a single set-based statement (e.g. INSERT ... SELECT).
func (w *RowWriter) ExecBulk(ctx context.Context, label, sql string) error {
	if err := w.sess.Exec(ctx, sql); err != nil {
		return fmt.Errorf("%s: bulk insert: %w", label, err)
	}
	w.log.Printf("%s: bulk insert executed", label)
	return nil
}

func (w *RowWriter) progress(label string, n int) {
	if n%w.interval == 0 {
		w.log.Printf("%s: %d rows written", label, n)
	}
}

func (w *RowWriter) finish(label string, n int) {
	w.log.Printf("%s: finished, %d rows written", label, n)
	metrics.RecordRows(label, int64(n))
}
