package staging

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"sparkify/internal/storage"
)

type fakeSession struct {
	execs   []string
	commits int
	// ops interleaves "exec" and "commit" to check commit placement.
	ops     []string
	failSQL string
}

func (f *fakeSession) Exec(ctx context.Context, sql string, args ...any) error {
	if f.failSQL != "" && strings.Contains(sql, f.failSQL) {
		return errors.New("copy rejected")
	}
	f.execs = append(f.execs, sql)
	f.ops = append(f.ops, "exec")
	return nil
}

func (f *fakeSession) Query(ctx context.Context, sql string) ([]storage.Row, error) {
	return nil, nil
}

func (f *fakeSession) Commit(ctx context.Context) error {
	f.commits++
	f.ops = append(f.ops, "commit")
	return nil
}

func (f *fakeSession) Close(ctx context.Context) error { return nil }

func newLoader(sess storage.Session) *Loader {
	return NewLoader(sess, log.New(&bytes.Buffer{}, "", 0))
}

func TestCreateTables_OneCommit(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	if err := newLoader(sess).CreateTables(context.Background()); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}

	if len(sess.execs) != 2 {
		t.Fatalf("execs = %d, want both staging tables", len(sess.execs))
	}
	if sess.commits != 1 {
		t.Fatalf("commits = %d, want 1 for the staging DDL phase", sess.commits)
	}
}

func TestCopyFromObjectStore_CommitPerCopy(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	copies := []Copy{
		{Table: "staging_logs", SQL: "COPY staging_logs FROM ..."},
		{Table: "staging_songs", SQL: "COPY staging_songs FROM ..."},
	}
	if err := newLoader(sess).CopyFromObjectStore(context.Background(), copies); err != nil {
		t.Fatalf("CopyFromObjectStore: %v", err)
	}

	// A long COPY stays durable before the next one starts.
	want := []string{"exec", "commit", "exec", "commit"}
	if len(sess.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", sess.ops, want)
	}
	for i := range want {
		if sess.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", sess.ops, want)
		}
	}
}

func TestCopyFromObjectStore_FailureNamesTable(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{failSQL: "staging_songs"}
	copies := []Copy{
		{Table: "staging_logs", SQL: "COPY staging_logs FROM ..."},
		{Table: "staging_songs", SQL: "COPY staging_songs FROM ..."},
	}
	err := newLoader(sess).CopyFromObjectStore(context.Background(), copies)
	if err == nil || !strings.Contains(err.Error(), "copy into staging_songs") {
		t.Fatalf("err = %v, want failing table named", err)
	}
	// The first copy's commit already happened; the failed one never commits.
	if sess.commits != 1 {
		t.Fatalf("commits = %d, want 1", sess.commits)
	}
}
