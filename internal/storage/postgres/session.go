// Package postgres implements storage.Session against a Redshift (or plain
// Postgres) cluster using pgx v5.
//
// The session holds exactly one pgx.Conn for its whole lifetime. That is a
// requirement, not an optimization: the loader's staging tables are CREATE
// TEMPORARY, and temporary tables live and die with the connection that
// created them. A pool would scatter statements across connections and the
// staged data would silently disappear between phases.
//
// Transaction handling reproduces cursor-style semantics: a transaction is
// begun lazily before the first statement and stays open until Commit, so
// every phase of the loader is one atomic unit of work.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sparkify/internal/storage"
)

// Config holds the cluster connection parameters.
type Config struct {
	Host     string
	Port     int
	DBName   string
	User     string
	Password string
}

// DSN renders the keyword/value connection string pgx expects.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		c.Host, c.Port, c.DBName, c.User, c.Password)
}

// Session is a pgx-backed storage.Session.
type Session struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

var _ storage.Session = (*Session)(nil)

// Connect opens the warehouse connection. The caller owns the session and
// must Close it; Close rolls back anything uncommitted.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	return &Session{conn: conn}, nil
}

// begin opens the lazy transaction if none is active.
func (s *Session) begin(ctx context.Context) (pgx.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// Exec implements storage.Session.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Query implements storage.Session. The result set is fully materialized
// before returning, matching fetch-all semantics; the loader's staging scans
// are bounded by a single run's data volume.
func (s *Session) Query(ctx context.Context, sql string) ([]storage.Row, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out), err)
		}
		out = append(out, storage.Row(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return out, nil
}

// Commit implements storage.Session. Committing with no open transaction is
// a no-op, so phases that issued no statements remain harmless.
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements storage.Session.
func (s *Session) Close(ctx context.Context) error {
	if s.tx != nil {
		_ = s.tx.Rollback(ctx)
		s.tx = nil
	}
	return s.conn.Close(ctx)
}
