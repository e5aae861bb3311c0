// Package events normalizes raw play events out of the staging layer and
// fans each one into the time, users, and songplays tables.
//
// The normalizer's pipeline is: load (NextSong filter, done in SQL) →
// dedupe (keep-last) → calendar decomposition of the ms-epoch timestamp →
// catalog resolution (exact match, miss → NULL identifiers) → persist
// (three single-row inserts per event, in staging scan order, one commit for
// the whole batch).
//
// Inserts stay per-row on purpose: each row's resolved identifiers differ,
// and the commit boundary is the whole event phase, so a mid-batch failure
// aborts the run with the phase uncommitted.
package events

import (
	"context"
	"fmt"
	"log"
	"time"

	"sparkify/internal/catalog"
	"sparkify/internal/rowkey"
	"sparkify/internal/schema"
	"sparkify/internal/storage"
	"sparkify/internal/writer"
)

// Record is one raw play event from staging_logs, typed at the boundary.
// Staging stores every field as varchar; decoding parses the numerics and
// aborts the run on a malformed value rather than deferring the failure to
// the warehouse's implicit cast at insert time.
type Record struct {
	UserID    int
	FirstName string
	LastName  string
	Gender    string
	Level     string
	TS        int64 // ms epoch
	Artist    string
	Song      string
	Length    float64
	Location  string
	SessionID int
	UserAgent string
}

// Calendar is the decomposition of a play timestamp into the time dimension.
type Calendar struct {
	Start   time.Time // ms-precision UTC
	Hour    int
	Day     int
	Week    int // ISO week number
	Month   int
	Year    int
	Weekday string // English day name, locale-independent
}

// Play is a normalized, resolved play event ready to persist. SongID and
// ArtistID stay nil when the catalog had no exact match; that is expected
// for most events, since the log covers far more songs than the catalog.
type Play struct {
	Record
	Calendar
	SongID   *string
	ArtistID *string
}

// DeriveCalendar decomposes a millisecond epoch timestamp. It is
// deterministic, and because Start keeps full millisecond precision the
// derivation is trivially idempotent.
func DeriveCalendar(ms int64) Calendar {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return Calendar{
		Start:   t,
		Hour:    t.Hour(),
		Day:     t.Day(),
		Week:    week,
		Month:   int(t.Month()),
		Year:    t.Year(),
		Weekday: t.Weekday().String(),
	}
}

// Dedupe removes exact-duplicate event records, keeping the last occurrence
// of each in its original position.
func Dedupe(recs []Record) []Record {
	return rowkey.KeepLast(recs, func(r Record) rowkey.Key {
		return rowkey.Of(
			rowkey.Int(int64(r.UserID)), r.FirstName, r.LastName, r.Gender, r.Level,
			rowkey.Int(r.TS), r.Artist, r.Song, rowkey.Float(r.Length),
			r.Location, rowkey.Int(int64(r.SessionID)), r.UserAgent,
		)
	})
}

// Normalize dedupes the raw records and derives calendar fields, preserving
// staging scan order.
func Normalize(recs []Record) []Play {
	recs = Dedupe(recs)
	plays := make([]Play, len(recs))
	for i, r := range recs {
		plays[i] = Play{Record: r, Calendar: DeriveCalendar(r.TS)}
	}
	return plays
}

// Resolve attaches song/artist identifiers from the catalog index, in place.
// It returns how many plays resolved; misses keep nil identifiers.
func Resolve(plays []Play, ix catalog.Index) int {
	resolved := 0
	for i := range plays {
		e, ok := ix.Lookup(plays[i].Song, plays[i].Artist)
		if !ok {
			continue
		}
		songID, artistID := e.SongID, e.ArtistID
		plays[i].SongID = &songID
		plays[i].ArtistID = &artistID
		resolved++
	}
	return resolved
}

// Summary reports what the event phase did.
type Summary struct {
	Loaded     int // NextSong rows read from staging
	Persisted  int // rows surviving dedup and written
	Resolved   int // songplays with catalog identifiers
	Unresolved int // songplays with NULL identifiers
}

// Normalizer runs the event phase against a warehouse session.
type Normalizer struct {
	sess storage.Session
	w    *writer.RowWriter
	log  *log.Logger
}

// NewNormalizer wires a Normalizer with an injected logger.
func NewNormalizer(sess storage.Session, w *writer.RowWriter, logger *log.Logger) *Normalizer {
	return &Normalizer{sess: sess, w: w, log: logger}
}

// Load reads the play events (page = 'NextSong') from staging.
func (n *Normalizer) Load(ctx context.Context) ([]Record, error) {
	rows, err := n.sess.Query(ctx, schema.SelectPlayEvents)
	if err != nil {
		return nil, fmt.Errorf("load event staging: %w", err)
	}
	recs := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("event staging row %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Run executes the whole event phase: load, normalize, resolve against the
// catalog, persist, commit. The catalog phase must have committed already.
func (n *Normalizer) Run(ctx context.Context, ix catalog.Index) (Summary, error) {
	recs, err := n.Load(ctx)
	if err != nil {
		return Summary{}, err
	}

	plays := Normalize(recs)
	resolved := Resolve(plays, ix)
	sum := Summary{
		Loaded:     len(recs),
		Persisted:  len(plays),
		Resolved:   resolved,
		Unresolved: len(plays) - resolved,
	}
	n.log.Printf("events: %d loaded, %d after dedup, %d resolved, %d unresolved",
		sum.Loaded, sum.Persisted, sum.Resolved, sum.Unresolved)

	if err := n.Persist(ctx, plays); err != nil {
		return sum, err
	}
	return sum, nil
}

// Persist writes each play as three single-row inserts (time, user,
// songplay), in staging scan order, and commits the batch once.
func (n *Normalizer) Persist(ctx context.Context, plays []Play) error {
	rows := make([][]writer.Insert, len(plays))
	for i, p := range plays {
		rows[i] = []writer.Insert{
			{SQL: schema.InsertTime, Args: []any{
				p.Start, p.Hour, p.Day, p.Week, p.Month, p.Year, p.Weekday,
			}},
			{SQL: schema.InsertUser, Args: []any{
				p.UserID, p.FirstName, p.LastName, p.Gender, p.Level,
			}},
			{SQL: schema.InsertSongplay, Args: []any{
				p.Start, p.UserID, p.Level, p.SessionID, p.Location, p.UserAgent,
				p.SongID, p.ArtistID,
			}},
		}
	}
	if err := n.w.WriteRows(ctx, schema.TableSongplays, rows); err != nil {
		return err
	}
	if err := n.sess.Commit(ctx); err != nil {
		return fmt.Errorf("commit event phase: %w", err)
	}
	return nil
}

// decodeRecord converts one staging row, in SelectPlayEvents column order,
// into a typed record.
func decodeRecord(row storage.Row) (Record, error) {
	if len(row) != 12 {
		return Record{}, fmt.Errorf("expected 12 columns, got %d", len(row))
	}
	userID, err := storage.AsInt(row[0])
	if err != nil {
		return Record{}, fmt.Errorf("userId: %w", err)
	}
	ts, err := storage.AsInt64(row[5])
	if err != nil {
		return Record{}, fmt.Errorf("ts: %w", err)
	}
	// length is staged but never written anywhere; an absent value decodes
	// to zero instead of failing the run.
	var length float64
	if s := storage.AsString(row[8]); s != "" {
		if length, err = storage.AsFloat(row[8]); err != nil {
			return Record{}, fmt.Errorf("length: %w", err)
		}
	}
	sessionID, err := storage.AsInt(row[10])
	if err != nil {
		return Record{}, fmt.Errorf("sessionId: %w", err)
	}
	return Record{
		UserID:    userID,
		FirstName: storage.AsString(row[1]),
		LastName:  storage.AsString(row[2]),
		Gender:    storage.AsString(row[3]),
		Level:     storage.AsString(row[4]),
		TS:        ts,
		Artist:    storage.AsString(row[6]),
		Song:      storage.AsString(row[7]),
		Length:    length,
		Location:  storage.AsString(row[9]),
		SessionID: sessionID,
		UserAgent: storage.AsString(row[11]),
	}, nil
}
