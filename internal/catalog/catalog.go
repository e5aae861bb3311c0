// Package catalog resolves the song/artist catalog from the staging layer.
//
// It reads the full staging_songs scan once, removes exact-duplicate records,
// and produces three things from the surviving set:
//
//   - the artists dimension rows, written one-by-one,
//   - the songs dimension, written with a single set-based insert straight
//     from staging (column projection is the entire transformation), and
//   - the in-memory Index mapping (title, artist name) to (song_id,
//     artist_id), which the event normalizer uses to attach identifiers to
//     play events.
//
// The whole catalog phase is committed once, before event normalization
// starts; event resolution depends on a fully populated index and fully
// written dimensions.
package catalog

import (
	"context"
	"fmt"
	"log"

	"sparkify/internal/rowkey"
	"sparkify/internal/schema"
	"sparkify/internal/storage"
	"sparkify/internal/writer"
)

// SongRecord is one raw song/artist record from staging_songs, the source of
// truth for both the songs and artists dimensions.
type SongRecord struct {
	SongID          string
	Title           string
	Duration        float64
	ArtistID        string
	ArtistName      string
	ArtistLocation  string
	ArtistLatitude  *float64
	ArtistLongitude *float64
}

// ArtistRow is one artists dimension row.
type ArtistRow struct {
	ID        string
	Name      string
	Location  string
	Latitude  *float64
	Longitude *float64
}

// Key addresses the index. Matching is exact: no case folding, no unicode
// normalization, no duration tie-break.
type Key struct {
	Title      string
	ArtistName string
}

// Entry is the identifier pair a play event resolves to.
type Entry struct {
	SongID   string
	ArtistID string
}

// Index maps (song title, artist name) to identifiers. It is built once per
// run and read-only afterwards. When several staging records share a key with
// different identifiers, the record seen last in staging scan order wins,
// consistent with the keep-last dedup policy used throughout the loader.
type Index map[Key]Entry

// Lookup returns the identifiers for a (title, artist name) pair. A miss is
// an expected outcome, not an error: the caller writes NULL identifiers.
func (ix Index) Lookup(title, artistName string) (Entry, bool) {
	e, ok := ix[Key{Title: title, ArtistName: artistName}]
	return e, ok
}

// Dedupe removes exact-duplicate song records, keeping the last occurrence
// of each in its original position. Dedupe is idempotent.
func Dedupe(recs []SongRecord) []SongRecord {
	return rowkey.KeepLast(recs, func(r SongRecord) rowkey.Key {
		return rowkey.Of(
			r.SongID, r.Title, rowkey.Float(r.Duration),
			r.ArtistID, r.ArtistName, r.ArtistLocation,
			rowkey.NullFloat(r.ArtistLatitude), rowkey.NullFloat(r.ArtistLongitude),
		)
	})
}

// ArtistRows projects the artists dimension out of deduplicated song records,
// dropping full-row duplicate artists (several songs by one artist stage the
// same artist tuple repeatedly).
func ArtistRows(recs []SongRecord) []ArtistRow {
	rows := make([]ArtistRow, len(recs))
	for i, r := range recs {
		rows[i] = ArtistRow{
			ID:        r.ArtistID,
			Name:      r.ArtistName,
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		}
	}
	return rowkey.KeepLast(rows, func(a ArtistRow) rowkey.Key {
		return rowkey.Of(a.ID, a.Name, a.Location,
			rowkey.NullFloat(a.Latitude), rowkey.NullFloat(a.Longitude))
	})
}

// BuildIndex builds the lookup index from deduplicated song records.
// Later records overwrite earlier ones on key collision (last-seen wins).
func BuildIndex(recs []SongRecord) Index {
	ix := make(Index, len(recs))
	for _, r := range recs {
		ix[Key{Title: r.Title, ArtistName: r.ArtistName}] = Entry{
			SongID:   r.SongID,
			ArtistID: r.ArtistID,
		}
	}
	return ix
}

// Resolver runs the catalog phase against a warehouse session.
type Resolver struct {
	sess storage.Session
	w    *writer.RowWriter
	log  *log.Logger
}

// NewResolver wires a Resolver. The logger is injected rather than shared
// package state.
func NewResolver(sess storage.Session, w *writer.RowWriter, logger *log.Logger) *Resolver {
	return &Resolver{sess: sess, w: w, log: logger}
}

// Run loads staging_songs, writes the songs and artists dimensions, commits
// the phase, and returns the lookup index for event resolution.
func (r *Resolver) Run(ctx context.Context) (Index, error) {
	rows, err := r.sess.Query(ctx, schema.SelectSongCatalog)
	if err != nil {
		return nil, fmt.Errorf("load song staging: %w", err)
	}

	recs := make([]SongRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeSongRecord(row)
		if err != nil {
			return nil, fmt.Errorf("song staging row %d: %w", i, err)
		}
		recs = append(recs, rec)
	}

	recs = Dedupe(recs)
	artists := ArtistRows(recs)
	index := BuildIndex(recs)
	r.log.Printf("catalog: %d song records (%d artists) after dedup, index size %d",
		len(recs), len(artists), len(index))

	// Songs go straight from staging in one statement; artists need the
	// in-memory dedup above and are written row-by-row.
	if err := r.w.ExecBulk(ctx, schema.TableSongs, schema.InsertSongsFromStaging); err != nil {
		return nil, err
	}
	tuples := make([][]any, len(artists))
	for i, a := range artists {
		tuples[i] = []any{a.ID, a.Name, a.Location, a.Latitude, a.Longitude}
	}
	if err := r.w.WriteTuples(ctx, schema.TableArtists, schema.InsertArtist, tuples); err != nil {
		return nil, err
	}

	if err := r.sess.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit catalog phase: %w", err)
	}
	return index, nil
}

// decodeSongRecord converts one staging row, in SelectSongCatalog column
// order, into a typed record.
func decodeSongRecord(row storage.Row) (SongRecord, error) {
	if len(row) != 8 {
		return SongRecord{}, fmt.Errorf("expected 8 columns, got %d", len(row))
	}
	dur, err := storage.AsFloat(row[2])
	if err != nil {
		return SongRecord{}, fmt.Errorf("duration: %w", err)
	}
	lat, err := storage.AsNullFloat(row[6])
	if err != nil {
		return SongRecord{}, fmt.Errorf("artist_latitude: %w", err)
	}
	lon, err := storage.AsNullFloat(row[7])
	if err != nil {
		return SongRecord{}, fmt.Errorf("artist_longitude: %w", err)
	}
	return SongRecord{
		SongID:          storage.AsString(row[0]),
		Title:           storage.AsString(row[1]),
		Duration:        dur,
		ArtistID:        storage.AsString(row[3]),
		ArtistName:      storage.AsString(row[4]),
		ArtistLocation:  storage.AsString(row[5]),
		ArtistLatitude:  lat,
		ArtistLongitude: lon,
	}, nil
}
