// Package schema holds every SQL statement the warehouse loader executes:
// staging and analytics DDL, the COPY-from-S3 templates, the per-row and bulk
// insert statements, and the staging selects the resolver and normalizer read
// from.
//
// Keeping the SQL in one place, as plain constants, makes the loader itself
// purely mechanical: components receive statement text from here and never
// build SQL at runtime. The only dynamic pieces are the COPY statements,
// which interpolate the S3 location, IAM role, region, and jsonpaths manifest
// from the run configuration.
package schema

import "fmt"

// Analytics table names.
const (
	TableSongplays = "songplays"
	TableUsers     = "users"
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableTime      = "time"
)

// Staging table names. Both are CREATE TEMPORARY, so they are scoped to the
// warehouse session and vanish when the run's connection closes.
const (
	TableStagingEvents = "staging_logs"
	TableStagingSongs  = "staging_songs"
)

// -----------------------------------------------------------------------------
// Staging DDL
// -----------------------------------------------------------------------------

// CreateStagingEvents mirrors the raw event log records. Every column is
// varchar on purpose: the COPY should never fail on a malformed field, and
// typing happens when the normalizer reads the rows back.
const CreateStagingEvents = `
CREATE TEMPORARY TABLE IF NOT EXISTS staging_logs (
    artist        varchar,
    auth          varchar,
    firstName     varchar,
    gender        varchar,
    itemInSession varchar,
    lastName      varchar,
    length        varchar,
    level         varchar,
    location      varchar,
    method        varchar,
    page          varchar,
    registration  varchar,
    sessionId     varchar,
    song          varchar,
    status        varchar,
    ts            varchar,
    userAgent     varchar,
    userId        varchar
);`

// CreateStagingSongs mirrors the song metadata records. These are typed at
// COPY time; the catalog depends on song_id/artist_id/title/artist_name
// being present.
const CreateStagingSongs = `
CREATE TEMPORARY TABLE IF NOT EXISTS staging_songs (
    num_songs        int NOT NULL,
    artist_id        varchar NOT NULL,
    artist_latitude  real,
    artist_longitude real,
    artist_location  varchar,
    artist_name      varchar NOT NULL,
    song_id          varchar NOT NULL,
    title            varchar NOT NULL,
    duration         real NOT NULL,
    year             int NOT NULL
);`

// -----------------------------------------------------------------------------
// Analytics DDL
// -----------------------------------------------------------------------------

const CreateSongplays = `
CREATE TABLE IF NOT EXISTS songplays (
    songplay_id int IDENTITY(0,1) PRIMARY KEY NOT NULL,
    start_time  timestamp NOT NULL,
    user_id     int NOT NULL,
    level       varchar(4) NOT NULL,
    song_id     varchar,
    artist_id   varchar,
    session_id  int NOT NULL,
    location    varchar NOT NULL,
    user_agent  varchar NOT NULL
);`

const CreateUsers = `
CREATE TABLE IF NOT EXISTS users (
    user_id    int PRIMARY KEY NOT NULL,
    first_name varchar,
    last_name  varchar,
    gender     varchar(1),
    level      varchar(4) NOT NULL
);`

const CreateSongs = `
CREATE TABLE IF NOT EXISTS songs (
    song_id   varchar PRIMARY KEY NOT NULL,
    title     varchar,
    artist_id varchar NOT NULL,
    year      int,
    duration  real
);`

const CreateArtists = `
CREATE TABLE IF NOT EXISTS artists (
    artist_id varchar PRIMARY KEY NOT NULL,
    name      varchar,
    location  varchar,
    latitude  real,
    longitude real
);`

const CreateTime = `
CREATE TABLE IF NOT EXISTS time (
    start_time timestamp PRIMARY KEY NOT NULL,
    hour       int,
    day        int,
    week       int,
    month      int,
    year       int,
    weekday    varchar
);`

// CreateAnalyticsTables lists the analytics DDL in dependency-free order;
// the loader ensures these exist before staging begins.
var CreateAnalyticsTables = []string{
	CreateSongplays,
	CreateUsers,
	CreateSongs,
	CreateArtists,
	CreateTime,
}

// CreateStagingTables lists the staging DDL executed at the start of a run.
var CreateStagingTables = []string{
	CreateStagingEvents,
	CreateStagingSongs,
}

// DropAnalyticsTables is the operator reset path (cmd/create_tables). The
// loader itself never truncates or drops analytics tables, which is why a
// re-run without this reset duplicates dimension and fact rows.
var DropAnalyticsTables = []string{
	"DROP TABLE IF EXISTS songplays;",
	"DROP TABLE IF EXISTS users;",
	"DROP TABLE IF EXISTS songs;",
	"DROP TABLE IF EXISTS artists;",
	"DROP TABLE IF EXISTS time;",
}

// -----------------------------------------------------------------------------
// COPY from object storage
// -----------------------------------------------------------------------------

const copyTemplate = `
COPY %s
FROM '%s'
IAM_ROLE '%s'
REGION '%s'
JSON '%s';`

// CopyStagingEvents renders the COPY statement that bulk-loads the raw event
// logs into staging_logs. jsonpaths is the per-record JSON-path manifest the
// warehouse uses to map log fields onto staging columns.
func CopyStagingEvents(location, iamRole, region, jsonpaths string) string {
	return fmt.Sprintf(copyTemplate, TableStagingEvents, location, iamRole, region, jsonpaths)
}

// CopyStagingSongs renders the COPY statement for the song metadata catalog.
func CopyStagingSongs(location, iamRole, region, jsonpaths string) string {
	return fmt.Sprintf(copyTemplate, TableStagingSongs, location, iamRole, region, jsonpaths)
}

// -----------------------------------------------------------------------------
// Inserts
// -----------------------------------------------------------------------------

// InsertSongplay writes one resolved play event. song_id/artist_id are null
// when the event had no catalog match.
const InsertSongplay = `
INSERT INTO songplays (start_time, user_id, level, session_id, location, user_agent, song_id, artist_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const InsertUser = `
INSERT INTO users (user_id, first_name, last_name, gender, level)
VALUES ($1, $2, $3, $4, $5)`

const InsertTime = `
INSERT INTO time (start_time, hour, day, week, month, year, weekday)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const InsertArtist = `
INSERT INTO artists (artist_id, name, location, latitude, longitude)
VALUES ($1, $2, $3, $4, $5)`

// InsertSongsFromStaging bulk-loads the songs dimension straight from
// staging_songs. Songs need no in-memory pass: the projection below is the
// whole transformation.
const InsertSongsFromStaging = `
INSERT INTO songs (song_id, title, artist_id, year, duration)
SELECT song_id, title, artist_id, year, duration FROM staging_songs`

// -----------------------------------------------------------------------------
// Staging selects
// -----------------------------------------------------------------------------

// SelectPlayEvents pulls the actual play events out of staging. The NextSong
// filter drops navigation, auth, and settings page hits, which carry no song.
const SelectPlayEvents = `
SELECT userId, firstName, lastName, gender, level, ts, artist, song, length, location, sessionId, userAgent
FROM staging_logs
WHERE page = 'NextSong'`

// SelectSongCatalog feeds the catalog resolver: every column needed for the
// artists dimension plus the (title, artist_name) -> (song_id, artist_id)
// lookup index.
const SelectSongCatalog = `
SELECT song_id, title, duration, artist_id, artist_name, artist_location, artist_latitude, artist_longitude
FROM staging_songs`
