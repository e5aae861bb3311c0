// Package config defines the JSON-serializable run configuration for the
// warehouse loader and a lint-style validator over it.
//
// Design goals:
//
//  1. Clarity: field names in Go mirror the JSON structure used in run files
//     under configs/*.json, which in turn mirrors the legacy dwh.cfg layout
//     (cluster, iam_role, s3 sections).
//  2. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library. Secrets may be left out of the file and are then
//     read from the environment.
//
// Example (trimmed):
//
//	{
//	  "job":     "sparkify_dwh",
//	  "cluster": { "host": "dwh.xyz.us-west-2.redshift.amazonaws.com",
//	               "dbname": "dwh", "user": "dwhuser", "port": 5439 },
//	  "iam_role": { "arn": "arn:aws:iam::123456789012:role/dwhRole" },
//	  "s3": {
//	    "region":        "us-west-2",
//	    "log_data":      "s3://udacity-dend/log_data",
//	    "log_jsonpath":  "s3://udacity-dend/log_json_path.json",
//	    "song_data":     "s3://udacity-dend/song_data",
//	    "song_jsonpath": "s3://udacity-dend/song_json_path.json"
//	  }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Config is the top-level object decoded from a run file.
type Config struct {
	// Job names the run for logging and metrics labeling.
	Job string `json:"job"`

	// Cluster holds the warehouse connection parameters.
	Cluster Cluster `json:"cluster"`

	// IAMRole identifies the role the warehouse assumes for COPY access to
	// the object store.
	IAMRole IAMRole `json:"iam_role"`

	// S3 locates the raw data and its jsonpaths manifests.
	S3 S3 `json:"s3"`
}

// Cluster holds warehouse connection parameters. Password may be empty in
// the file; ApplyEnv fills it from DWH_PASSWORD.
type Cluster struct {
	Host     string `json:"host"`
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
	Port     int    `json:"port"`
}

// IAMRole carries the storage-access role used in COPY statements.
type IAMRole struct {
	ARN string `json:"arn"`
}

// S3 locates the two scannable JSON datasets and their per-record JSON-path
// mapping manifests.
type S3 struct {
	// Region is the bucket region interpolated into COPY statements.
	// Defaults to us-west-2, where the public dataset lives.
	Region string `json:"region"`

	// LogData is the s3:// prefix holding the raw event logs.
	LogData string `json:"log_data"`

	// LogJSONPath is the s3:// object holding the event jsonpaths manifest.
	LogJSONPath string `json:"log_jsonpath"`

	// SongData is the s3:// prefix holding the song metadata records.
	SongData string `json:"song_data"`

	// SongJSONPath is the s3:// object holding the song jsonpaths manifest.
	SongJSONPath string `json:"song_jsonpath"`
}

// DefaultRegion is used when s3.region is absent from the run file.
const DefaultRegion = "us-west-2"

// Load reads and decodes a run file, applies environment fallbacks, and
// fills defaults. It does not validate; callers run Validate separately so
// they can surface all issues at once.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a run config from r, applies environment fallbacks, and
// fills defaults.
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.ApplyEnv()
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
	return c, nil
}

// ApplyEnv fills secret fields that were omitted from the run file.
// Environment values never override explicit file values.
func (c *Config) ApplyEnv() {
	if c.Cluster.Password == "" {
		c.Cluster.Password = os.Getenv("DWH_PASSWORD")
	}
}
