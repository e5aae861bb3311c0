// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "cluster.host", "s3.log_data").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and logs will use the default job name",
		})
	}

	issues = append(issues, validateCluster(c.Cluster)...)

	if !strings.HasPrefix(c.IAMRole.ARN, "arn:") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "iam_role.arn",
			Message:  fmt.Sprintf("%q is not an ARN; COPY statements will be rejected by the warehouse", c.IAMRole.ARN),
		})
	}

	issues = append(issues, validateS3(c.S3)...)
	return issues
}

func validateCluster(cl Cluster) []Issue {
	var issues []Issue

	required := []struct {
		path, val string
	}{
		{"cluster.host", cl.Host},
		{"cluster.dbname", cl.DBName},
		{"cluster.user", cl.User},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     r.path,
				Message:  "must not be empty",
			})
		}
	}

	if cl.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "cluster.password",
			Message:  "password is empty and DWH_PASSWORD is unset; connection will likely fail",
		})
	}

	if cl.Port <= 0 || cl.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cluster.port",
			Message:  fmt.Sprintf("port %d is out of range; Redshift clusters usually listen on 5439", cl.Port),
		})
	}

	return issues
}

func validateS3(s S3) []Issue {
	var issues []Issue

	locations := []struct {
		path, val string
	}{
		{"s3.log_data", s.LogData},
		{"s3.log_jsonpath", s.LogJSONPath},
		{"s3.song_data", s.SongData},
		{"s3.song_jsonpath", s.SongJSONPath},
	}
	for _, l := range locations {
		if strings.TrimSpace(l.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     l.path,
				Message:  "must not be empty",
			})
			continue
		}
		if !strings.HasPrefix(l.val, "s3://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     l.path,
				Message:  fmt.Sprintf("%q must be an s3:// URL", l.val),
			})
		}
	}

	if s.Region != "" && strings.ContainsAny(s.Region, " '") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "s3.region",
			Message:  fmt.Sprintf("%q is not a valid region name", s.Region),
		})
	}

	return issues
}
