package config

import (
	"strings"
	"testing"
)

// validConfig returns a Config that passes validation with no errors.
func validConfig() Config {
	return Config{
		Job: "sparkify_dwh",
		Cluster: Cluster{
			Host:     "dwh.example.us-west-2.redshift.amazonaws.com",
			DBName:   "dwh",
			User:     "dwhuser",
			Password: "pw",
			Port:     5439,
		},
		IAMRole: IAMRole{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
		S3: S3{
			Region:       "us-west-2",
			LogData:      "s3://udacity-dend/log_data",
			LogJSONPath:  "s3://udacity-dend/log_json_path.json",
			SongData:     "s3://udacity-dend/song_data",
			SongJSONPath: "s3://udacity-dend/song_json_path.json",
		},
	}
}

func errorPaths(issues []Issue) []string {
	var out []string
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss.Path)
		}
	}
	return out
}

func TestValidate_CleanConfig(t *testing.T) {
	t.Parallel()

	if got := errorPaths(Validate(validConfig())); len(got) != 0 {
		t.Fatalf("valid config produced errors: %v", got)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{"empty host", func(c *Config) { c.Cluster.Host = "" }, "cluster.host"},
		{"empty dbname", func(c *Config) { c.Cluster.DBName = " " }, "cluster.dbname"},
		{"empty user", func(c *Config) { c.Cluster.User = "" }, "cluster.user"},
		{"zero port", func(c *Config) { c.Cluster.Port = 0 }, "cluster.port"},
		{"huge port", func(c *Config) { c.Cluster.Port = 70000 }, "cluster.port"},
		{"bad arn", func(c *Config) { c.IAMRole.ARN = "dwhRole" }, "iam_role.arn"},
		{"empty log data", func(c *Config) { c.S3.LogData = "" }, "s3.log_data"},
		{"http log data", func(c *Config) { c.S3.LogData = "https://bucket/log" }, "s3.log_data"},
		{"bad manifest", func(c *Config) { c.S3.SongJSONPath = "song.json" }, "s3.song_jsonpath"},
		{"bad region", func(c *Config) { c.S3.Region = "us west 2" }, "s3.region"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tc.mutate(&c)

			paths := errorPaths(Validate(c))
			found := false
			for _, p := range paths {
				if p == tc.wantPath {
					found = true
				}
			}
			if !found {
				t.Fatalf("Validate errors = %v, want one at %s", paths, tc.wantPath)
			}
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.Job = ""
	c.Cluster.Password = ""

	issues := Validate(c)
	if got := errorPaths(issues); len(got) != 0 {
		t.Fatalf("warnings must not be errors, got %v", got)
	}
	var warned []string
	for _, iss := range issues {
		if iss.Severity == SeverityWarning {
			warned = append(warned, iss.Path)
		}
	}
	for _, want := range []string{"job", "cluster.password"} {
		found := false
		for _, p := range warned {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("warnings = %v, want one at %s", warned, want)
		}
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "cluster.host", Message: "must not be empty"}
	if got := iss.Error(); !strings.Contains(got, "cluster.host") {
		t.Fatalf("Issue.Error() = %q, want path included", got)
	}
}
