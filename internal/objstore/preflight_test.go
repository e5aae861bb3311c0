package objstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// stubAPI answers head/list calls from in-memory maps.
type stubAPI struct {
	mu sync.Mutex

	objects  map[string]bool  // "bucket/key" -> exists
	prefixes map[string]int32 // "bucket/prefix" -> key count

	headCalls []string
	listCalls []string
}

func (s *stubAPI) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := *in.Bucket + "/" + *in.Key
	s.headCalls = append(s.headCalls, k)
	if !s.objects[k] {
		return nil, errors.New("NotFound")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (s *stubAPI) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := *in.Bucket + "/" + *in.Prefix
	s.listCalls = append(s.listCalls, k)
	n := s.prefixes[k]
	return &s3.ListObjectsV2Output{KeyCount: aws.Int32(n)}, nil
}

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://udacity-dend/log_data", "udacity-dend", "log_data", false},
		{"s3://udacity-dend/log_json_path.json", "udacity-dend", "log_json_path.json", false},
		{"s3://bucket", "bucket", "", false},
		{"s3://bucket/a/b/c", "bucket", "a/b/c", false},
		{"https://bucket/key", "", "", true},
		{"s3://", "", "", true},
	}
	for _, tc := range tests {
		bucket, key, err := ParseURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseURL(%q): want error", tc.in)
			}
			continue
		}
		if err != nil || bucket != tc.bucket || key != tc.key {
			t.Fatalf("ParseURL(%q) = %q, %q, %v", tc.in, bucket, key, err)
		}
	}
}

func fullLocations() []Location {
	return []Location{
		{Name: "s3.log_data", URL: "s3://dend/log_data", Prefix: true},
		{Name: "s3.log_jsonpath", URL: "s3://dend/log_json_path.json"},
		{Name: "s3.song_data", URL: "s3://dend/song_data", Prefix: true},
		{Name: "s3.song_jsonpath", URL: "s3://dend/song_json_path.json"},
	}
}

func TestVerify_AllPresent(t *testing.T) {
	t.Parallel()

	api := &stubAPI{
		objects: map[string]bool{
			"dend/log_json_path.json":  true,
			"dend/song_json_path.json": true,
		},
		prefixes: map[string]int32{
			"dend/log_data":  12,
			"dend/song_data": 3,
		},
	}
	if err := Verify(context.Background(), api, fullLocations()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(api.headCalls) != 2 || len(api.listCalls) != 2 {
		t.Fatalf("calls = %d head, %d list; want 2 and 2", len(api.headCalls), len(api.listCalls))
	}
}

func TestVerify_EmptyPrefixFails(t *testing.T) {
	t.Parallel()

	api := &stubAPI{
		objects: map[string]bool{
			"dend/log_json_path.json":  true,
			"dend/song_json_path.json": true,
		},
		prefixes: map[string]int32{
			"dend/log_data": 12,
			// song_data missing: zero keys
		},
	}
	err := Verify(context.Background(), api, fullLocations())
	if err == nil || !strings.Contains(err.Error(), "s3.song_data") {
		t.Fatalf("err = %v, want empty song_data prefix reported", err)
	}
}

func TestVerify_MissingManifestFails(t *testing.T) {
	t.Parallel()

	api := &stubAPI{
		objects: map[string]bool{
			"dend/log_json_path.json": true,
			// song manifest missing
		},
		prefixes: map[string]int32{
			"dend/log_data":  1,
			"dend/song_data": 1,
		},
	}
	err := Verify(context.Background(), api, fullLocations())
	if err == nil || !strings.Contains(err.Error(), "s3.song_jsonpath") {
		t.Fatalf("err = %v, want missing manifest reported", err)
	}
}

func TestVerify_BadURLFails(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	err := Verify(context.Background(), api, []Location{
		{Name: "s3.log_data", URL: "log_data", Prefix: true},
	})
	if err == nil || !strings.Contains(err.Error(), "s3.log_data") {
		t.Fatalf("err = %v, want location named", err)
	}
}
