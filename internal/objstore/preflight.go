// Package objstore verifies the object-storage side of a run before any
// staging work starts: the two raw-data prefixes must contain at least one
// object and the two jsonpaths manifests must exist.
//
// A missing manifest otherwise surfaces as an opaque COPY failure minutes
// into the run; checking up front turns that into an immediate, precise
// error. The checks are read-only and run concurrently — the warehouse
// pipeline itself stays single-threaded.
package objstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// API is the slice of the S3 client the preflight needs; *s3.Client
// satisfies it, and tests substitute a stub.
type API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Location is one s3:// URL to verify.
type Location struct {
	// Name labels the location in error messages (e.g. "s3.log_data").
	Name string

	// URL is the s3://bucket/key location.
	URL string

	// Prefix marks data locations, verified by listing for at least one
	// object. Non-prefix locations are single manifest objects, verified
	// with a head request.
	Prefix bool
}

// NewClient builds an S3 client for the given region. Static credentials
// from the environment take precedence, matching how the warehouse side
// receives its secrets; otherwise the default provider chain applies.
func NewClient(ctx context.Context, region string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, os.Getenv("AWS_SESSION_TOKEN")),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Verify checks every location and returns the first failure. All checks run
// concurrently; any failure is fatal for the run.
func Verify(ctx context.Context, api API, locs []Location) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, loc := range locs {
		g.Go(func() error {
			return verifyOne(ctx, api, loc)
		})
	}
	return g.Wait()
}

func verifyOne(ctx context.Context, api API, loc Location) error {
	bucket, key, err := ParseURL(loc.URL)
	if err != nil {
		return fmt.Errorf("%s: %w", loc.Name, err)
	}

	if loc.Prefix {
		out, err := api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(key),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return fmt.Errorf("%s: list %s: %w", loc.Name, loc.URL, err)
		}
		if aws.ToInt32(out.KeyCount) == 0 {
			return fmt.Errorf("%s: no objects under %s", loc.Name, loc.URL)
		}
		return nil
	}

	if _, err := api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%s: manifest %s not readable: %w", loc.Name, loc.URL, err)
	}
	return nil
}

// ParseURL splits an s3://bucket/key URL. The key may be empty for
// bucket-root prefixes.
func ParseURL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("%q is not an s3:// URL", raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket", raw)
	}
	return bucket, key, nil
}
