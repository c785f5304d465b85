// Package listing defines the paginated object listing capability consumed
// by the scanner.
//
// Implementations exist for the AWS SDK (s3list), minio-go (miniolist) and
// S3 Inventory manifests (inventory). The scanner only ever asks for one
// page at a time, in order, passing back the token from the previous page.
package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/eunmann/s3-meta/pkg/metrics"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 1000

// Page is one batch of records from a listing call.
type Page struct {
	// Records holds the objects of this page. It may be empty.
	Records []metrics.Record

	// NextToken continues the listing. Empty means the listing is complete.
	NextToken string

	// TotalHint is the provider's estimate of the total object count,
	// zero when unknown.
	TotalHint uint64
}

// Lister returns pages of a listing.
type Lister interface {
	// ListPage returns the page continuing from token. An empty token
	// starts the listing.
	ListPage(ctx context.Context, token string) (*Page, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, token string) (*Page, error)

// ListPage implements Lister.
func (f ListerFunc) ListPage(ctx context.Context, token string) (*Page, error) {
	return f(ctx, token)
}

// Location is a bucket and an optional key prefix.
type Location struct {
	Bucket string
	Prefix string
}

// String returns the location as an s3:// URI.
func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// ParseLocation parses "s3://bucket/prefix" or "bucket/prefix". The prefix
// is optional; the bucket is required.
func ParseLocation(s string) (Location, error) {
	path := strings.TrimPrefix(s, "s3://")
	bucket, prefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("invalid storage location %q: missing bucket name", s)
	}
	return Location{Bucket: bucket, Prefix: prefix}, nil
}
