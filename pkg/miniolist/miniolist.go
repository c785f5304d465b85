// Package miniolist lists objects page by page from an S3-compatible
// endpoint with minio-go.
package miniolist

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/eunmann/s3-meta/internal/logctx"
	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

// Config holds the connection parameters for an S3-compatible endpoint.
type Config struct {
	// Endpoint is "host:port" or a URL. An https URL forces TLS.
	Endpoint string

	AccessKey string
	SecretKey string
	Region    string

	// Insecure disables TLS.
	Insecure bool
}

// API is the subset of *minio.Core used for listing.
type API interface {
	ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxkeys int) (minio.ListBucketV2Result, error)
}

// NewCore creates a low-level minio client from cfg.
func NewCore(cfg Config) (*minio.Core, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}

	endpoint := cfg.Endpoint
	secure := !cfg.Insecure
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return core, nil
}

// Lister lists a bucket prefix through the ListObjectsV2 API.
type Lister struct {
	api     API
	loc     listing.Location
	maxKeys int
}

// NewLister creates a Lister for loc. A non-positive maxKeys uses
// listing.DefaultPageSize.
func NewLister(api API, loc listing.Location, maxKeys int) *Lister {
	if maxKeys <= 0 {
		maxKeys = listing.DefaultPageSize
	}
	return &Lister{api: api, loc: loc, maxKeys: maxKeys}
}

// ListPage implements listing.Lister. An empty delimiter keeps the listing
// recursive. Errors are returned unwrapped.
func (l *Lister) ListPage(ctx context.Context, token string) (*listing.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := l.api.ListObjectsV2(l.loc.Bucket, l.loc.Prefix, "", token, "", l.maxKeys)
	if err != nil {
		log := logctx.FromContext(ctx)
		event := log.Warn().
			Str("bucket", l.loc.Bucket).
			Str("prefix", l.loc.Prefix).
			Err(err)
		if code := ErrorCode(err); code != "" {
			event = event.Str("error_code", code)
		}
		event.Msg("list objects failed")
		return nil, err
	}

	page := &listing.Page{
		Records: make([]metrics.Record, 0, len(res.Contents)),
	}
	for _, obj := range res.Contents {
		var size uint64
		if obj.Size > 0 {
			size = uint64(obj.Size)
		}
		page.Records = append(page.Records, metrics.Record{
			Key:          obj.Key,
			Size:         size,
			LastModified: obj.LastModified,
		})
	}
	if res.IsTruncated {
		page.NextToken = res.NextContinuationToken
	}
	return page, nil
}

// ErrorCode returns the S3 error code of a minio error response, or "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ""
}
