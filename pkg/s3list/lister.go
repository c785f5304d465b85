package s3list

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/eunmann/s3-meta/internal/logctx"
	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

// API is the subset of the S3 client used for listing. *s3.Client
// satisfies it.
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Lister lists a bucket prefix with ListObjectsV2.
type Lister struct {
	api     API
	loc     listing.Location
	maxKeys int32
}

// NewLister creates a Lister for loc. A non-positive maxKeys uses
// listing.DefaultPageSize.
func NewLister(api API, loc listing.Location, maxKeys int) *Lister {
	if maxKeys <= 0 {
		maxKeys = listing.DefaultPageSize
	}
	return &Lister{
		api:     api,
		loc:     loc,
		maxKeys: int32(maxKeys),
	}
}

// ListPage implements listing.Lister.
//
// Provider errors are returned unwrapped: the SDK message already names the
// operation, and a fault document in the message must stay at its start.
func (l *Lister) ListPage(ctx context.Context, token string) (*listing.Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.loc.Bucket),
		MaxKeys: aws.Int32(l.maxKeys),
	}
	if l.loc.Prefix != "" {
		input.Prefix = aws.String(l.loc.Prefix)
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := l.api.ListObjectsV2(ctx, input)
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
		Records: make([]metrics.Record, 0, len(out.Contents)),
	}
	for _, obj := range out.Contents {
		page.Records = append(page.Records, toRecord(obj))
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

func toRecord(obj types.Object) metrics.Record {
	var size uint64
	if s := aws.ToInt64(obj.Size); s > 0 {
		size = uint64(s)
	}
	return metrics.Record{
		Key:          aws.ToString(obj.Key),
		Size:         size,
		LastModified: aws.ToTime(obj.LastModified),
	}
}

// ErrorCode returns the S3 error code carried by err, such as
// "AccessDenied" or "NoSuchBucket", or "" when err is not an API error.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
