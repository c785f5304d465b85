package miniolist

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunmann/s3-meta/pkg/listing"
)

type listCall struct {
	bucket, prefix, startAfter, token, delimiter string
	maxKeys                                      int
}

type mockAPI struct {
	ListObjectsV2Func func(call listCall) (minio.ListBucketV2Result, error)
	calls             []listCall
}

func (m *mockAPI) ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxkeys int) (minio.ListBucketV2Result, error) {
	call := listCall{bucketName, objectPrefix, startAfter, continuationToken, delimiter, maxkeys}
	m.calls = append(m.calls, call)
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(call)
	}
	return minio.ListBucketV2Result{}, nil
}

func TestLister_ListPage(t *testing.T) {
	modified := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	api := &mockAPI{
		ListObjectsV2Func: func(call listCall) (minio.ListBucketV2Result, error) {
			if call.token == "" {
				return minio.ListBucketV2Result{
					Contents: []minio.ObjectInfo{
						{Key: "data/a.csv", Size: 10, LastModified: modified},
						{Key: "data/b.csv", Size: -1, LastModified: modified},
					},
					IsTruncated:           true,
					NextContinuationToken: "next",
				}, nil
			}
			return minio.ListBucketV2Result{
				Contents:              []minio.ObjectInfo{{Key: "data/c.csv", Size: 3}},
				NextContinuationToken: "ignored",
			}, nil
		},
	}

	lister := NewLister(api, listing.Location{Bucket: "bkt", Prefix: "data/"}, 0)

	first, err := lister.ListPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	assert.Equal(t, "data/a.csv", first.Records[0].Key)
	assert.Equal(t, uint64(10), first.Records[0].Size)
	assert.Equal(t, uint64(0), first.Records[1].Size)
	assert.True(t, first.Records[0].LastModified.Equal(modified))
	assert.Equal(t, "next", first.NextToken)

	second, err := lister.ListPage(context.Background(), first.NextToken)
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	assert.Empty(t, second.NextToken, "untruncated result ends the listing")

	require.Len(t, api.calls, 2)
	assert.Equal(t, listCall{"bkt", "data/", "", "", "", listing.DefaultPageSize}, api.calls[0])
	assert.Equal(t, "next", api.calls[1].token)
}

func TestLister_ListPageError(t *testing.T) {
	respErr := minio.ErrorResponse{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	api := &mockAPI{
		ListObjectsV2Func: func(listCall) (minio.ListBucketV2Result, error) {
			return minio.ListBucketV2Result{}, respErr
		},
	}

	page, err := NewLister(api, listing.Location{Bucket: "missing"}, 5).ListPage(context.Background(), "")
	assert.Nil(t, page)
	require.Error(t, err)
	assert.Equal(t, "The specified bucket does not exist", err.Error())
}

func TestLister_CanceledContext(t *testing.T) {
	api := &mockAPI{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLister(api, listing.Location{Bucket: "b"}, 5).ListPage(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.calls)
}

func TestErrorCode(t *testing.T) {
	respErr := minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied."}

	assert.Equal(t, "AccessDenied", ErrorCode(respErr))
	assert.Equal(t, "AccessDenied", ErrorCode(fmt.Errorf("list: %w", respErr)))
	assert.Equal(t, "", ErrorCode(errors.New("timeout")))
	assert.Equal(t, "", ErrorCode(nil))
}

func TestNewCore(t *testing.T) {
	_, err := NewCore(Config{})
	require.Error(t, err)

	core, err := NewCore(Config{Endpoint: "http://localhost:9000", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", core.EndpointURL().Host)
	assert.Equal(t, "http", core.EndpointURL().Scheme)

	core, err = NewCore(Config{Endpoint: "play.min.io", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "https", core.EndpointURL().Scheme)
}
