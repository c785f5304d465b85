package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/eunmann/s3-meta/internal/logctx"
	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

// Lister pages through the records of an inventory report. Data files are
// read one at a time in manifest order.
//
// Tokens encode a data file index and a row offset within it. A Lister
// keeps its current file open between calls so sequential paging never
// re-reads; any other token reopens the file and skips to the offset.
type Lister struct {
	api      ObjectAPI
	manifest *Manifest
	bucket   string
	format   Format
	cols     Columns
	prefix   string
	pageSize int

	file   int
	row    uint64
	reader Reader
}

// NewLister creates a Lister over the report described by m, keeping only
// keys under prefix. A non-positive pageSize uses listing.DefaultPageSize.
func NewLister(api ObjectAPI, m *Manifest, prefix string, pageSize int) (*Lister, error) {
	bucket, err := m.DataBucket()
	if err != nil {
		return nil, fmt.Errorf("resolve destination bucket: %w", err)
	}

	l := &Lister{
		api:      api,
		manifest: m,
		bucket:   bucket,
		format:   m.DetectFormat(),
		prefix:   prefix,
		pageSize: pageSize,
	}
	if l.pageSize <= 0 {
		l.pageSize = listing.DefaultPageSize
	}
	if l.format == FormatCSV {
		if l.cols, err = m.Columns(); err != nil {
			return nil, fmt.Errorf("resolve CSV columns: %w", err)
		}
	}
	return l, nil
}

// ListPage implements listing.Lister.
func (l *Lister) ListPage(ctx context.Context, token string) (*listing.Page, error) {
	file, row, err := parseToken(token)
	if err != nil {
		return nil, err
	}
	if l.reader == nil || file != l.file || row != l.row {
		if err := l.seek(ctx, file, row); err != nil {
			return nil, err
		}
	}

	files := l.manifest.Files
	page := &listing.Page{Records: make([]metrics.Record, 0, l.pageSize)}

	for len(page.Records) < l.pageSize && l.file < len(files) {
		if l.reader == nil {
			if err := l.open(ctx); err != nil {
				return nil, err
			}
		}

		rec, err := l.reader.Next()
		if errors.Is(err, io.EOF) {
			l.closeReader()
			l.file++
			l.row = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read s3://%s/%s: %w", l.bucket, files[l.file].Key, err)
		}

		l.row++
		if strings.HasPrefix(rec.Key, l.prefix) {
			page.Records = append(page.Records, rec)
		}
	}

	if l.file < len(files) {
		page.NextToken = formatToken(l.file, l.row)
	}
	return page, nil
}

// Close releases the open data file, if any.
func (l *Lister) Close() error {
	return l.closeReader()
}

func (l *Lister) seek(ctx context.Context, file int, row uint64) error {
	l.closeReader()
	l.file, l.row = file, 0
	if file >= len(l.manifest.Files) || row == 0 {
		return nil
	}

	if err := l.open(ctx); err != nil {
		return err
	}
	for l.row < row {
		if _, err := l.reader.Next(); err != nil {
			return fmt.Errorf("skip to row %d of s3://%s/%s: %w", row, l.bucket, l.manifest.Files[file].Key, err)
		}
		l.row++
	}
	return nil
}

func (l *Lister) open(ctx context.Context) error {
	key := l.manifest.Files[l.file].Key

	resp, err := l.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get inventory file s3://%s/%s: %w", l.bucket, key, err)
	}

	var r Reader
	switch l.format {
	case FormatParquet:
		r, err = NewParquetReaderFromStream(resp.Body)
	default:
		r, err = NewCSVReaderFromStream(resp.Body, key, l.cols)
	}
	if err != nil {
		return fmt.Errorf("open inventory file s3://%s/%s: %w", l.bucket, key, err)
	}

	log := logctx.FromContext(ctx)
	log.Debug().
		Str("bucket", l.bucket).
		Str("key", key).
		Int("file", l.file+1).
		Int("files", len(l.manifest.Files)).
		Str("format", l.format.String()).
		Msg("reading inventory file")

	l.reader = r
	return nil
}

func (l *Lister) closeReader() error {
	if l.reader == nil {
		return nil
	}
	err := l.reader.Close()
	l.reader = nil
	return err
}

func formatToken(file int, row uint64) string {
	return strconv.Itoa(file) + ":" + strconv.FormatUint(row, 10)
}

func parseToken(token string) (int, uint64, error) {
	if token == "" {
		return 0, 0, nil
	}
	fileStr, rowStr, ok := strings.Cut(token, ":")
	file, ferr := strconv.Atoi(fileStr)
	row, rerr := strconv.ParseUint(rowStr, 10, 64)
	if !ok || ferr != nil || rerr != nil || file < 0 {
		return 0, 0, fmt.Errorf("invalid inventory continuation token %q", token)
	}
	return file, row, nil
}
