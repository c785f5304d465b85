package inventory

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eunmann/s3-meta/pkg/metrics"
)

// Reader yields the records of one inventory data file.
type Reader interface {
	// Next returns the next record, or io.EOF when the file is exhausted.
	Next() (metrics.Record, error)

	// Close releases the underlying stream.
	Close() error
}

// Columns holds the zero-based CSV column indices of the fields a record
// needs.
type Columns struct {
	Key          int
	Size         int
	LastModified int
}

type csvReader struct {
	r       *csv.Reader
	cols    Columns
	closers []io.Closer
}

// NewCSVReader reads an uncompressed inventory CSV stream. S3 Inventory CSV
// files carry no header row.
func NewCSVReader(r io.Reader, cols Columns) Reader {
	return &csvReader{r: newCSV(r), cols: cols}
}

// NewCSVReaderFromStream reads a CSV data file, decompressing it when key
// ends in ".gz". Closing the reader closes rc.
func NewCSVReaderFromStream(rc io.ReadCloser, key string, cols Columns) (Reader, error) {
	var src io.Reader = rc
	closers := []io.Closer{rc}

	if strings.HasSuffix(strings.ToLower(key), ".gz") {
		gzr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		closers = append(closers, gzr)
		src = gzr
	}

	return &csvReader{r: newCSV(src), cols: cols, closers: closers}, nil
}

func newCSV(r io.Reader) *csv.Reader {
	csvr := csv.NewReader(r)
	csvr.ReuseRecord = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true
	return csvr
}

func (r *csvReader) Next() (metrics.Record, error) {
	for {
		fields, err := r.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return metrics.Record{}, io.EOF
			}
			return metrics.Record{}, fmt.Errorf("read CSV row: %w", err)
		}

		if len(fields) <= r.cols.Key || len(fields) <= r.cols.Size {
			continue
		}
		key := decodeKey(fields[r.cols.Key])
		if key == "" {
			continue
		}

		// Delete markers and some versioned rows have an empty size.
		size, err := strconv.ParseUint(strings.TrimSpace(fields[r.cols.Size]), 10, 64)
		if err != nil {
			size = 0
		}

		if len(fields) <= r.cols.LastModified {
			return metrics.Record{}, fmt.Errorf("row for %q has no LastModifiedDate", key)
		}
		modified, err := parseModified(fields[r.cols.LastModified])
		if err != nil {
			return metrics.Record{}, fmt.Errorf("row for %q: %w", key, err)
		}

		return metrics.Record{Key: key, Size: size, LastModified: modified}, nil
	}
}

func (r *csvReader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// decodeKey undoes the URL encoding S3 Inventory applies to CSV keys. Keys
// that fail to decode are returned unchanged.
func decodeKey(raw string) string {
	if !strings.ContainsAny(raw, "%+") {
		return raw
	}
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}

// parseModified parses an inventory LastModifiedDate such as
// "2024-01-15T10:30:00.000Z".
func parseModified(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse LastModifiedDate %q: %w", s, err)
	}
	return t.UTC(), nil
}
