package inventory

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/eunmann/s3-meta/pkg/metrics"
)

// parquetColumns locates the record fields in a Parquet inventory schema.
type parquetColumns struct {
	key      int
	size     int
	modified int
	unit     time.Duration
}

// parquetReader streams a Parquet inventory file row group by row group.
type parquetReader struct {
	file     *parquet.File
	tempFile *os.File
	cols     parquetColumns

	rowGroups []parquet.RowGroup
	rgIdx     int
	rows      parquet.Rows
	buf       []parquet.Row
	bufIdx    int
	bufLen    int
}

// NewParquetReader opens a Parquet inventory file from r. Columns are found
// by name: key, size and last_modified_date.
func NewParquetReader(r io.ReaderAt, size int64) (Reader, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	return newParquetReader(file, nil)
}

// NewParquetReaderFromStream buffers rc to a temporary file, since Parquet
// needs random access, and opens it. The temporary file is removed on
// Close.
func NewParquetReaderFromStream(rc io.ReadCloser) (Reader, error) {
	tempFile, err := os.CreateTemp("", "s3meta-inventory-*.parquet")
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}

	written, err := io.Copy(tempFile, rc)
	rc.Close()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("buffer parquet data: %w", err)
	}

	file, err := parquet.OpenFile(tempFile, written)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	r, err := newParquetReader(file, tempFile)
	if err != nil {
		cleanup()
		return nil, err
	}
	return r, nil
}

func newParquetReader(file *parquet.File, tempFile *os.File) (*parquetReader, error) {
	cols, err := detectParquetColumns(file.Schema())
	if err != nil {
		return nil, err
	}
	return &parquetReader{
		file:      file,
		tempFile:  tempFile,
		cols:      cols,
		rowGroups: file.RowGroups(),
		rgIdx:     -1,
		buf:       make([]parquet.Row, 1024),
	}, nil
}

func detectParquetColumns(schema *parquet.Schema) (parquetColumns, error) {
	cols := parquetColumns{key: -1, size: -1, modified: -1, unit: time.Millisecond}

	for i, field := range schema.Fields() {
		switch field.Name() {
		case "key":
			cols.key = i
		case "size":
			cols.size = i
		case "last_modified_date":
			cols.modified = i
			cols.unit = timestampUnit(field.Type().LogicalType())
		}
	}

	switch {
	case cols.key < 0:
		return cols, errors.New("parquet schema missing 'key' column")
	case cols.size < 0:
		return cols, errors.New("parquet schema missing 'size' column")
	case cols.modified < 0:
		return cols, errors.New("parquet schema missing 'last_modified_date' column")
	}
	return cols, nil
}

// timestampUnit returns the tick of an INT64 timestamp column. S3 Inventory
// writes milliseconds, which is also assumed when no logical type is set.
func timestampUnit(lt *format.LogicalType) time.Duration {
	if lt == nil || lt.Timestamp == nil {
		return time.Millisecond
	}
	switch unit := lt.Timestamp.Unit; {
	case unit.Micros != nil:
		return time.Microsecond
	case unit.Nanos != nil:
		return time.Nanosecond
	}
	return time.Millisecond
}

func (r *parquetReader) Next() (metrics.Record, error) {
	for {
		if r.bufIdx < r.bufLen {
			row := r.buf[r.bufIdx]
			r.bufIdx++
			rec, err := r.toRecord(row)
			if err != nil {
				return metrics.Record{}, err
			}
			if rec.Key == "" {
				continue
			}
			return rec, nil
		}

		if r.rows != nil {
			n, err := r.rows.ReadRows(r.buf)
			if n > 0 {
				r.bufIdx = 0
				r.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return metrics.Record{}, fmt.Errorf("read parquet rows: %w", err)
			}
			r.rows.Close()
			r.rows = nil
		}

		r.rgIdx++
		if r.rgIdx >= len(r.rowGroups) {
			return metrics.Record{}, io.EOF
		}
		r.rows = r.rowGroups[r.rgIdx].Rows()
	}
}

func (r *parquetReader) toRecord(row parquet.Row) (metrics.Record, error) {
	var rec metrics.Record
	for _, val := range row {
		if val.IsNull() {
			continue
		}
		switch val.Column() {
		case r.cols.key:
			rec.Key = val.String()
		case r.cols.size:
			if n := val.Int64(); n > 0 {
				rec.Size = uint64(n)
			}
		case r.cols.modified:
			if val.Kind() == parquet.ByteArray {
				t, err := parseModified(val.String())
				if err != nil {
					return rec, err
				}
				rec.LastModified = t
				continue
			}
			rec.LastModified = time.Unix(0, val.Int64()*int64(r.cols.unit)).UTC()
		}
	}
	return rec, nil
}

func (r *parquetReader) Close() error {
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
	if r.tempFile != nil {
		name := r.tempFile.Name()
		err := r.tempFile.Close()
		os.Remove(name)
		return err
	}
	return nil
}
