package metrics

import (
	"github.com/eunmann/s3-meta/pkg/bounded"
	"github.com/eunmann/s3-meta/pkg/humanfmt"
)

// FileSize tracks the average, smallest and largest object size.
type FileSize struct {
	smallest bounded.Bounded[uint64]
	largest  bounded.Bounded[uint64]
	count    uint64
	total    uint64
}

// NewFileSize creates an empty FileSize collector.
func NewFileSize() *FileSize {
	return &FileSize{}
}

// Name implements Collector.
func (f *FileSize) Name() string { return "file_size" }

// Register implements Collector.
func (f *FileSize) Register(rec Record) {
	bounded.Apply(&f.smallest, &f.largest, rec.Key, rec.Size)
	f.count++
	f.total += rec.Size
}

// Average returns the mean object size in whole bytes, or 0 when nothing
// was registered.
func (f *FileSize) Average() uint64 {
	if f.count == 0 {
		return 0
	}
	return f.total / f.count
}

// Smallest returns the tracker for the smallest object.
func (f *FileSize) Smallest() *bounded.Bounded[uint64] { return &f.smallest }

// Largest returns the tracker for the largest object.
func (f *FileSize) Largest() *bounded.Bounded[uint64] { return &f.largest }

// Report implements Collector.
func (f *FileSize) Report(w *Writer) {
	w.Head(f.Name())

	avg := f.Average()
	w.Pair("average_file_size", humanfmt.Bytes(avg))
	w.Pair("average_file_bytes", avg)

	writeBound(w, "largest_file", &f.largest, func(v uint64) {
		w.Pair("largest_file_size", humanfmt.Bytes(v))
		w.Pair("largest_file_bytes", v)
	})
	writeBound(w, "smallest_file", &f.smallest, func(v uint64) {
		w.Pair("smallest_file_size", humanfmt.Bytes(v))
		w.Pair("smallest_file_bytes", v)
	})
}
