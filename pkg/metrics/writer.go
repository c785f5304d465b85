package metrics

import (
	"fmt"
	"io"

	"github.com/eunmann/s3-meta/pkg/bounded"
)

// Writer renders report sections as bracketed headers followed by
// key=value lines. Sections after the first are separated by a blank line.
//
// The first write error is retained and reported by Err; later writes are
// skipped.
type Writer struct {
	out      io.Writer
	sections int
	err      error
}

// NewWriter returns a Writer that writes to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Head starts a new section.
func (w *Writer) Head(label string) {
	if w.sections > 0 {
		w.printf("\n")
	}
	w.sections++
	w.printf("[%s]\n", label)
}

// Pair writes a single label=value line.
func (w *Writer) Pair(label string, value any) {
	w.printf("%s=%v\n", label, value)
}

// Err returns the first error encountered while writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, args...)
}

// writeBound writes the lines describing one extreme. Nothing is written
// for an empty tracker. value writes the value lines for the label; the key
// follows as <label>_name and ties, when present, as <label>_others.
func writeBound[T any](w *Writer, label string, b *bounded.Bounded[T], value func(v T)) {
	key, ok := b.Key()
	if !ok {
		return
	}

	value(b.Value())
	w.Pair(label+"_name", key)

	if ties := b.Ties(); ties > 0 {
		w.Pair(label+"_others", ties)
	}
}
