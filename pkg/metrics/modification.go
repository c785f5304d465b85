package metrics

import (
	"time"

	"github.com/eunmann/s3-meta/pkg/bounded"
)

// Modification tracks the earliest and latest modified objects.
type Modification struct {
	earliest bounded.Bounded[time.Time]
	latest   bounded.Bounded[time.Time]
}

// NewModification creates an empty Modification collector.
func NewModification() *Modification {
	return &Modification{}
}

// Name implements Collector.
func (m *Modification) Name() string { return "modification" }

// Register implements Collector.
func (m *Modification) Register(rec Record) {
	bounded.ApplyFunc(&m.earliest, &m.latest, rec.Key, rec.LastModified, compareTime)
}

// Earliest returns the tracker for the earliest modified object.
func (m *Modification) Earliest() *bounded.Bounded[time.Time] { return &m.earliest }

// Latest returns the tracker for the latest modified object.
func (m *Modification) Latest() *bounded.Bounded[time.Time] { return &m.latest }

// Report implements Collector.
func (m *Modification) Report(w *Writer) {
	w.Head(m.Name())

	writeBound(w, "earliest_file", &m.earliest, func(v time.Time) {
		w.Pair("earliest_file_date", formatTime(v))
	})
	writeBound(w, "latest_file", &m.latest, func(v time.Time) {
		w.Pair("latest_file_date", formatTime(v))
	})
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
