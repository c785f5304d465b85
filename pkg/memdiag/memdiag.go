// Package memdiag samples Go runtime memory statistics.
//
// The scanner samples once per page and reports the peak heap in its
// completion event, which shows whether collector state stays bounded on
// large listings.
package memdiag

import (
	"runtime"
	"sync"
)

// Stats holds a subset of runtime.MemStats.
type Stats struct {
	// HeapAlloc is bytes allocated on the heap and still in use.
	HeapAlloc uint64

	// Sys is bytes obtained from the OS.
	Sys uint64

	// NumGC is the number of completed GC cycles.
	NumGC uint32
}

// Read reads current memory statistics.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc: m.HeapAlloc,
		Sys:       m.Sys,
		NumGC:     m.NumGC,
	}
}

// Tracker records the peak heap seen across samples.
type Tracker struct {
	mu   sync.Mutex
	read func() Stats
	peak uint64
	last Stats
	n    uint64
}

// NewTracker creates a tracker reading the live runtime statistics.
func NewTracker() *Tracker {
	return &Tracker{read: Read}
}

// Sample reads the current statistics and updates the peak.
func (t *Tracker) Sample() Stats {
	s := t.read()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = s
	t.n++
	if s.HeapAlloc > t.peak {
		t.peak = s.HeapAlloc
	}
	return s
}

// PeakHeap returns the largest HeapAlloc sampled so far.
func (t *Tracker) PeakHeap() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// Last returns the most recent sample and the number of samples taken.
func (t *Tracker) Last() (Stats, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.n
}
