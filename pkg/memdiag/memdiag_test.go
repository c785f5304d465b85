package memdiag

import "testing"

func TestRead(t *testing.T) {
	s := Read()
	if s.HeapAlloc == 0 || s.Sys == 0 {
		t.Errorf("Read() = %+v, want non-zero heap and sys", s)
	}
}

func TestTracker_Peak(t *testing.T) {
	samples := []uint64{10, 50, 20, 40}
	i := 0
	tr := &Tracker{read: func() Stats {
		s := Stats{HeapAlloc: samples[i]}
		i++
		return s
	}}

	for range samples {
		tr.Sample()
	}

	if got := tr.PeakHeap(); got != 50 {
		t.Errorf("PeakHeap() = %d, want 50", got)
	}
	last, n := tr.Last()
	if last.HeapAlloc != 40 || n != 4 {
		t.Errorf("Last() = %+v, %d; want HeapAlloc 40 after 4 samples", last, n)
	}
}

func TestTracker_Empty(t *testing.T) {
	tr := NewTracker()
	if got := tr.PeakHeap(); got != 0 {
		t.Errorf("PeakHeap() = %d before sampling, want 0", got)
	}
	if tr.Sample().HeapAlloc == 0 {
		t.Error("live sample reported zero heap")
	}
	if tr.PeakHeap() == 0 {
		t.Error("PeakHeap() = 0 after a live sample")
	}
}
