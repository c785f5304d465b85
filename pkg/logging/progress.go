package logging

import "time"

// PageProgress tracks how far a paginated listing has got. The listing is
// sequential, so it is not safe for concurrent use.
type PageProgress struct {
	pages     uint64
	records   uint64
	totalHint uint64
	startTime time.Time
	now       func() time.Time
}

// NewPageProgress starts tracking a listing.
func NewPageProgress() *PageProgress {
	return newPageProgress(time.Now)
}

func newPageProgress(now func() time.Time) *PageProgress {
	return &PageProgress{startTime: now(), now: now}
}

// RecordPage records a completed page of n records. A non-zero hint updates
// the expected total.
func (pp *PageProgress) RecordPage(n int, hint uint64) {
	pp.pages++
	pp.records += uint64(n)
	if hint > 0 {
		pp.totalHint = hint
	}
}

// Pages returns the number of pages seen.
func (pp *PageProgress) Pages() uint64 { return pp.pages }

// Records returns the number of records seen.
func (pp *PageProgress) Records() uint64 { return pp.records }

// Pct returns the progress percentage (0-100) when the provider gave a
// total hint.
func (pp *PageProgress) Pct() (float64, bool) {
	if pp.totalHint == 0 {
		return 0, false
	}
	pct := float64(pp.records) * 100.0 / float64(pp.totalHint)
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// Elapsed returns time since tracking started.
func (pp *PageProgress) Elapsed() time.Duration {
	return pp.now().Sub(pp.startTime)
}
