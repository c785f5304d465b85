// Package scan drives a paginated listing through a metrics chain.
//
// Pages are requested strictly one at a time in provider order; each record
// of a page is registered with every collector before the next page is
// requested. The chain therefore never needs synchronization, and memory is
// bounded by the collectors' state plus a single page.
package scan

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/eunmann/s3-meta/internal/logctx"
	"github.com/eunmann/s3-meta/pkg/fault"
	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/logging"
	"github.com/eunmann/s3-meta/pkg/memdiag"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

// Error is a failed listing. Its message is the provider error reduced to
// readable text; Unwrap returns the original error.
type Error struct {
	// Message is the translated provider message.
	Message string

	// Page is the zero-based index of the page whose request failed.
	Page uint64

	// Err is the provider error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the provider error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Stats summarizes a completed enumeration.
type Stats struct {
	Pages    uint64
	Records  uint64
	Bytes    uint64
	Duration time.Duration
}

// Enumerate requests pages from lister until the listing is exhausted,
// registering every record with chain. On provider failure it stops
// immediately and returns an *Error.
func Enumerate(ctx context.Context, chain *metrics.Chain, lister listing.Lister) (Stats, error) {
	log := logctx.FromContext(ctx)
	progress := logging.NewPageProgress()
	mem := memdiag.NewTracker()

	var (
		stats Stats
		token string
	)

	for {
		pageStart := time.Now()

		page, err := lister.ListPage(ctx, token)
		if err != nil {
			return stats, &Error{
				Message: fault.Translate(err),
				Page:    stats.Pages,
				Err:     err,
			}
		}
		if page == nil {
			err := fmt.Errorf("listing returned no page for continuation token %q", token)
			return stats, &Error{Message: err.Error(), Page: stats.Pages, Err: err}
		}

		for _, rec := range page.Records {
			chain.Register(rec)
			stats.Bytes += rec.Size
		}

		stats.Pages++
		stats.Records += uint64(len(page.Records))
		progress.RecordPage(len(page.Records), page.TotalHint)
		mem.Sample()

		logging.PageComplete(log, "listing", time.Since(pageStart)).
			Uint64("page", stats.Pages).
			Int("records", len(page.Records)).
			Progress(progress).
			LogDebug("page registered")

		if page.NextToken == "" {
			break
		}
		if page.NextToken == token {
			err := fmt.Errorf("listing did not advance past continuation token %q", token)
			return stats, &Error{Message: err.Error(), Page: stats.Pages, Err: err}
		}
		token = page.NextToken
	}

	stats.Duration = progress.Elapsed()
	last, _ := mem.Last()

	logging.PhaseComplete(log, "listing", stats.Duration).
		Count("records", stats.Records).
		Uint64("pages", stats.Pages).
		Bytes("bytes", stats.Bytes).
		Bytes("peak_heap", mem.PeakHeap()).
		Uint64("gc_cycles", uint64(last.NumGC)).
		Log("listing complete")

	return stats, nil
}

// Run enumerates the listing and, only if it completes, writes the chain's
// report to out.
func Run(ctx context.Context, chain *metrics.Chain, lister listing.Lister, out io.Writer) (Stats, error) {
	stats, err := Enumerate(ctx, chain, lister)
	if err != nil {
		return stats, err
	}
	if err := chain.Report(out); err != nil {
		return stats, err
	}
	return stats, nil
}
