// Package listingtest provides in-memory listers for tests.
package listingtest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

// Pages serves a fixed sequence of pages. Tokens are the decimal index of
// the next page, and a request carrying any other token fails.
type Pages struct {
	pages [][]metrics.Record

	// FailAt makes the request for this page index return Err. Negative
	// disables failure.
	FailAt int
	Err    error

	// Calls counts ListPage invocations.
	Calls int
	// Tokens records the token passed on each call.
	Tokens []string
}

// NewPages returns a lister serving pages in order.
func NewPages(pages ...[]metrics.Record) *Pages {
	return &Pages{pages: pages, FailAt: -1}
}

// Split partitions records into pages at the given boundaries, e.g.
// Split(recs, 2, 5) yields recs[:2], recs[2:5], recs[5:].
func Split(records []metrics.Record, cuts ...int) *Pages {
	pages := make([][]metrics.Record, 0, len(cuts)+1)
	prev := 0
	for _, c := range cuts {
		pages = append(pages, records[prev:c])
		prev = c
	}
	pages = append(pages, records[prev:])
	return NewPages(pages...)
}

// Chunk partitions records into pages of at most size records.
func Chunk(records []metrics.Record, size int) *Pages {
	var cuts []int
	for i := size; i < len(records); i += size {
		cuts = append(cuts, i)
	}
	return Split(records, cuts...)
}

// ListPage implements listing.Lister.
func (p *Pages) ListPage(_ context.Context, token string) (*listing.Page, error) {
	p.Calls++
	p.Tokens = append(p.Tokens, token)

	idx := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n <= 0 || n >= len(p.pages) {
			return nil, fmt.Errorf("unexpected continuation token %q", token)
		}
		idx = n
	}

	if idx == p.FailAt {
		return nil, p.Err
	}

	page := &listing.Page{}
	if idx < len(p.pages) {
		page.Records = p.pages[idx]
	}
	if idx+1 < len(p.pages) {
		page.NextToken = strconv.Itoa(idx + 1)
	}
	return page, nil
}
