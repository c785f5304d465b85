// Package metrics aggregates object listings into bounded statistical summaries.
//
// A Chain holds a fixed, ordered set of collectors. Every record of a listing
// is registered with each collector exactly once, after which the collectors
// write their report sections in chain order:
//
//	chain := metrics.NewChain(metrics.Options{Prefix: "logs/"})
//	for _, rec := range records {
//	    chain.Register(rec)
//	}
//	err := chain.Report(os.Stdout)
//
// Collectors keep only derived state (counters, sets, extremes), never the
// records themselves, so memory does not grow with the number of objects.
package metrics

import (
	"fmt"
	"io"
	"time"
)

// Record is the normalized view of one storage object.
type Record struct {
	// Key is the full object key, e.g. "photos/2024/a.jpg".
	Key string

	// Size is the object size in bytes.
	Size uint64

	// LastModified is the provider-supplied modification time.
	LastModified time.Time
}

// Collector observes every record of a listing and writes one report section.
//
// Register must not fail for well-formed records and must not retain the
// Record value beyond the call.
type Collector interface {
	// Name returns the report section header, e.g. "general".
	Name() string

	// Register accumulates one record.
	Register(rec Record)

	// Report writes the collector's section.
	Report(w *Writer)
}

// Clock returns the current time. It is injected so elapsed-time reporting
// can be tested deterministically.
type Clock func() time.Time

// Options configures a Chain.
type Options struct {
	// Prefix is the listing prefix. Folders at or above the directory that
	// contains it are not counted.
	Prefix string

	// Clock overrides time.Now for elapsed-time reporting.
	Clock Clock
}

// Chain is the fixed, ordered sequence of collectors driven by one listing pass.
type Chain struct {
	collectors []Collector
}

// NewChain builds the standard chain: general, file_size, extensions and
// modification, in that order. The run start time is captured here.
func NewChain(opts Options) *Chain {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Chain{
		collectors: []Collector{
			NewGeneral(opts.Prefix, clock),
			NewFileSize(),
			NewExtensions(),
			NewModification(),
		},
	}
}

// Collectors returns the collectors in chain order.
func (c *Chain) Collectors() []Collector {
	return c.collectors
}

// Register feeds rec to every collector in chain order.
func (c *Chain) Register(rec Record) {
	for _, col := range c.collectors {
		col.Register(rec)
	}
}

// Report writes every collector's section to out in chain order.
func (c *Chain) Report(out io.Writer) error {
	w := NewWriter(out)
	for _, col := range c.collectors {
		col.Report(w)
	}
	if err := w.Err(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
