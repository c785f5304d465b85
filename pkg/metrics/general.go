package metrics

import (
	"strings"
	"time"

	"github.com/eunmann/s3-meta/pkg/humanfmt"
)

// General counts objects, bytes and distinct folders, and reports the
// elapsed run time.
type General struct {
	folders map[string]struct{}
	root    string
	clock   Clock
	start   time.Time
	files   uint64
	bytes   uint64
}

// NewGeneral creates a General collector for a listing of prefix. The start
// time is read from clock immediately.
func NewGeneral(prefix string, clock Clock) *General {
	root := ""
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		root = prefix[:i]
	}

	return &General{
		folders: make(map[string]struct{}),
		root:    root,
		clock:   clock,
		start:   clock(),
	}
}

// Name implements Collector.
func (g *General) Name() string { return "general" }

// Register implements Collector.
func (g *General) Register(rec Record) {
	key := rec.Key
	for i := 0; i < len(key); i++ {
		if key[i] != '/' {
			continue
		}
		dir := key[:i]
		if len(dir) <= len(g.root) {
			continue
		}
		if _, ok := g.folders[dir]; !ok {
			// Clone so the set does not pin the record's key.
			g.folders[strings.Clone(dir)] = struct{}{}
		}
	}

	g.files++
	g.bytes += rec.Size
}

// Files returns the number of registered objects.
func (g *General) Files() uint64 { return g.files }

// Bytes returns the total size of registered objects.
func (g *General) Bytes() uint64 { return g.bytes }

// Folders returns the number of distinct folders seen.
func (g *General) Folders() int { return len(g.folders) }

// Elapsed returns the time since the collector was created.
func (g *General) Elapsed() time.Duration {
	return g.clock().Sub(g.start)
}

// Report implements Collector.
func (g *General) Report(w *Writer) {
	w.Head(g.Name())
	w.Pair("total_time", humanfmt.Elapsed(g.Elapsed()))
	w.Pair("total_files", humanfmt.Comma(g.files))
	w.Pair("total_folders", humanfmt.Comma(uint64(len(g.folders))))
	w.Pair("total_storage", humanfmt.Bytes(g.bytes))
	w.Pair("total_storage_bytes", g.bytes)
}
