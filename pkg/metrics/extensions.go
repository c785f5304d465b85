package metrics

import "strings"

// Extensions counts file extensions and reports the most frequent one.
type Extensions struct {
	counts map[string]uint64
}

// NewExtensions creates an empty Extensions collector.
func NewExtensions() *Extensions {
	return &Extensions{counts: make(map[string]uint64)}
}

// Name implements Collector.
func (e *Extensions) Name() string { return "extensions" }

// Register implements Collector. Objects without an extension are skipped.
func (e *Extensions) Register(rec Record) {
	ext, ok := Extension(rec.Key)
	if !ok {
		return
	}
	if _, seen := e.counts[ext]; !seen {
		ext = strings.Clone(ext)
	}
	e.counts[ext]++
}

// Unique returns the number of distinct extensions.
func (e *Extensions) Unique() int { return len(e.counts) }

// MostPopular returns the most frequent extension and its count. Equally
// frequent extensions resolve to the lexicographically smallest one.
func (e *Extensions) MostPopular() (string, uint64, bool) {
	var (
		best  string
		count uint64
		found bool
	)
	for ext, n := range e.counts {
		if !found || n > count || (n == count && ext < best) {
			best, count, found = ext, n, true
		}
	}
	return best, count, found
}

// Report implements Collector.
func (e *Extensions) Report(w *Writer) {
	w.Head(e.Name())
	w.Pair("unique_extensions", len(e.counts))

	if ext, n, ok := e.MostPopular(); ok {
		w.Pair("most_popular_extension", ext)
		w.Pair("most_popular_extension_count", n)
	}
}

// Extension returns the extension of the final path segment of key, without
// the dot. Names with no dot, a single leading dot (".bashrc") or a
// trailing dot have no extension.
func Extension(key string) (string, bool) {
	name := key[strings.LastIndexByte(key, '/')+1:]

	i := strings.LastIndexByte(name, '.')
	// "report." is not counted under an empty extension.
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	return name[i+1:], true
}
