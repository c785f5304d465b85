// Package bounded tracks the smallest and largest value of a quantity along
// with the key of the first object that reached it.
package bounded

import "cmp"

// Bounded holds one extreme (a minimum or a maximum) of a tracked quantity.
//
// The zero value is an empty tracker. Once a value has been applied, Value
// is the current extreme, Key names the first object observed holding it,
// and Ties counts how many additional objects shared that value.
type Bounded[T any] struct {
	key   string
	set   bool
	value T
	ties  uint64
}

// Key returns the key of the first object holding the extreme and whether
// any value has been observed.
func (b *Bounded[T]) Key() (string, bool) {
	return b.key, b.set
}

// Value returns the extreme value. It is the zero value of T while the
// tracker is empty.
func (b *Bounded[T]) Value() T {
	return b.value
}

// Ties returns how many objects beyond the first shared the extreme value.
func (b *Bounded[T]) Ties() uint64 {
	return b.ties
}

// IsSet reports whether at least one value has been applied.
func (b *Bounded[T]) IsSet() bool {
	return b.set
}

func (b *Bounded[T]) reset(key string, value T) {
	b.key = key
	b.value = value
	b.set = true
	b.ties = 0
}

// Apply feeds a (key, value) pair through a low and a high tracker using the
// natural order of T.
func Apply[T cmp.Ordered](low, high *Bounded[T], key string, value T) {
	ApplyFunc(low, high, key, value, cmp.Compare[T])
}

// ApplyFunc is Apply with an explicit comparison, for types such as
// time.Time that have no built-in ordering. compare must return a negative
// number when a < b, zero when equal and a positive number when a > b.
//
// The first pair seeds both trackers. After that a strictly smaller value
// replaces the low bound and a strictly larger one replaces the high bound;
// an equal value only bumps the tie count, so the first holder keeps the key.
func ApplyFunc[T any](low, high *Bounded[T], key string, value T, compare func(a, b T) int) {
	if !low.set {
		low.reset(key, value)
		high.reset(key, value)
		return
	}

	switch c := compare(value, low.value); {
	case c < 0:
		low.reset(key, value)
	case c == 0:
		low.ties++
	}

	switch c := compare(value, high.value); {
	case c > 0:
		high.reset(key, value)
	case c == 0:
		high.ties++
	}
}
