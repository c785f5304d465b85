// Package humanfmt provides human-readable formatting for byte sizes, counts and durations.
package humanfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Decimal (SI) units, as reported in summaries.
var byteUnits = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}

// Bytes formats a byte count using decimal SI units with at most two
// decimal places and no space before the unit.
// Examples: "512B", "1.5kB", "262.14kB", "68.72GB".
func Bytes(b uint64) string {
	if b < 1000 {
		return strconv.FormatUint(b, 10) + byteUnits[0]
	}

	exp := 0
	div := uint64(1)
	for n := b; n >= 1000 && exp < len(byteUnits)-1; n /= 1000 {
		exp++
		div *= 1000
	}

	scaled := math.Round(float64(b)/float64(div)*100) / 100
	return strconv.FormatFloat(scaled, 'f', -1, 64) + byteUnits[exp]
}

// Comma formats an integer with thousands separators.
// Examples: "1", "1,000", "1,000,000".
func Comma(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + len(s)/3)

	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// Elapsed formats a wall-clock duration truncated to whole seconds, with
// space separated components.
// Examples: "0s", "42s", "1m 30s", "2h 15m", "1day 3h 4s".
func Elapsed(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}

	secs := uint64(d / time.Second)
	parts := make([]string, 0, 4)

	if days := secs / 86400; days > 0 {
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		parts = append(parts, fmt.Sprintf("%d%s", days, unit))
	}
	if h := secs % 86400 / 3600; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m := secs % 3600 / 60; m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s := secs % 60; s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// Duration formats a duration compactly for log fields.
// Examples: "1.23s", "45.6ms", "789µs", "1m30s", "2h15m".
func Duration(d time.Duration) string {
	if d < 0 {
		return d.String()
	}

	switch {
	case d >= time.Hour:
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	case d >= time.Minute:
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// Count formats a count compactly for log fields.
// Examples: "1.23M", "456.00K", "789".
func Count(n uint64) string {
	const (
		thousand = 1000
		million  = 1000 * thousand
		billion  = 1000 * million
	)

	switch {
	case n >= billion:
		return fmt.Sprintf("%.2fB", float64(n)/billion)
	case n >= million:
		return fmt.Sprintf("%.2fM", float64(n)/million)
	case n >= thousand:
		return fmt.Sprintf("%.2fK", float64(n)/thousand)
	default:
		return strconv.FormatUint(n, 10)
	}
}
