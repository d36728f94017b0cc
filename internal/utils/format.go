package utils

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Placeholder is shown for values the backend did not report
const Placeholder = "-"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatBytes renders a byte size such as "2.0 kB"
func FormatBytes(n *int64) string {
	if n == nil || *n < 0 {
		return Placeholder
	}
	return humanize.Bytes(uint64(*n))
}

// FormatCount renders an integer with thousands separators
func FormatCount(n *int64) string {
	if n == nil {
		return Placeholder
	}
	return humanize.Comma(*n)
}

// FormatInt is FormatCount for int fields
func FormatInt(n *int) string {
	if n == nil {
		return Placeholder
	}
	return humanize.Comma(int64(*n))
}

// FormatRatio renders a 0..1 ratio as a percentage with one decimal
func FormatRatio(r *float64) string {
	if r == nil {
		return Placeholder
	}
	return humanize.FtoaWithDigits(*r*100, 1) + "%"
}

// FormatPercent renders an integer percentage
func FormatPercent(p int) string {
	return strconv.Itoa(p) + "%"
}

// ParseTimestamp accepts RFC 3339 and naive ISO-8601 forms. Naive values are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders s with its age relative to now. Unparseable values
// are shown as received.
func FormatTimestamp(s string, now time.Time) string {
	if s == "" {
		return Placeholder
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}
