package formatutil

import (
	"fmt"
	"strconv"
	"time"

	"fknsrs.biz/p/ytreport/internal/locale"
)

const uploadDateLayout = "20060102"

// Duration renders seconds as H:MM:SS when there is at least one hour and
// M:SS otherwise.
func Duration(seconds *int64, c *locale.Catalog) string {
	if seconds == nil || *seconds <= 0 {
		return c.Unknown
	}

	s := *seconds
	hours := s / 3600
	minutes := (s % 3600) / 60
	secs := s % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}

	return fmt.Sprintf("%d:%02d", minutes, secs)
}

var magnitudes = []struct {
	threshold int64
	suffix    string
}{
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// Count abbreviates large counters, so 1234567 becomes "1.2M".
func Count(n *int64, c *locale.Catalog) string {
	if n == nil || *n <= 0 {
		return c.Unknown
	}

	for _, m := range magnitudes {
		if *n >= m.threshold {
			return fmt.Sprintf("%.1f%s", float64(*n)/float64(m.threshold), m.suffix)
		}
	}

	return strconv.FormatInt(*n, 10)
}

// Date turns a YYYYMMDD string into the catalog's long date form. Input
// that doesn't parse is returned as-is.
func Date(s string, c *locale.Catalog) string {
	if s == "" {
		return c.Unknown
	}

	t, err := time.Parse(uploadDateLayout, s)
	if err != nil {
		return s
	}

	return c.LongDate(t)
}

// Timestamp renders t for the report footer, with microseconds.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}
