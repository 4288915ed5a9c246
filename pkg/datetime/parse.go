// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// ISOTimestampLayout is the millisecond-precision UTC layout used for every
// timestamp the application emits.
const ISOTimestampLayout = constants.ISOTimestampLayout

// feedDateLayouts lists the date formats accepted from the rate feed, most
// specific first. Layouts without a zone are read as UTC.
var feedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

// ParseFeedDate parses a date taken from the rate feed. Only real calendar
// dates are accepted, so "2025-02-30" is rejected.
func ParseFeedDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// FormatISO renders t in UTC with millisecond precision, e.g.
// "2025-01-30T00:00:00.000Z".
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTimestampLayout)
}

// IsISOTimestamp reports whether value was produced by FormatISO.
func IsISOTimestamp(value string) bool {
	_, err := time.Parse(ISOTimestampLayout, value)
	return err == nil
}
