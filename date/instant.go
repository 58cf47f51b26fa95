// Package date handles the timestamps stored in the ledger and the string
// tokens used to bound queries on them.
//
// Stored timestamps are ISO-8601 instants in UTC with millisecond precision,
// so that their byte-wise order is their chronological order.
package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InstantFormat is the canonical format of every stored timestamp.
const InstantFormat = "2006-01-02T15:04:05.000Z"

var (
	millisRe  = regexp.MustCompile(`^\d{13,}$`)
	secondsRe = regexp.MustCompile(`^\d{1,12}$`)
)

// freeFormLayouts are tried in order when a timestamp is not a plain number.
// Layouts without a zone are read as UTC.
var freeFormLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
}

// FormatInstant formats t in the canonical stored format.
func FormatInstant(t time.Time) string { return t.UTC().Format(InstantFormat) }

// ParseInstant decodes a timestamp token and returns it in the canonical
// stored format.
//
// A token of 13 digits or more is read as milliseconds since the epoch, a
// token of 1 to 12 digits as seconds since the epoch, anything else as a
// date string.
func ParseInstant(token string) (string, error) {
	token = strings.TrimSpace(token)
	switch {
	case millisRe.MatchString(token):
		ms, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid millisecond timestamp %q: %w", token, err)
		}
		return FormatInstant(time.UnixMilli(ms)), nil
	case secondsRe.MatchString(token):
		s, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid second timestamp %q: %w", token, err)
		}
		return FormatInstant(time.UnixMilli(s * 1000)), nil
	}

	for _, layout := range freeFormLayouts {
		if t, err := time.ParseInLocation(layout, token, time.UTC); err == nil {
			return FormatInstant(t), nil
		}
	}
	return "", fmt.Errorf("%w %q: unknown format", ErrInvalidDate, token)
}
