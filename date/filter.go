package date

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidDate is wrapped by the errors of dates that cannot be read.
var ErrInvalidDate = errors.New("invalid date")

// NoFilter is the token returned for an empty date. It sorts after every
// stored timestamp, and stores treat it as "no upper bound".
const NoFilter = "X"

var componentsRe = regexp.MustCompile(`^(\d+)(-\d+)?(-\d+)?(T\d+)?(:\d+)?(:\d+)?(\.\d+)?`)

// highest value of each component, in the order of componentsRe groups.
var highest = [...]string{"", "-12", "-31", "T23", ":59", ":59", ".999"}

// UpperBound builds a token to be compared with "<=" against stored
// timestamps, so that every instant within the given, possibly partial, date
// is included.
//
// "2019" and "2019-05" are lower than "2019-05-14T…" in byte order, so every
// missing component is filled with its highest value: "2019" becomes
// "2019-12-31T23:59:59.999". Given components are kept as is, they are not
// checked against the calendar.
func UpperBound(s string) (string, error) {
	if s == "" {
		return NoFilter, nil
	}
	m := componentsRe.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w %q: want an ISO-8601 date like 2019-05-14T11:23:15.456", ErrInvalidDate, s)
	}
	var b strings.Builder
	for i, c := range m[1:] {
		if c == "" {
			c = highest[i]
		}
		b.WriteString(c)
	}
	return b.String(), nil
}
