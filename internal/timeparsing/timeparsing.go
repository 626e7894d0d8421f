// Package timeparsing turns user-typed times into instants for --at flags.
package timeparsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var natural = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseTime accepts, in order:
//   - "now"
//   - absolute dates in any layout dateparse knows (2024-06-01 12:00:00,
//     RFC 3339, 06/01/2024 ...), read as UTC when no zone is given
//   - relative English phrases relative to now ("yesterday", "2 hours ago",
//     "last friday 3pm")
//
// The result is in UTC.
func ParseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if strings.EqualFold(s, "now") {
		return now.UTC(), nil
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC(), nil
	}

	r, err := natural.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q", s)
	}
	return r.Time.UTC(), nil
}
