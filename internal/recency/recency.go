// Package recency decides whether a provider-supplied free-text date marker
// qualifies an article as fresh enough to keep. Markers are not structured
// timestamps: they may be relative ("3 hours ago", "5 小時前"), absolute
// ("12/23/2025", "Dec 23"), or missing entirely.
package recency

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mode selects how absolute dates and one-day-old markers are treated.
type Mode string

const (
	// ModeStrict accepts absolute dates only when they fall on the
	// reference day itself.
	ModeStrict Mode = "strict"
	// ModeGrace additionally accepts yesterday's date and "1 day ago"
	// style markers.
	ModeGrace Mode = "grace"
)

// Policy is a pure classifier over date markers. The zero value is not
// usable; construct with NewPolicy.
type Policy struct {
	loc   *time.Location
	grace bool
}

// NewPolicy builds a policy evaluating calendar dates in loc. A nil loc
// falls back to UTC.
func NewPolicy(loc *time.Location, mode Mode) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{loc: loc, grace: mode == ModeGrace}
}

// Multi-day relative units. Anything matching these is at least a day old;
// explicit day counts are handled separately so "1 day" can fall under the
// grace window.
var staleUnitRe = regexp.MustCompile(`(?i)week|month|year|週|周|星期|禮拜|个月|個月|年前`)

var dayCountRe = regexp.MustCompile(`(?i)(\d+)\s*(?:days?|天)`)

// Sub-day relative units are unambiguously within the last 24 hours.
var freshUnitRe = regexp.MustCompile(`(?i)sec|min|hour|just now|秒|分鐘|分钟|小時|小时|剛剛|刚刚`)

var absoluteLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan 2",
	"2006-01-02",
	"2006年1月2日",
	"1月2日",
}

// IsRecent reports whether marker indicates publication within the policy
// window relative to now. An absent or unrecognized marker is treated as
// stale: freshness is never assumed from missing data. That is a policy
// choice, not a provider guarantee.
func (p Policy) IsRecent(marker string, now time.Time) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}

	if staleUnitRe.MatchString(marker) {
		return false
	}

	if m := dayCountRe.FindStringSubmatch(marker); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n >= 2 {
			return false
		}
		return p.grace
	}
	if containsFold(marker, "yesterday") || strings.Contains(marker, "昨天") || strings.Contains(marker, "昨日") {
		return p.grace
	}

	if freshUnitRe.MatchString(marker) {
		return true
	}
	// Generic relative markers with no explicit unit left at this point
	// ("moments ago", "1 小時前" variants already matched above).
	if containsFold(marker, "ago") || strings.HasSuffix(marker, "前") {
		return true
	}

	if day, ok := p.parseAbsolute(marker, now); ok {
		today := now.In(p.loc)
		if sameDay(day, today) {
			return true
		}
		if p.grace && sameDay(day, today.AddDate(0, 0, -1)) {
			return true
		}
		return false
	}

	return false
}

// parseAbsolute tries the known calendar layouts. Layouts without a year
// assume the reference year.
func (p Policy) parseAbsolute(marker string, now time.Time) (time.Time, bool) {
	// Providers sometimes append a time component ("12/23/2025, 08:00 AM");
	// only the date part matters here.
	if i := strings.IndexAny(marker, ","); i > 0 && strings.Count(marker, ",") == 1 && !strings.Contains(marker[:i], " ") {
		marker = marker[:i]
	}
	for _, layout := range absoluteLayouts {
		t, err := time.ParseInLocation(layout, marker, p.loc)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = t.AddDate(now.In(p.loc).Year(), 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
