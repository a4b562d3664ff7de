// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querytrans converts PubMed boolean queries into Semantic Scholar
// queries and pulls the publication-date filter out of them.
//
// Both entry points, Translate and ExtractDateRange, are pure: they read only
// their argument, keep no state, and never fail. Every input produces a
// best-effort answer that a human reviews before use.
package querytrans

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateMarker is the PubMed publication-date field tag that closes a date
// range filter.
const DateMarker = "[pdat]"

// dateToken matches a single YYYY/M/D date with one or two digit month and day.
const dateToken = `\d{4}/\d{1,2}/\d{1,2}`

// dateFilterRe matches a PubMed date range filter such as
// 2020/1/1:2024/12/31[pdat] and captures both dates.
var dateFilterRe = regexp.MustCompile(`(` + dateToken + `):(` + dateToken + `)` + regexp.QuoteMeta(DateMarker))

// Date is a calendar date as written in a query. It is not validated on
// construction: month 13 or February 31 survive extraction unchanged.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String renders the date as ISO-8601 YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

// Time converts d to midnight UTC. It fails for calendar-invalid dates.
func (d Date) Time() (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, fmt.Errorf("invalid date %s", d)
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), nil
}

// Before reports whether d falls strictly before o, comparing fields
// lexicographically so that invalid dates still order predictably.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// DateRange is an inclusive publication-date window.
type DateRange struct {
	Start Date
	End   Date
}

// Validate checks that both bounds are real dates and that Start does not
// fall after End. ExtractDateRange never calls it.
func (r DateRange) Validate() error {
	if !r.Start.Valid() {
		return fmt.Errorf("invalid start date %s", r.Start)
	}
	if !r.End.Valid() {
		return fmt.Errorf("invalid end date %s", r.End)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("start date %s is after end date %s", r.Start, r.End)
	}
	return nil
}

// String renders the range as START:END, the form Semantic Scholar accepts
// for publicationDateOrYear.
func (r DateRange) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// ExtractDateRange returns the first date range filter found anywhere in
// source. The boolean is false when source holds no filter.
func ExtractDateRange(source string) (DateRange, bool) {
	m := dateFilterRe.FindStringSubmatch(source)
	if m == nil {
		return DateRange{}, false
	}
	return DateRange{Start: parseDate(m[1]), End: parseDate(m[2])}, true
}

// ExtractISODates is ExtractDateRange rendered as YYYY-MM-DD strings. Both
// strings are empty when no filter is present.
func ExtractISODates(source string) (start, end string) {
	r, ok := ExtractDateRange(source)
	if !ok {
		return "", ""
	}
	return r.Start.String(), r.End.String()
}

// parseDate splits a token already matched by dateToken. The regexp
// guarantees three numeric parts, so Atoi cannot fail.
func parseDate(tok string) Date {
	parts := strings.SplitN(tok, "/", 3)
	y, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	d, _ := strconv.Atoi(parts[2])
	return Date{Year: y, Month: m, Day: d}
}
