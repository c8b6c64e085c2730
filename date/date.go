// Package date implements a calendar date with day granularity.
//
// Sales and purchases are recorded with full timestamps, but everything the
// shop reports on (purchase dates, daily and monthly profit buckets) is a
// calendar day in the shop's local time.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout of a Date in text and JSON. Parse also accepts single-digit months
// and days.
const (
	Layout     = time.DateOnly
	readLayout = "2006-1-2"
)

// Day is the length of a calendar day, for due date arithmetic on timestamps.
const Day = 24 * time.Hour

// Date is a calendar day. The zero Date means "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the Date of year, month and day, normalized like time.Date:
// New(2025, 1, 32) is February 1st.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Of returns the calendar day of t, in t's location.
func Of(t time.Time) Date { return New(t.Date()) }

// Today is the current day in local time.
func Today() Date { return Of(time.Now()) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }
func (d Date) IsZero() bool      { return d == Date{} }

// In returns the start of day d in loc.
func (d Date) In(loc *time.Location) time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc) }

// Add returns the day n days after d; n may be negative.
func (d Date) Add(n int) Date { return New(d.y, d.m, d.d+n) }

// compare returns -1, 0 or 1 as d is before, equal to or after x.
func (d Date) compare(x Date) int {
	switch {
	case d.y != x.y:
		return sign(d.y - x.y)
	case d.m != x.m:
		return sign(int(d.m - x.m))
	}
	return sign(d.d - x.d)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func (d Date) Before(x Date) bool { return d.compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.compare(x) > 0 }

// String returns the date as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.y, d.m, d.d)
}

// Parse reads a YYYY-MM-DD date. "2025-7-1" is accepted too.
func Parse(s string) (Date, error) {
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %s: %w", s, Layout, err)
	}
	return Of(t), nil
}

// UnmarshalJSON reads a JSON string. An empty string is the zero Date, and a
// full RFC 3339 timestamp (as older snapshots stored purchase dates) is
// truncated to its day.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	day, err := Parse(s)
	if err != nil {
		ts, terr := time.Parse(time.RFC3339, s)
		if terr != nil {
			return err
		}
		day = Of(ts)
	}
	*d = day
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
