package date

import (
	"strconv"
	"time"
)

// Period is the size of a report bucket.
type Period int

const (
	Daily Period = iota
	Monthly
	Yearly
)

// first returns the first day of the period p containing d.
func (p Period) first(d Date) Date {
	switch p {
	case Monthly:
		return New(d.y, d.m, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	}
	return d
}

// next returns the first day of the period after the one starting on d.
func (p Period) next(d Date) Date {
	switch p {
	case Monthly:
		return New(d.y, d.m+1, 1)
	case Yearly:
		return New(d.y+1, time.January, 1)
	}
	return d.Add(1)
}

// Label is the short name of the period p starting on d, as printed on a
// chart axis: "14" for a day, "Mar" for a month, "2025" for a year.
func (p Period) Label(d Date) string {
	switch p {
	case Monthly:
		return d.m.String()[:3]
	case Yearly:
		return strconv.Itoa(d.y)
	}
	return strconv.Itoa(d.d)
}
